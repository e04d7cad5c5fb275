package result

import (
	"time"

	"github.com/kailas-cloud/staysearch/internal/domain/search/algorithm"
)

// Hit is a single displayed search result. FlatResult and HNSWResult are
// the two implementations; each knows which algorithm produced it.
type Hit interface {
	Algorithm() algorithm.Algorithm
	Listing() Listing
	// Score is the raw distance reported by the index (lower is closer).
	Score() float64
}

// Listing is the listing projection returned by a search.
type Listing struct {
	id           string
	name         string
	space        string
	price        int64
	accommodates int
	amenities    []string
}

// NewListing creates a listing projection.
func NewListing(id, name, space string, price int64, accommodates int, amenities []string) Listing {
	return Listing{
		id: id, name: name, space: space,
		price: price, accommodates: accommodates, amenities: amenities,
	}
}

// ID returns the listing identifier.
func (l Listing) ID() string { return l.id }

// Name returns the listing title.
func (l Listing) Name() string { return l.name }

// Space returns the space description.
func (l Listing) Space() string { return l.space }

// Price returns the nightly price.
func (l Listing) Price() int64 { return l.price }

// Accommodates returns the guest capacity.
func (l Listing) Accommodates() int { return l.accommodates }

// Amenities returns the deserialized amenity tags.
func (l Listing) Amenities() []string { return l.amenities }

// FlatResult is a hit from the FLAT index.
type FlatResult struct {
	listing   Listing
	flatScore float64
}

// NewFlat creates a FLAT hit.
func NewFlat(l Listing, score float64) FlatResult {
	return FlatResult{listing: l, flatScore: score}
}

// Algorithm returns algorithm.Flat.
func (r FlatResult) Algorithm() algorithm.Algorithm { return algorithm.Flat }

// Listing returns the matched listing.
func (r FlatResult) Listing() Listing { return r.listing }

// Score returns the FLAT distance.
func (r FlatResult) Score() float64 { return r.flatScore }

// HNSWResult is a hit from the HNSW index.
type HNSWResult struct {
	listing   Listing
	hnswScore float64
}

// NewHNSW creates an HNSW hit.
func NewHNSW(l Listing, score float64) HNSWResult {
	return HNSWResult{listing: l, hnswScore: score}
}

// Algorithm returns algorithm.HNSW.
func (r HNSWResult) Algorithm() algorithm.Algorithm { return algorithm.HNSW }

// Listing returns the matched listing.
func (r HNSWResult) Listing() Listing { return r.listing }

// Score returns the HNSW distance.
func (r HNSWResult) Score() float64 { return r.hnswScore }

// NewHit builds the result variant matching algo.
func NewHit(algo algorithm.Algorithm, l Listing, score float64) Hit {
	if algo == algorithm.HNSW {
		return NewHNSW(l, score)
	}
	return NewFlat(l, score)
}

// Skip records a candidate dropped by the post-filter because one of its
// stored fields could not be read. Field names that field.
type Skip struct {
	ID    string
	Field string
	Err   error
}

// Branch is the outcome of one algorithm's search.
type Branch struct {
	algo       algorithm.Algorithm
	hits       []Hit
	elapsed    time.Duration
	candidates int
	skipped    []Skip
}

// NewBranch creates a branch outcome.
func NewBranch(
	algo algorithm.Algorithm, hits []Hit, elapsed time.Duration,
	candidates int, skipped []Skip,
) Branch {
	return Branch{
		algo: algo, hits: hits, elapsed: elapsed,
		candidates: candidates, skipped: skipped,
	}
}

// Algorithm returns the algorithm the branch ran.
func (b Branch) Algorithm() algorithm.Algorithm { return b.algo }

// Hits returns the accepted results in ascending distance order.
func (b Branch) Hits() []Hit { return b.hits }

// Elapsed returns the wall-clock time of the index query.
func (b Branch) Elapsed() time.Duration { return b.elapsed }

// Candidates returns how many candidates the index returned.
func (b Branch) Candidates() int { return b.candidates }

// Skipped returns candidates dropped for unreadable stored fields.
func (b Branch) Skipped() []Skip { return b.skipped }

// Comparison holds both branches of one query.
type Comparison struct {
	Flat Branch
	HNSW Branch
}

// SpeedRatio returns FLAT elapsed divided by HNSW elapsed. The second value
// is false when the HNSW time is zero and no ratio exists.
func (c Comparison) SpeedRatio() (float64, bool) {
	if c.HNSW.elapsed <= 0 {
		return 0, false
	}
	return float64(c.Flat.elapsed) / float64(c.HNSW.elapsed), true
}

// Candidate is a raw KNN match before post-filtering. Amenities is still in
// its stored serialized form.
type Candidate struct {
	ID           string
	Name         string
	Space        string
	Price        int64
	Accommodates int
	Amenities    string
	Distance     float64
	// Err is set when the numeric field named by BadField could not be
	// parsed; the other display fields may then be incomplete.
	BadField string
	Err      error
}
