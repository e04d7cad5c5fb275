package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/staysearch/internal/db"
	"github.com/kailas-cloud/staysearch/internal/domain"
	domlisting "github.com/kailas-cloud/staysearch/internal/domain/listing"
	"github.com/kailas-cloud/staysearch/internal/domain/search/algorithm"
	"github.com/kailas-cloud/staysearch/internal/domain/search/filter"
	"github.com/kailas-cloud/staysearch/internal/domain/search/result"
)

// returnFields are the hash fields loaded for each candidate.
var returnFields = []string{
	domlisting.FieldName,
	domlisting.FieldSpace,
	domlisting.FieldPrice,
	domlisting.FieldAccommodates,
	domlisting.FieldAmenities,
}

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
	cfg   domain.IndexConfig
}

// New creates a search repository.
func New(s store, cfg domain.IndexConfig) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// SearchKNN runs a pre-filtered KNN query against the vector field of algo and
// returns up to k candidates in ascending distance order.
func (r *Repo) SearchKNN(
	ctx context.Context, algo algorithm.Algorithm,
	vector []float32, filters filter.Expression, k int,
) ([]result.Candidate, error) {
	if !algo.IsValid() {
		return nil, fmt.Errorf("unsupported algorithm %q", algo)
	}

	q := &db.KNNQuery{
		IndexName:    r.cfg.Name,
		VectorField:  algo.VectorField(),
		ScoreAlias:   algo.ScoreAlias(),
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", algo, err)
	}

	return r.parseCandidates(sr), nil
}

// parseCandidates converts entries in order. An entry with an unreadable
// numeric field is kept with Err set so the post-filter can report it.
func (r *Repo) parseCandidates(sr *db.SearchResult) []result.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]result.Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		c := result.Candidate{
			ID:        r.cfg.ID(e.Key),
			Name:      e.Fields[domlisting.FieldName],
			Space:     e.Fields[domlisting.FieldSpace],
			Amenities: e.Fields[domlisting.FieldAmenities],
			Distance:  e.Score,
		}

		price, err := parseInt(e.Fields[domlisting.FieldPrice])
		if err != nil {
			c.BadField, c.Err = domlisting.FieldPrice, err
			out = append(out, c)
			continue
		}
		accommodates, err := parseInt(e.Fields[domlisting.FieldAccommodates])
		if err != nil {
			c.BadField, c.Err = domlisting.FieldAccommodates, err
			out = append(out, c)
			continue
		}
		c.Price, c.Accommodates = price, int(accommodates)
		out = append(out, c)
	}
	return out
}
