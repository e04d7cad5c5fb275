package request

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/staysearch/internal/domain/search/filter"
)

// Search parameter limits and defaults.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength  = 4096
	DefaultTopK     = 5
	MaxTopK         = 100
	DefaultMinPrice = 0
	DefaultMaxPrice = 1000
	// Overfetch multiplies TopK into the KNN candidate count so the WiFi
	// post-filter still has enough candidates left.
	Overfetch = 2
	// PriceField is the numeric field the price range pre-filters on.
	PriceField = "price"
)

// ErrInvalidPriceRange is returned when the minimum price exceeds the maximum.
var ErrInvalidPriceRange = errors.New("invalid price range")

// Request is a validated listing search.
type Request struct {
	query        string
	topK         int
	minPrice     int64
	maxPrice     int64
	wifiRequired bool
}

// New validates search parameters. A non-positive topK falls back to
// DefaultTopK. The price range is inclusive on both ends.
func New(query string, topK int, minPrice, maxPrice int64, wifiRequired bool) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		return Request{}, fmt.Errorf("top_k must be at most %d", MaxTopK)
	}
	if minPrice < 0 {
		return Request{}, fmt.Errorf("%w: minimum price %d is negative", ErrInvalidPriceRange, minPrice)
	}
	if minPrice > maxPrice {
		return Request{}, fmt.Errorf("%w: minimum %d exceeds maximum %d", ErrInvalidPriceRange, minPrice, maxPrice)
	}

	return Request{
		query:        query,
		topK:         topK,
		minPrice:     minPrice,
		maxPrice:     maxPrice,
		wifiRequired: wifiRequired,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// TopK returns the maximum number of results shown per algorithm.
func (r *Request) TopK() int { return r.topK }

// Candidates returns the KNN candidate count requested from the index.
func (r *Request) Candidates() int { return r.topK * Overfetch }

// MinPrice returns the inclusive lower price bound.
func (r *Request) MinPrice() int64 { return r.minPrice }

// MaxPrice returns the inclusive upper price bound.
func (r *Request) MaxPrice() int64 { return r.maxPrice }

// WifiRequired reports whether results must list the Wifi amenity.
func (r *Request) WifiRequired() bool { return r.wifiRequired }

// Filters returns the store-side pre-filter: price within [min, max].
func (r *Request) Filters() filter.Expression {
	rng, err := filter.Between(float64(r.minPrice), float64(r.maxPrice))
	if err != nil {
		// unreachable: New enforces min <= max
		panic(err)
	}
	cond, err := filter.NewRange(PriceField, rng)
	if err != nil {
		panic(err)
	}
	expr, err := filter.NewExpression(cond)
	if err != nil {
		panic(err)
	}
	return expr
}
