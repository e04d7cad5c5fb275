package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/staysearch/internal/db"
	"github.com/kailas-cloud/staysearch/internal/domain"
	"github.com/kailas-cloud/staysearch/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, domain.DefaultIndexConfig()), ms
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

func priceFilter(t *testing.T, lo, hi float64) filter.Expression {
	t.Helper()
	rng, err := filter.Between(lo, hi)
	if err != nil {
		t.Fatalf("Between: %v", err)
	}
	c, err := filter.NewRange("price", rng)
	if err != nil {
		t.Fatalf("NewRange: %v", err)
	}
	e, err := filter.NewExpression(c)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	return e
}
