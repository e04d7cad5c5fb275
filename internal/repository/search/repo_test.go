package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/staysearch/internal/db"
	"github.com/kailas-cloud/staysearch/internal/domain/search/algorithm"
)

func TestSearchKNN_QueryShape(t *testing.T) {
	tests := []struct {
		algo  algorithm.Algorithm
		field string
		alias string
	}{
		{algorithm.Flat, "text_embedding", "flat_score"},
		{algorithm.HNSW, "text_embedding_hnsw", "hnsw_score"},
	}
	for _, tt := range tests {
		t.Run(string(tt.algo), func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
				if q.IndexName != "airbnb-index" {
					t.Errorf("index = %q", q.IndexName)
				}
				if q.VectorField != tt.field || q.ScoreAlias != tt.alias {
					t.Errorf("field/alias = %s/%s", q.VectorField, q.ScoreAlias)
				}
				if q.K != 10 {
					t.Errorf("K = %d, want 10", q.K)
				}
				if len(q.Filters.Must()) != 1 || q.Filters.Must()[0].Key() != "price" {
					t.Errorf("filters = %+v", q.Filters)
				}
				if len(q.ReturnFields) != 5 {
					t.Errorf("return fields = %v", q.ReturnFields)
				}
				return &db.SearchResult{}, nil
			}
			if _, err := repo.SearchKNN(context.Background(), tt.algo, testVector(), priceFilter(t, 0, 1000), 10); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSearchKNN_ParsesCandidates(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:   "airbnb:abc",
					Score: 0.12,
					Fields: map[string]string{
						"name": "Sunny loft", "space": "Entire apartment",
						"price": "150", "accommodates": "2", "amenities": `["Wifi"]`,
					},
				},
				{
					Key:    "airbnb:def",
					Score:  0.34,
					Fields: map[string]string{"name": "Cabin", "price": "180", "amenities": "oops"},
				},
			},
		}, nil
	}

	got, err := repo.SearchKNN(context.Background(), algorithm.Flat, testVector(), priceFilter(t, 100, 200), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("candidates = %d, want 2", len(got))
	}
	if got[0].ID != "abc" || got[0].Price != 150 || got[0].Accommodates != 2 || got[0].Distance != 0.12 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].ID != "def" || got[1].Amenities != "oops" || got[1].Accommodates != 0 {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.SearchKNN(context.Background(), algorithm.HNSW, testVector(), priceFilter(t, 0, 1), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestSearchKNN_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, errors.New("connection reset")
	}
	if _, err := repo.SearchKNN(context.Background(), algorithm.Flat, testVector(), priceFilter(t, 0, 1), 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchKNN_InvalidAlgorithm(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.SearchKNN(context.Background(), "IVF", testVector(), priceFilter(t, 0, 1), 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchKNN_UnreadableNumericFieldsMarked(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
			{Key: "airbnb:x", Score: 0.1, Fields: map[string]string{"price": "cheap"}},
			{Key: "airbnb:y", Score: 0.2, Fields: map[string]string{"price": "90", "accommodates": "many"}},
			{Key: "airbnb:z", Score: 0.3, Fields: map[string]string{"price": "95", "accommodates": "3"}},
		}}, nil
	}

	got, err := repo.SearchKNN(context.Background(), algorithm.Flat, testVector(), priceFilter(t, 0, 100), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("candidates = %d, want 3", len(got))
	}
	if got[0].Err == nil || got[0].BadField != "price" {
		t.Errorf("candidate x = %+v, want price error", got[0])
	}
	if got[1].Err == nil || got[1].BadField != "accommodates" {
		t.Errorf("candidate y = %+v, want accommodates error", got[1])
	}
	if got[2].Err != nil || got[2].Price != 95 || got[2].Accommodates != 3 {
		t.Errorf("candidate z = %+v", got[2])
	}
}
