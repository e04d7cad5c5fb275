package request

import (
	"errors"
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("  beach house  ", 0, DefaultMinPrice, DefaultMaxPrice, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "beach house" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.TopK() != DefaultTopK {
		t.Errorf("TopK() = %d, want %d", r.TopK(), DefaultTopK)
	}
	if r.Candidates() != 2*DefaultTopK {
		t.Errorf("Candidates() = %d, want %d", r.Candidates(), 2*DefaultTopK)
	}
	if r.MinPrice() != 0 || r.MaxPrice() != 1000 {
		t.Errorf("price range = [%d, %d]", r.MinPrice(), r.MaxPrice())
	}
	if r.WifiRequired() {
		t.Error("WifiRequired() = true")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		topK    int
		min     int64
		max     int64
		wantErr string
	}{
		{"empty query", "   ", 5, 0, 100, "query is required"},
		{"long query", strings.Repeat("a", MaxQueryLength+1), 5, 0, 100, "query too long"},
		{"top_k too large", "q", MaxTopK + 1, 0, 100, "top_k must be at most"},
		{"negative min", "q", 5, -1, 100, "is negative"},
		{"inverted range", "q", 5, 300, 200, "minimum 300 exceeds maximum 200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, tt.topK, tt.min, tt.max, false)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_InvertedRangeIsSentinel(t *testing.T) {
	_, err := New("q", 5, 10, 1, false)
	if !errors.Is(err, ErrInvalidPriceRange) {
		t.Errorf("error = %v, want ErrInvalidPriceRange", err)
	}
}

func TestFilters_InclusivePriceRange(t *testing.T) {
	r, err := New("q", 1, 100, 200, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conds := r.Filters().Must()
	if len(conds) != 1 {
		t.Fatalf("conditions = %d, want 1", len(conds))
	}
	if conds[0].Key() != PriceField {
		t.Errorf("key = %q, want price", conds[0].Key())
	}
	rng := conds[0].Range()
	if *rng.GTE() != 100 || *rng.LTE() != 200 {
		t.Errorf("range = [%v, %v], want [100, 200]", *rng.GTE(), *rng.LTE())
	}
	for _, v := range []float64{100, 150, 200} {
		if !rng.Contains(v) {
			t.Errorf("Contains(%v) = false", v)
		}
	}
	for _, v := range []float64{99, 201, 500} {
		if rng.Contains(v) {
			t.Errorf("Contains(%v) = true", v)
		}
	}
}

func TestNew_EqualBounds(t *testing.T) {
	r, err := New("q", 3, 150, 150, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Filters().Must()[0].Range().Contains(150) {
		t.Error("single-point range should contain its bound")
	}
}
