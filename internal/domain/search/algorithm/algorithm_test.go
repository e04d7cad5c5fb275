package algorithm

import "testing"

func TestIsValid(t *testing.T) {
	for _, a := range []Algorithm{Flat, HNSW} {
		if !a.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", a)
		}
	}
	for _, a := range []Algorithm{"", "flat", "IVF"} {
		if a.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", a)
		}
	}
}

func TestFieldsAndAliases(t *testing.T) {
	tests := []struct {
		a     Algorithm
		field string
		alias string
	}{
		{Flat, "text_embedding", "flat_score"},
		{HNSW, "text_embedding_hnsw", "hnsw_score"},
	}
	for _, tt := range tests {
		if got := tt.a.VectorField(); got != tt.field {
			t.Errorf("%s.VectorField() = %q, want %q", tt.a, got, tt.field)
		}
		if got := tt.a.ScoreAlias(); got != tt.alias {
			t.Errorf("%s.ScoreAlias() = %q, want %q", tt.a, got, tt.alias)
		}
	}
}

func TestVectorField_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Algorithm("IVF").VectorField()
}
