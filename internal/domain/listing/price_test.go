package listing

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRawPrice_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   RawPrice
		want int64
	}{
		{"currency with separator", TextPrice("$1,234"), 1234},
		{"currency", TextPrice("$150"), 150},
		{"plain text", TextPrice("85"), 85},
		{"padded text", TextPrice(" $99 "), 99},
		{"decimal text truncated", TextPrice("$1,050.75"), 1050},
		{"integral number", NumericPrice(150), 150},
		{"fractional number truncated", NumericPrice(99.9), 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRawPrice_NormalizeInvalid(t *testing.T) {
	for _, in := range []RawPrice{TextPrice(""), TextPrice("$"), TextPrice("abc"), TextPrice("$12a")} {
		if _, err := in.Normalize(); !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("Normalize(%+v) error = %v, want ErrInvalidPrice", in, err)
		}
	}
}

func TestRawPrice_UnmarshalJSON(t *testing.T) {
	var row struct {
		A RawPrice `json:"a"`
		B RawPrice `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"$1,234","b":250}`), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, _ := row.A.Normalize(); v != 1234 {
		t.Errorf("a = %d, want 1234", v)
	}
	if v, _ := row.B.Normalize(); v != 250 {
		t.Errorf("b = %d, want 250", v)
	}

	var bad RawPrice
	if err := json.Unmarshal([]byte(`{"x":1}`), &bad); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("object price error = %v, want ErrInvalidPrice", err)
	}
}
