package console

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/staysearch/internal/domain"
	domlisting "github.com/kailas-cloud/staysearch/internal/domain/listing"
	"github.com/kailas-cloud/staysearch/internal/domain/search/algorithm"
	"github.com/kailas-cloud/staysearch/internal/domain/search/result"
)

func TestAmenityRows(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{"empty", nil, nil},
		{"one", []string{"Wifi"}, []string{"• Wifi"}},
		{
			"wraps after three",
			[]string{"Wifi", "Kitchen", "Heating", "Washer"},
			[]string{"• Wifi  |  • Kitchen  |  • Heating", "• Washer"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := amenityRows(tt.tags); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("amenityRows() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrinter_EmptyBranch(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Branch(result.NewBranch(algorithm.HNSW, nil, time.Millisecond, 0, nil))

	got := out.String()
	if !strings.Contains(got, "No results found matching all criteria.") {
		t.Errorf("output = %q", got)
	}
	if strings.Contains(got, "Found") {
		t.Errorf("empty branch must not report a count: %q", got)
	}
}

func TestPrinter_SkippedAndNoWifi(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	l := result.NewListing("xyz", "Cabin", "Private room", 80, 2, []string{"Kitchen"})
	skips := []result.Skip{
		{ID: "bad", Field: "amenities", Err: errors.New("invalid amenities")},
		{ID: "odd", Field: "price", Err: errors.New(`parse "cheap"`)},
	}
	p.Branch(result.NewBranch(algorithm.Flat, []result.Hit{result.NewFlat(l, 0.3)}, time.Millisecond, 2, skips))

	got := out.String()
	if !strings.Contains(got, "Warning: Error processing amenities for listing bad") {
		t.Errorf("missing skip warning: %q", got)
	}
	if !strings.Contains(got, "Warning: Error processing price for listing odd") {
		t.Errorf("missing price skip warning: %q", got)
	}
	if strings.Contains(got, "WiFi is available") {
		t.Error("listing without Wifi tag must not show the WiFi line")
	}
	if !strings.Contains(got, "Found 1 matching listings.") {
		t.Errorf("missing count: %q", got)
	}
}

func TestPrinter_RatioUnavailable(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Comparison(result.Comparison{
		Flat: result.NewBranch(algorithm.Flat, nil, 5*time.Millisecond, 0, nil),
		HNSW: result.NewBranch(algorithm.HNSW, nil, 0, 0, nil),
	})

	if !strings.Contains(out.String(), "Speed Difference:  n/a") {
		t.Errorf("output = %q", out.String())
	}
}

func TestPrinter_Usage(t *testing.T) {
	tests := []struct {
		name  string
		usage *domain.EmbeddingUsage
		want  string
	}{
		{"no collector", nil, ""},
		{"no calls", &domain.EmbeddingUsage{}, ""},
		{"api call", &domain.EmbeddingUsage{Calls: 1, TotalTokens: 5}, "Query embedding: 5 tokens\n"},
		{"cache hit", &domain.EmbeddingUsage{Calls: 1, CacheHits: 1}, "Query embedding: cached\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).Usage(tt.usage)
			if buf.String() != tt.want {
				t.Errorf("Usage() wrote %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrinter_Listing(t *testing.T) {
	l := domlisting.Reconstruct("abc", "Sunny loft", "Entire home", "Close to the beach",
		150, 4, `["Wifi","Kitchen"]`, make([]float32, 1536), make([]float32, 512))

	var buf bytes.Buffer
	NewPrinter(&buf).Listing(&l)
	out := buf.String()

	for _, want := range []string{
		"ID: abc",
		"Price: $150",
		"Description: Close to the beach",
		"• Wifi  |  • Kitchen",
		"✓ WiFi is available",
		"Text Embedding: 1536 dims (FLAT and HNSW identical)",
		"Image Embedding: 512 dims",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPrinter_ListingMalformedAmenities(t *testing.T) {
	l := domlisting.Reconstruct("bad", "n", "s", "", 10, 1, "{not json", nil, nil)

	var buf bytes.Buffer
	NewPrinter(&buf).Listing(&l)

	if !strings.Contains(buf.String(), "Warning: Error processing amenities for listing bad") {
		t.Errorf("missing warning:\n%s", buf.String())
	}
}
