package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/staysearch/internal/db"
	"github.com/kailas-cloud/staysearch/internal/domain"
	domlisting "github.com/kailas-cloud/staysearch/internal/domain/listing"
)

// mockStore is an in-memory hash store.
type mockStore struct {
	hashes  map[string]map[string]string
	hsetErr error
	sizeErr error
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	m.hashes[key] = fields
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	h, ok := m.hashes[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return h, nil
}

func (m *mockStore) DBSize(_ context.Context) (int64, error) {
	if m.sizeErr != nil {
		return 0, m.sizeErr
	}
	return int64(len(m.hashes)), nil
}

func testListing(t *testing.T) domlisting.Listing {
	t.Helper()
	text := make([]float32, domlisting.TextEmbeddingDim)
	text[0] = 0.5
	image := make([]float32, domlisting.ImageEmbeddingDim)
	image[1] = 0.25
	l, err := domlisting.FromRecord(&domlisting.Record{
		ID:             "abc",
		Name:           "Sunny loft",
		Space:          "Entire apartment",
		Description:    "Close to the beach",
		Price:          domlisting.TextPrice("$150"),
		Accommodates:   2,
		Amenities:      domlisting.AmenityList("Wifi", "Kitchen"),
		TextEmbedding:  text,
		ImageEmbedding: image,
	})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	return l
}

func TestSave_WritesAllFields(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, domain.DefaultIndexConfig())
	l := testListing(t)

	if err := repo.Save(context.Background(), &l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h, ok := ms.hashes["airbnb:abc"]
	if !ok {
		t.Fatal("record not stored under airbnb:abc")
	}
	if h["price"] != "150" {
		t.Errorf("price = %q, want 150", h["price"])
	}
	if h["amenities"] != `["Wifi","Kitchen"]` {
		t.Errorf("amenities = %q", h["amenities"])
	}
	if h["accommodates"] != "2" {
		t.Errorf("accommodates = %q", h["accommodates"])
	}
	if len(h["text_embedding"]) != domlisting.TextEmbeddingDim*4 {
		t.Errorf("text_embedding bytes = %d", len(h["text_embedding"]))
	}
	if h["text_embedding"] != h["text_embedding_hnsw"] {
		t.Error("FLAT and HNSW fields must hold identical bytes")
	}
	if len(h["image_embedding"]) != domlisting.ImageEmbeddingDim*4 {
		t.Errorf("image_embedding bytes = %d", len(h["image_embedding"]))
	}
	if len(h) != 9 {
		t.Errorf("field count = %d, want 9", len(h))
	}
}

func TestSave_Error(t *testing.T) {
	ms := newMockStore()
	ms.hsetErr = errors.New("READONLY")
	l := testListing(t)
	if err := New(ms, domain.DefaultIndexConfig()).Save(context.Background(), &l); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_RoundTrip(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, domain.DefaultIndexConfig())
	l := testListing(t)
	if err := repo.Save(context.Background(), &l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != "Sunny loft" || got.Price() != 150 || got.Accommodates() != 2 {
		t.Errorf("unexpected listing: %+v", got)
	}
	if got.TextEmbedding()[0] != 0.5 || got.ImageEmbedding()[1] != 0.25 {
		t.Error("embeddings did not round-trip")
	}
}

func TestGet_VectorMismatch(t *testing.T) {
	ms := newMockStore()
	repo := New(ms, domain.DefaultIndexConfig())
	l := testListing(t)
	if err := repo.Save(context.Background(), &l); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other := make([]float32, domlisting.TextEmbeddingDim)
	ms.hashes["airbnb:abc"]["text_embedding_hnsw"] = string(domain.EncodeVector(other))

	if _, err := repo.Get(context.Background(), "abc"); !errors.Is(err, ErrVectorMismatch) {
		t.Errorf("error = %v, want ErrVectorMismatch", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := New(newMockStore(), domain.DefaultIndexConfig()).Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCount(t *testing.T) {
	ms := newMockStore()
	ms.hashes["x"] = map[string]string{}
	n, err := New(ms, domain.DefaultIndexConfig()).Count(context.Background())
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}

	ms.sizeErr = errors.New("down")
	if _, err := New(ms, domain.DefaultIndexConfig()).Count(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"150", 150},
		{"150.9", 150},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := parseInt(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("parseInt(%q) = %d, %v", tt.in, got, err)
		}
	}
	if _, err := parseInt("abc"); err == nil {
		t.Error("expected error for non-numeric")
	}
}
