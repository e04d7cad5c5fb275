package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/staysearch/internal/db"
	"github.com/kailas-cloud/staysearch/internal/domain"
)

type mockStore struct {
	createFn func(ctx context.Context, def *db.IndexDefinition) error
	dropFn   func(ctx context.Context, name string, deleteDocs bool) error
	existsFn func(ctx context.Context, name string) (bool, error)
	created  int
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.created++
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	if m.dropFn != nil {
		return m.dropFn(ctx, name, deleteDocs)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, name)
	}
	return false, nil
}

func TestDefinition(t *testing.T) {
	def, err := Definition(domain.DefaultIndexConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Name != "airbnb-index" {
		t.Errorf("name = %q", def.Name)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "airbnb:" {
		t.Errorf("prefixes = %v", def.Prefixes)
	}
	if len(def.Fields) != 9 {
		t.Fatalf("fields = %d, want 9", len(def.Fields))
	}

	types := map[string]db.IndexFieldType{
		"name": db.IndexFieldText, "space": db.IndexFieldText, "description": db.IndexFieldText,
		"price": db.IndexFieldNumeric, "accommodates": db.IndexFieldNumeric,
		"amenities": db.IndexFieldText,
	}
	for name, want := range types {
		f, ok := def.Field(name)
		if !ok {
			t.Errorf("field %s missing", name)
			continue
		}
		if f.Type != want {
			t.Errorf("field %s type = %d, want %d", name, f.Type, want)
		}
	}

	flat, _ := def.Field("text_embedding")
	if flat.VectorAlgo != db.VectorFlat || flat.VectorDim != 1536 || flat.VectorDistance != db.DistanceCosine {
		t.Errorf("text_embedding = %+v", flat)
	}
	hnsw, _ := def.Field("text_embedding_hnsw")
	if hnsw.VectorAlgo != db.VectorHNSW || hnsw.VectorDim != 1536 || hnsw.VectorM != 40 || hnsw.VectorEFConstruct != 200 {
		t.Errorf("text_embedding_hnsw = %+v", hnsw)
	}
	img, _ := def.Field("image_embedding")
	if img.VectorAlgo != db.VectorFlat || img.VectorDim != 512 {
		t.Errorf("image_embedding = %+v", img)
	}
}

func TestEnsureIndex_Created(t *testing.T) {
	ms := &mockStore{}
	created, err := New(ms, domain.DefaultIndexConfig()).EnsureIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("created = false, want true")
	}
}

func TestEnsureIndex_TwiceIsNoop(t *testing.T) {
	exists := false
	ms := &mockStore{createFn: func(_ context.Context, _ *db.IndexDefinition) error {
		if exists {
			return &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}
		}
		exists = true
		return nil
	}}
	repo := New(ms, domain.DefaultIndexConfig())

	if _, err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("first call: %v", err)
	}
	created, err := repo.EnsureIndex(context.Background())
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created {
		t.Error("second call should report created = false")
	}
	if ms.created != 2 {
		t.Errorf("CreateIndex calls = %d, want 2", ms.created)
	}
}

func TestEnsureIndex_OtherError(t *testing.T) {
	ms := &mockStore{createFn: func(_ context.Context, _ *db.IndexDefinition) error {
		return errors.New("connection refused")
	}}
	if _, err := New(ms, domain.DefaultIndexConfig()).EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDrop(t *testing.T) {
	var gotDD bool
	ms := &mockStore{dropFn: func(_ context.Context, name string, deleteDocs bool) error {
		if name != "airbnb-index" {
			t.Errorf("name = %q", name)
		}
		gotDD = deleteDocs
		return nil
	}}
	if err := New(ms, domain.DefaultIndexConfig()).Drop(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotDD {
		t.Error("deleteDocs not forwarded")
	}
}

func TestDrop_NotFound(t *testing.T) {
	ms := &mockStore{dropFn: func(_ context.Context, _ string, _ bool) error {
		return db.ErrIndexNotFound
	}}
	err := New(ms, domain.DefaultIndexConfig()).Drop(context.Background(), false)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestExists(t *testing.T) {
	ms := &mockStore{existsFn: func(_ context.Context, _ string) (bool, error) { return true, nil }}
	ok, err := New(ms, domain.DefaultIndexConfig()).Exists(context.Background())
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
}
