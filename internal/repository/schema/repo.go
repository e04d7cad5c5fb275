package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/staysearch/internal/db"
	"github.com/kailas-cloud/staysearch/internal/domain"
	"github.com/kailas-cloud/staysearch/internal/domain/listing"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/ingest.Schema.
type Repo struct {
	store store
	cfg   domain.IndexConfig
}

// New creates a schema repository.
func New(s store, cfg domain.IndexConfig) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// Definition builds the listing index: three text fields, two numeric
// fields, the serialized amenities as text, and three cosine vector fields.
// The text embedding is indexed twice, once FLAT and once HNSW.
func Definition(cfg domain.IndexConfig) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(cfg.Name).
		Prefix(cfg.KeyPrefix).
		Text(listing.FieldName).
		Text(listing.FieldSpace).
		Text(listing.FieldDescription).
		Numeric(listing.FieldPrice).
		Numeric(listing.FieldAccommodates).
		Text(listing.FieldAmenities).
		VectorFlat(listing.FieldTextEmbedding, listing.TextEmbeddingDim, db.DistanceCosine).
		VectorHNSW(listing.FieldTextEmbeddingHNSW, listing.TextEmbeddingDim, db.DistanceCosine,
			cfg.HNSWM, cfg.HNSWEFConstruction).
		VectorFlat(listing.FieldImageEmbedding, listing.ImageEmbeddingDim, db.DistanceCosine).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index definition: %w", err)
	}
	return def, nil
}

// EnsureIndex creates the index. An existing index with the same name is
// left untouched; created reports whether this call made it.
func (r *Repo) EnsureIndex(ctx context.Context) (created bool, err error) {
	def, err := Definition(r.cfg)
	if err != nil {
		return false, err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", r.cfg.Name, err)
	}
	return true, nil
}

// Exists reports whether the index is present.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.cfg.Name)
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", r.cfg.Name, err)
	}
	return ok, nil
}

// Drop removes the index, optionally with its records. Dropping a missing
// index returns domain.ErrNotFound.
func (r *Repo) Drop(ctx context.Context, deleteDocs bool) error {
	if err := r.store.DropIndex(ctx, r.cfg.Name, deleteDocs); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("index %s: %w", r.cfg.Name, domain.ErrNotFound)
		}
		return fmt.Errorf("drop index %s: %w", r.cfg.Name, err)
	}
	return nil
}
