package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/staysearch/internal/db"
	"github.com/kailas-cloud/staysearch/internal/domain"
	domlisting "github.com/kailas-cloud/staysearch/internal/domain/listing"
)

// ErrVectorMismatch is returned when a stored listing's FLAT and HNSW text
// embedding fields hold different bytes.
var ErrVectorMismatch = errors.New("flat and hnsw text embeddings differ")

// store is the consumer interface for listing records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	DBSize(ctx context.Context) (int64, error)
}

// Repo implements usecase/ingest.Repository.
type Repo struct {
	store store
	cfg   domain.IndexConfig
}

// New creates a listing repository.
func New(s store, cfg domain.IndexConfig) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// Count returns the number of keys in the store, of any kind.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	n, err := r.store.DBSize(ctx)
	if err != nil {
		return 0, fmt.Errorf("dbsize: %w", err)
	}
	return n, nil
}

// Save writes the full field set of a listing under its key.
func (r *Repo) Save(ctx context.Context, l *domlisting.Listing) error {
	key := r.cfg.Key(l.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(l)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Get returns a listing by ID. The HNSW copy of the text embedding must match
// the FLAT one, otherwise ErrVectorMismatch is returned.
func (r *Repo) Get(ctx context.Context, id string) (domlisting.Listing, error) {
	key := r.cfg.Key(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domlisting.Listing{}, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
		}
		return domlisting.Listing{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseHashFields(id, m)
}
