package ingest

import (
	"context"

	"github.com/kailas-cloud/staysearch/internal/domain/listing"
)

// Repository writes listings and reports how full the store is.
type Repository interface {
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, l *listing.Listing) error
}

// Schema manages the search index.
type Schema interface {
	EnsureIndex(ctx context.Context) (created bool, err error)
}

// Source yields dataset records. Next returns io.EOF after the last record;
// a *dataset.RecordError marks a single unreadable row.
type Source interface {
	Next() (listing.Record, error)
}
