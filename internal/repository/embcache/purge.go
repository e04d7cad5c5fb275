package embcache

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/staysearch/internal/domain"
)

// purger deletes keys by prefix.
type purger interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Purge removes every cached query embedding and returns the number of keys deleted.
func Purge(ctx context.Context, s purger) (int64, error) {
	n, err := s.DeleteByPrefix(ctx, domain.EmbeddingCachePrefix)
	if err != nil {
		return 0, fmt.Errorf("purge %s*: %w", domain.EmbeddingCachePrefix, err)
	}
	return n, nil
}
