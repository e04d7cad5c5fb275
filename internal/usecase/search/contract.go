package search

import (
	"context"

	"github.com/kailas-cloud/staysearch/internal/domain"
	"github.com/kailas-cloud/staysearch/internal/domain/search/algorithm"
	"github.com/kailas-cloud/staysearch/internal/domain/search/filter"
	"github.com/kailas-cloud/staysearch/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchKNN(
		ctx context.Context, algo algorithm.Algorithm,
		vector []float32, filters filter.Expression, k int,
	) ([]result.Candidate, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
