package domain

import "context"

type embeddingUsageKey struct{}

// EmbeddingUsage collects embedding usage for one interactive query.
// The caller puts a mutable pointer into the context before searching;
// the embedder chain records into it; the caller reads it for display.
type EmbeddingUsage struct {
	TotalTokens int
	Calls       int
	CacheHits   int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Record adds one embedding result. Safe on a nil collector.
func (u *EmbeddingUsage) Record(r EmbeddingResult) {
	if u == nil {
		return
	}
	u.Calls++
	u.TotalTokens += r.TotalTokens
	if r.Cached {
		u.CacheHits++
	}
}
