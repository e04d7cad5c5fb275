package domain

import "strings"

// Default index layout.
const (
	DefaultIndexName          = "airbnb-index"
	DefaultKeyPrefix          = "airbnb:"
	DefaultHNSWM              = 40
	DefaultHNSWEFConstruction = 200
	// EmbeddingCachePrefix namespaces cached query embeddings away from the
	// indexed listing prefix.
	EmbeddingCachePrefix = "embcache:"
)

// IndexConfig names the search index and its key layout. It is built once at
// startup and shared read-only by the repositories.
type IndexConfig struct {
	Name               string
	KeyPrefix          string
	HNSWM              int
	HNSWEFConstruction int
}

// DefaultIndexConfig returns the stock listing index layout.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Name:               DefaultIndexName,
		KeyPrefix:          DefaultKeyPrefix,
		HNSWM:              DefaultHNSWM,
		HNSWEFConstruction: DefaultHNSWEFConstruction,
	}
}

// Key returns the storage key of a listing.
func (c IndexConfig) Key(id string) string { return c.KeyPrefix + id }

// ID strips the key prefix from a storage key.
func (c IndexConfig) ID(key string) string { return strings.TrimPrefix(key, c.KeyPrefix) }
