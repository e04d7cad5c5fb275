package db

import "github.com/kailas-cloud/staysearch/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	// VectorField is the indexed vector attribute to search (FLAT or HNSW).
	VectorField string
	// ScoreAlias names the distance in the reply; results are sorted ascending by it.
	ScoreAlias   string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key string
	// Score is the raw distance reported under the query's score alias.
	Score  float64
	Fields map[string]string
}
