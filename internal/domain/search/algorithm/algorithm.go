package algorithm

import "fmt"

// Algorithm is the vector index a query runs against.
type Algorithm string

// Supported algorithms.
const (
	// Flat is exact brute-force KNN.
	Flat Algorithm = "FLAT"
	// HNSW is approximate graph-based KNN.
	HNSW Algorithm = "HNSW"
)

// IsValid checks if the algorithm is one of the supported values.
func (a Algorithm) IsValid() bool {
	return a == Flat || a == HNSW
}

// VectorField returns the indexed field the algorithm searches.
func (a Algorithm) VectorField() string {
	switch a {
	case Flat:
		return "text_embedding"
	case HNSW:
		return "text_embedding_hnsw"
	default:
		panic(fmt.Sprintf("unknown algorithm %q", string(a)))
	}
}

// ScoreAlias returns the name the distance score is reported under.
func (a Algorithm) ScoreAlias() string {
	switch a {
	case Flat:
		return "flat_score"
	case HNSW:
		return "hnsw_score"
	default:
		panic(fmt.Sprintf("unknown algorithm %q", string(a)))
	}
}
