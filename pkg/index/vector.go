package index

import (
	"fmt"
	"sort"
)

// VectorIndex is a flat cosine-similarity index over a row-major matrix of
// L2-normalized float32 embeddings. Every row carries a parallel metadata
// value describing what the row embeds. Search is exact: the query is
// scored against every row.
//
// Rows must be normalized before insertion; scores are plain dot products
// and are only cosine similarities for unit vectors.
type VectorIndex struct {
	dim  int
	rows [][]float32
	meta []map[string]any
}

// NewVectorIndex creates an empty index for vectors of the given
// dimension.
func NewVectorIndex(dim int) (*VectorIndex, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid vector dimension %d", dim)
	}
	return &VectorIndex{dim: dim}, nil
}

// Match is one search hit: the row's metadata and its similarity score.
type Match struct {
	Row      int
	Score    float64
	Metadata map[string]any
}

// Add appends one embedding with its metadata.
func (v *VectorIndex) Add(embedding []float32, metadata map[string]any) error {
	if len(embedding) != v.dim {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(embedding), v.dim)
	}
	v.rows = append(v.rows, embedding)
	v.meta = append(v.meta, metadata)
	return nil
}

// AddBatch appends embeddings with their parallel metadata slice. Both
// slices must have equal length; rows are appended atomically, so a
// dimension error leaves the index unchanged.
func (v *VectorIndex) AddBatch(embeddings [][]float32, metadata []map[string]any) error {
	if len(embeddings) != len(metadata) {
		return fmt.Errorf("metadata length mismatch: got %d rows and %d metadata entries", len(embeddings), len(metadata))
	}
	for i, e := range embeddings {
		if len(e) != v.dim {
			return fmt.Errorf("embedding %d dimension mismatch: got %d, want %d", i, len(e), v.dim)
		}
	}
	v.rows = append(v.rows, embeddings...)
	v.meta = append(v.meta, metadata...)
	return nil
}

// Len returns the number of indexed rows.
func (v *VectorIndex) Len() int {
	return len(v.rows)
}

// Dimension returns the fixed vector dimension of the index.
func (v *VectorIndex) Dimension() int {
	return v.dim
}

// Metadata returns the metadata stored for a row.
func (v *VectorIndex) Metadata(row int) map[string]any {
	if row < 0 || row >= len(v.meta) {
		return nil
	}
	return v.meta[row]
}

// Search returns the k best matches for the query, highest score first.
// Equal scores keep ascending row order, so repeated searches over the
// same index return identical orderings. k larger than the index returns
// every row; an empty index returns no matches.
func (v *VectorIndex) Search(query []float32, k int) ([]Match, error) {
	if len(query) != v.dim {
		return nil, fmt.Errorf("query dimension mismatch: got %d, want %d", len(query), v.dim)
	}
	if k <= 0 || len(v.rows) == 0 {
		return nil, nil
	}

	matches := make([]Match, len(v.rows))
	for i, row := range v.rows {
		matches[i] = Match{Row: i, Score: dot(query, row), Metadata: v.meta[i]}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
