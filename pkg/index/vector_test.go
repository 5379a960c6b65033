package index

import (
	"testing"
)

func TestVectorIndexSearchRanksByCosine(t *testing.T) {
	idx, err := NewVectorIndex(3)
	if err != nil {
		t.Fatalf("NewVectorIndex failed: %v", err)
	}

	rows := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.707, 0.707, 0},
	}
	meta := []map[string]any{
		{"id": "x"},
		{"id": "y"},
		{"id": "xy"},
	}
	if err := idx.AddBatch(rows, meta); err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}

	matches, err := idx.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Metadata["id"] != "x" {
		t.Errorf("best match = %v, want x", matches[0].Metadata["id"])
	}
	if matches[1].Metadata["id"] != "xy" {
		t.Errorf("second match = %v, want xy", matches[1].Metadata["id"])
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches not in descending score order")
	}
}

func TestVectorIndexStableTies(t *testing.T) {
	idx, err := NewVectorIndex(2)
	if err != nil {
		t.Fatalf("NewVectorIndex failed: %v", err)
	}
	// three identical rows score identically
	for i := 0; i < 3; i++ {
		if err := idx.Add([]float32{1, 0}, map[string]any{"row": i}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	matches, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i, m := range matches {
		if m.Row != i {
			t.Errorf("tie at position %d resolved to row %d, want %d", i, m.Row, i)
		}
	}
}

func TestVectorIndexDimensionValidation(t *testing.T) {
	idx, err := NewVectorIndex(3)
	if err != nil {
		t.Fatalf("NewVectorIndex failed: %v", err)
	}

	if err := idx.Add([]float32{1, 0}, nil); err == nil {
		t.Error("Add with wrong dimension should fail")
	}
	if _, err := idx.Search([]float32{1, 0}, 1); err == nil {
		t.Error("Search with wrong query dimension should fail")
	}
	if _, err := NewVectorIndex(0); err == nil {
		t.Error("zero dimension should be rejected")
	}
}

func TestVectorIndexEdgeCases(t *testing.T) {
	idx, err := NewVectorIndex(2)
	if err != nil {
		t.Fatalf("NewVectorIndex failed: %v", err)
	}

	// empty index
	matches, err := idx.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty index failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("empty index returned %d matches", len(matches))
	}

	if err := idx.Add([]float32{0, 1}, map[string]any{"id": "only"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// k beyond index size
	matches, err = idx.Search([]float32{0, 1}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("got %d matches, want 1", len(matches))
	}

	// k <= 0
	matches, err = idx.Search([]float32{0, 1}, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("k=0 returned %d matches", len(matches))
	}
}
