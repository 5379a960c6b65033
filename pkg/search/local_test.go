package search

import (
	"testing"

	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/graph"
	"github.com/wfiftyfour/graphrag/pkg/index"
)

func chunkIndexFixture(t *testing.T) *index.VectorIndex {
	t.Helper()
	idx, err := index.NewVectorIndex(2)
	if err != nil {
		t.Fatalf("NewVectorIndex failed: %v", err)
	}
	chunks := []struct {
		text string
		vec  []float32
	}{
		{"Iron is found in red meat.", []float32{0.9, 0.436}},
		{"Vitamin C aids iron absorption.", []float32{0.7, 0.714}},
		{"Calcium is found in dairy.", []float32{0.5, 0.866}},
	}
	for i, c := range chunks {
		if err := idx.Add(c.vec, map[string]any{"text": c.text, "chunk_index": i}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return idx
}

func TestLocalSearchChunksOnly(t *testing.T) {
	s, err := NewLocalSearch(NewLocalSearchParams{Chunks: chunkIndexFixture(t)})
	if err != nil {
		t.Fatalf("NewLocalSearch failed: %v", err)
	}

	results, err := s.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.Type != ResultTypeChunk {
			t.Errorf("result %d type = %q, want chunk", i, r.Type)
		}
	}
	if results[0].Score < results[1].Score {
		t.Error("results not in descending score order")
	}
	if results[0].Content != "Iron is found in red meat." {
		t.Errorf("best result = %q", results[0].Content)
	}
}

func TestLocalSearchEntityIntrusion(t *testing.T) {
	entityIdx, err := index.NewVectorIndex(2)
	if err != nil {
		t.Fatalf("NewVectorIndex failed: %v", err)
	}
	// one entity scoring above every chunk
	if err := entityIdx.Add([]float32{1, 0}, map[string]any{
		"name":        "Iron",
		"description": "An essential mineral.",
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	g := graph.Build(
		[]common.Entity{{Name: "Iron"}, {Name: "Red Meat"}, {Name: "Spinach"}},
		[]common.Relationship{
			{Source: "Iron", Target: "Red Meat", Label: "found_in"},
			{Source: "Iron", Target: "Spinach", Label: "found_in"},
		},
	)

	s, err := NewLocalSearch(NewLocalSearchParams{
		Chunks:   chunkIndexFixture(t),
		Entities: entityIdx,
		Graph:    g,
	})
	if err != nil {
		t.Fatalf("NewLocalSearch failed: %v", err)
	}

	results, err := s.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// the perfectly matching entity displaces a weaker chunk
	if results[0].Type != ResultTypeEntity {
		t.Fatalf("top result type = %q, want entity", results[0].Type)
	}
	if results[0].Content != "Iron: An essential mineral." {
		t.Errorf("entity content = %q", results[0].Content)
	}

	gc := results[0].GraphContext
	if gc == nil {
		t.Fatal("entity result missing graph context")
	}
	if gc.Degree != 2 {
		t.Errorf("degree = %d, want 2", gc.Degree)
	}
	if len(gc.Neighbors) != 2 {
		t.Errorf("neighbors = %v, want 2 entries", gc.Neighbors)
	}
	if len(gc.Relationships) != 2 {
		t.Fatalf("relationships = %v, want 2 entries", gc.Relationships)
	}
	if gc.Relationships[0].Relationship != "found_in" {
		t.Errorf("relationship label = %q, want found_in", gc.Relationships[0].Relationship)
	}
}

func TestLocalSearchEntityContextUnknownEntity(t *testing.T) {
	entityIdx, err := index.NewVectorIndex(2)
	if err != nil {
		t.Fatalf("NewVectorIndex failed: %v", err)
	}
	if err := entityIdx.Add([]float32{1, 0}, map[string]any{
		"name":        "Phantom",
		"description": "Not in the graph.",
	}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s, err := NewLocalSearch(NewLocalSearchParams{
		Chunks:   chunkIndexFixture(t),
		Entities: entityIdx,
		Graph:    graph.Build(nil, nil),
	})
	if err != nil {
		t.Fatalf("NewLocalSearch failed: %v", err)
	}

	results, err := s.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	var entity *SearchResult
	for i := range results {
		if results[i].Type == ResultTypeEntity {
			entity = &results[i]
		}
	}
	if entity == nil {
		t.Fatal("entity result missing")
	}
	if entity.GraphContext == nil {
		t.Fatal("graph context should be present but empty")
	}
	if entity.GraphContext.Degree != 0 || len(entity.GraphContext.Neighbors) != 0 {
		t.Errorf("unknown entity should have empty context, got %+v", entity.GraphContext)
	}
}

func TestNewLocalSearchRequiresChunks(t *testing.T) {
	if _, err := NewLocalSearch(NewLocalSearchParams{}); err == nil {
		t.Error("missing chunk index should be rejected")
	}
}
