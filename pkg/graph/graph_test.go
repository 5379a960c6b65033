package graph

import (
	"reflect"
	"testing"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

func testEntities() []common.Entity {
	return []common.Entity{
		{Name: "Alice", Type: common.EntityTypePerson, Description: "An engineer."},
		{Name: "Bob", Type: common.EntityTypePerson, Description: "A manager."},
		{Name: "Acme", Type: common.EntityTypeOrganization, Description: "A company."},
		{Name: "Paris", Type: common.EntityTypeLocation, Description: "A city."},
	}
}

func TestBuildSkipsInvalidNodesAndEdges(t *testing.T) {
	entities := append(testEntities(),
		common.Entity{Name: "", Description: "no name"},
		common.Entity{Name: "   ", Description: "blank name"},
	)
	relationships := []common.Relationship{
		{Source: "Alice", Target: "Acme", Label: "works_at", Weight: 1},
		{Source: "Alice", Target: "Ghost", Label: "knows", Weight: 1},
		{Source: "", Target: "Bob", Label: "manages", Weight: 1},
		{Source: "Bob", Target: "Acme", Label: "works_at", Weight: 1},
	}

	g := Build(entities, relationships)

	if got, want := g.NodeCount(), 4; got != want {
		t.Fatalf("NodeCount() = %d, want %d", got, want)
	}
	if got, want := g.EdgeCount(), 2; got != want {
		t.Fatalf("EdgeCount() = %d, want %d", got, want)
	}
	if g.HasNode("Ghost") {
		t.Error("unexpected node Ghost")
	}
	if len(g.EdgeBetween("Alice", "Ghost")) != 0 {
		t.Error("edge to unknown endpoint should be dropped")
	}
}

func TestBuildRepeatedEdgeIncrementsWeight(t *testing.T) {
	relationships := []common.Relationship{
		{Source: "Alice", Target: "Bob", Label: "knows", Weight: 1},
		{Source: "Alice", Target: "Bob", Label: "knows", Weight: 1},
		{Source: "Bob", Target: "Alice", Label: "knows", Weight: 1},
		{Source: "Alice", Target: "Bob", Label: "mentors", Weight: 1},
	}

	g := Build(testEntities(), relationships)

	edges := g.EdgeBetween("Alice", "Bob")
	if len(edges) != 2 {
		t.Fatalf("EdgeBetween(Alice, Bob) returned %d edges, want 2", len(edges))
	}

	var knows *Edge
	for _, e := range edges {
		if e.Label == "knows" {
			knows = e
		}
	}
	if knows == nil {
		t.Fatal("missing knows edge")
	}
	if knows.Weight != 3 {
		t.Errorf("knows weight = %v, want 3", knows.Weight)
	}
}

func TestBuildUndirectedAccessors(t *testing.T) {
	relationships := []common.Relationship{
		{Source: "Alice", Target: "Bob", Label: "knows"},
		{Source: "Alice", Target: "Acme", Label: "works_at"},
	}

	g := Build(testEntities(), relationships)

	if got, want := g.Neighbors("Alice"), []string{"Acme", "Bob"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Neighbors(Alice) = %v, want %v", got, want)
	}
	if got, want := g.Degree("Alice"), 2; got != want {
		t.Errorf("Degree(Alice) = %d, want %d", got, want)
	}
	if got, want := g.Degree("Paris"), 0; got != want {
		t.Errorf("Degree(Paris) = %d, want %d", got, want)
	}
	if len(g.EdgeBetween("Bob", "Alice")) != 1 {
		t.Error("EdgeBetween should be orientation independent")
	}
}

func TestMergeEntities(t *testing.T) {
	entities := []common.Entity{
		{Name: "Alice", Type: common.EntityTypePerson, Description: "An engineer."},
		{Name: "alice", Type: common.EntityTypeUnknown, Description: "Works at Acme."},
		{Name: "Bob", Type: common.EntityTypePerson, Description: "A manager."},
		{Name: "ALICE", Description: "An engineer."},
	}

	got := MergeEntities(entities)

	if len(got) != 2 {
		t.Fatalf("MergeEntities returned %d entities, want 2", len(got))
	}
	if got[0].Name != "Alice" {
		t.Errorf("canonical name = %q, want Alice", got[0].Name)
	}
	if got[0].Type != common.EntityTypePerson {
		t.Errorf("first occurrence type should win, got %q", got[0].Type)
	}
	if want := "An engineer. Works at Acme."; got[0].Description != want {
		t.Errorf("merged description = %q, want %q", got[0].Description, want)
	}
}

func TestMergeRelationships(t *testing.T) {
	relationships := []common.Relationship{
		{Source: "Alice", Target: "Bob", Label: "knows", Weight: 1},
		{Source: "bob", Target: "alice", Label: "KNOWS", Weight: 1},
		{Source: "Alice", Target: "Acme", Label: "works_at"},
	}

	got := MergeRelationships(relationships)

	if len(got) != 2 {
		t.Fatalf("MergeRelationships returned %d relationships, want 2", len(got))
	}
	if got[0].Weight != 2 {
		t.Errorf("merged weight = %v, want 2", got[0].Weight)
	}
	if got[1].Weight != 1 {
		t.Errorf("default weight = %v, want 1", got[1].Weight)
	}
}
