package graph

import (
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

// twoCliques builds two dense 4-node clusters joined by a single weak edge.
func twoCliques() *Graph {
	var entities []common.Entity
	for i := 0; i < 8; i++ {
		entities = append(entities, common.Entity{Name: fmt.Sprintf("n%d", i)})
	}
	var relationships []common.Relationship
	clique := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			for j := i + 1; j < hi; j++ {
				relationships = append(relationships, common.Relationship{
					Source: fmt.Sprintf("n%d", i),
					Target: fmt.Sprintf("n%d", j),
					Label:  "linked",
					Weight: 1,
				})
			}
		}
	}
	clique(0, 4)
	clique(4, 8)
	relationships = append(relationships, common.Relationship{
		Source: "n0", Target: "n4", Label: "bridge", Weight: 1,
	})
	return Build(entities, relationships)
}

func membershipOf(communities []common.Community) map[string]int {
	m := make(map[string]int)
	for _, c := range communities {
		for _, member := range c.Members {
			m[member] = c.ID
		}
	}
	return m
}

func TestDetectCommunitiesSeparatesCliques(t *testing.T) {
	g := twoCliques()
	communities := DetectCommunities(g, 1.0)

	membership := membershipOf(communities)
	if len(membership) != g.NodeCount() {
		t.Fatalf("partition covers %d nodes, want %d", len(membership), g.NodeCount())
	}

	for i := 1; i < 4; i++ {
		if membership[fmt.Sprintf("n%d", i)] != membership["n0"] {
			t.Errorf("n%d not in n0's community", i)
		}
	}
	for i := 5; i < 8; i++ {
		if membership[fmt.Sprintf("n%d", i)] != membership["n4"] {
			t.Errorf("n%d not in n4's community", i)
		}
	}
	if membership["n0"] == membership["n4"] {
		t.Error("cliques should end up in different communities")
	}
}

func TestDetectCommunitiesDeterministic(t *testing.T) {
	g := twoCliques()
	first := DetectCommunities(g, 1.0)
	second := DetectCommunities(g, 1.0)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated detection on the same graph should be identical")
	}
}

func TestDetectCommunitiesIsolatedNodes(t *testing.T) {
	entities := []common.Entity{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
	}
	g := Build(entities, nil)

	communities := DetectCommunities(g, 1.0)
	if len(communities) != 3 {
		t.Fatalf("got %d communities, want 3 singletons", len(communities))
	}
	for _, c := range communities {
		if c.Size() != 1 {
			t.Errorf("community %d has %d members, want 1", c.ID, c.Size())
		}
	}
}

func TestDetectCommunitiesEmptyGraph(t *testing.T) {
	g := Build(nil, nil)
	if got := DetectCommunities(g, 1.0); got != nil {
		t.Errorf("empty graph should yield no communities, got %v", got)
	}
}

func TestDetectCommunitiesEveryComponentCovered(t *testing.T) {
	entities := []common.Entity{
		{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "lonely"},
	}
	relationships := []common.Relationship{
		{Source: "a", Target: "b", Label: "linked", Weight: 1},
		{Source: "c", Target: "d", Label: "linked", Weight: 1},
	}
	g := Build(entities, relationships)

	communities := DetectCommunities(g, 1.0)

	var all []string
	for _, c := range communities {
		all = append(all, c.Members...)
	}
	sort.Strings(all)
	want := []string{"a", "b", "c", "d", "lonely"}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("partition members = %v, want %v", all, want)
	}

	membership := membershipOf(communities)
	if membership["a"] == membership["c"] {
		t.Error("disconnected pairs should not share a community")
	}
}

func TestCommunityTitle(t *testing.T) {
	tests := []struct {
		name    string
		members []string
		want    string
	}{
		{
			name:    "single member",
			members: []string{"Alice"},
			want:    "Alice",
		},
		{
			name:    "three members",
			members: []string{"Alice", "Bob", "Carol"},
			want:    "Alice, Bob, Carol",
		},
		{
			name:    "more than three members",
			members: []string{"Alice", "Bob", "Carol", "Dan", "Eve"},
			want:    "Alice, Bob, and 3 others",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommunityTitle(tt.members); got != tt.want {
				t.Errorf("CommunityTitle(%v) = %q, want %q", tt.members, got, tt.want)
			}
		})
	}
}
