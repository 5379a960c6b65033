package graph

import (
	"sort"
	"strings"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

// Edge is an undirected relationship between two named nodes. Source and
// Target preserve the orientation the relationship was extracted with, but
// lookups treat the pair as unordered.
type Edge struct {
	Source      string
	Target      string
	Label       string
	Description string
	Weight      float64
}

// Graph is an undirected knowledge graph over named entities. Nodes are
// keyed by exact entity name; parallel edges with the same label are
// collapsed into one edge with accumulated weight.
type Graph struct {
	nodes map[string]*common.Entity
	order []string
	adj   map[string]map[string][]*Edge
	edges []*Edge
}

type edgeKey struct {
	a, b, label string
}

func pairKey(a, b, label string) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{a: a, b: b, label: label}
}

// Build constructs a graph from extracted entities and relationships.
//
// Entities with empty names are skipped. Duplicate entity names merge by
// appending the new description. An edge is added only when both endpoints
// exist as nodes; relationships referencing unknown entities are dropped
// silently. A repeated (source, target, label) triple, in either
// orientation, increments the existing edge's weight instead of adding a
// parallel edge.
func Build(entities []common.Entity, relationships []common.Relationship) *Graph {
	g := &Graph{
		nodes: make(map[string]*common.Entity),
		adj:   make(map[string]map[string][]*Edge),
	}

	for i := range entities {
		name := strings.TrimSpace(entities[i].Name)
		if name == "" {
			continue
		}
		if existing, ok := g.nodes[name]; ok {
			if entities[i].Description != "" && !strings.Contains(existing.Description, entities[i].Description) {
				if existing.Description != "" {
					existing.Description += " "
				}
				existing.Description += entities[i].Description
			}
			continue
		}
		e := entities[i]
		e.Name = name
		g.nodes[name] = &e
		g.order = append(g.order, name)
		g.adj[name] = make(map[string][]*Edge)
	}

	byKey := make(map[edgeKey]*Edge)
	for i := range relationships {
		rel := relationships[i]
		source := strings.TrimSpace(rel.Source)
		target := strings.TrimSpace(rel.Target)
		if source == "" || target == "" {
			continue
		}
		if _, ok := g.nodes[source]; !ok {
			continue
		}
		if _, ok := g.nodes[target]; !ok {
			continue
		}

		weight := rel.Weight
		if weight <= 0 {
			weight = 1
		}

		key := pairKey(source, target, rel.Label)
		if existing, ok := byKey[key]; ok {
			existing.Weight += weight
			if rel.Description != "" && !strings.Contains(existing.Description, rel.Description) {
				if existing.Description != "" {
					existing.Description += " "
				}
				existing.Description += rel.Description
			}
			continue
		}

		edge := &Edge{
			Source:      source,
			Target:      target,
			Label:       rel.Label,
			Description: rel.Description,
			Weight:      weight,
		}
		byKey[key] = edge
		g.edges = append(g.edges, edge)
		g.adj[source][target] = append(g.adj[source][target], edge)
		if source != target {
			g.adj[target][source] = append(g.adj[target][source], edge)
		}
	}

	return g
}

// HasNode reports whether the graph contains a node with the given name.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Node returns the entity stored at the given name, or nil.
func (g *Graph) Node(name string) *common.Entity {
	return g.nodes[name]
}

// Nodes returns all node names in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns all edges of the graph.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Neighbors returns the names of all nodes adjacent to name, sorted
// alphabetically. Unknown names yield nil.
func (g *Graph) Neighbors(name string) []string {
	adj, ok := g.adj[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(adj))
	for n := range adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of distinct neighbors of name.
func (g *Graph) Degree(name string) int {
	return len(g.adj[name])
}

// EdgeBetween returns all edges between a and b regardless of orientation.
func (g *Graph) EdgeBetween(a, b string) []*Edge {
	adj, ok := g.adj[a]
	if !ok {
		return nil
	}
	return adj[b]
}
