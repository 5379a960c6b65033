package search

import (
	"fmt"
	"sort"

	"github.com/wfiftyfour/graphrag/pkg/graph"
	"github.com/wfiftyfour/graphrag/pkg/index"
)

const (
	// entity hits returned per query regardless of topK
	localEntityCount = 5
	// one-hop context caps
	maxContextNeighbors     = 10
	maxContextRelationships = 5
)

// LocalSearch retrieves specific chunks and entities for detail-oriented
// queries. Chunk hits come from the chunk index; when an entity index is
// loaded, the top five entities are always added with their one-hop graph
// context and compete with chunks for the final topK slots. That intrusion
// is intentional: a strongly matching entity should displace a weakly
// matching chunk.
type LocalSearch struct {
	chunks   *index.VectorIndex
	entities *index.VectorIndex
	graph    *graph.Graph
}

// NewLocalSearchParams contains the loaded indices for a LocalSearch.
// Chunks is required; Entities and Graph are optional and enable the
// entity half of retrieval when present.
type NewLocalSearchParams struct {
	Chunks   *index.VectorIndex
	Entities *index.VectorIndex
	Graph    *graph.Graph
}

// NewLocalSearch creates a LocalSearch over the given indices.
func NewLocalSearch(params NewLocalSearchParams) (*LocalSearch, error) {
	if params.Chunks == nil {
		return nil, fmt.Errorf("local search requires a chunk index")
	}
	return &LocalSearch{
		chunks:   params.Chunks,
		entities: params.Entities,
		graph:    params.Graph,
	}, nil
}

// Search returns the topK best chunk and entity hits for the query
// embedding, sorted by score descending.
func (s *LocalSearch) Search(queryEmbedding []float32, topK int) ([]SearchResult, error) {
	chunkMatches, err := s.chunks.Search(queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(chunkMatches)+localEntityCount)
	for _, m := range chunkMatches {
		text, _ := m.Metadata["text"].(string)
		results = append(results, SearchResult{
			Type:     ResultTypeChunk,
			Score:    m.Score,
			Content:  text,
			Metadata: m.Metadata,
		})
	}

	if s.entities != nil {
		entityMatches, err := s.entities.Search(queryEmbedding, localEntityCount)
		if err != nil {
			return nil, fmt.Errorf("entity search failed: %w", err)
		}
		for _, m := range entityMatches {
			name, _ := m.Metadata["name"].(string)
			description, _ := m.Metadata["description"].(string)
			results = append(results, SearchResult{
				Type:         ResultTypeEntity,
				Score:        m.Score,
				Content:      fmt.Sprintf("%s: %s", name, description),
				Metadata:     m.Metadata,
				GraphContext: s.entityContext(name),
			})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// entityContext collects the one-hop neighborhood of an entity. Unknown
// entities and a missing graph yield an empty context.
func (s *LocalSearch) entityContext(name string) *GraphContext {
	gc := &GraphContext{}
	if s.graph == nil || !s.graph.HasNode(name) {
		return gc
	}

	neighbors := s.graph.Neighbors(name)
	gc.Degree = s.graph.Degree(name)

	for _, neighbor := range neighbors {
		if len(gc.Relationships) >= maxContextRelationships {
			break
		}
		label := ""
		if edges := s.graph.EdgeBetween(name, neighbor); len(edges) > 0 {
			label = edges[0].Label
		}
		gc.Relationships = append(gc.Relationships, Relation{
			Neighbor:     neighbor,
			Relationship: label,
		})
	}

	if len(neighbors) > maxContextNeighbors {
		neighbors = neighbors[:maxContextNeighbors]
	}
	gc.Neighbors = neighbors

	return gc
}
