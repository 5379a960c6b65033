package search

// ResultType tags which retrieval surface produced a SearchResult.
type ResultType string

const (
	ResultTypeChunk     ResultType = "chunk"
	ResultTypeEntity    ResultType = "entity"
	ResultTypeCommunity ResultType = "community"
)

// Relation is one labeled edge from an entity to a neighbor.
type Relation struct {
	Neighbor     string `json:"neighbor"`
	Relationship string `json:"relationship"`
}

// GraphContext is the one-hop neighborhood attached to entity results.
type GraphContext struct {
	Neighbors     []string   `json:"neighbors"`
	Relationships []Relation `json:"relationships"`
	Degree        int        `json:"degree"`
}

// SearchResult is a single retrieval hit. Type decides which fields are
// populated: chunk and entity results carry Content and Metadata, entity
// results additionally carry GraphContext, and community results carry
// the community fields.
type SearchResult struct {
	Type     ResultType     `json:"type"`
	Score    float64        `json:"score"`
	Content  string         `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`

	// entity results only
	GraphContext *GraphContext `json:"graph_context,omitempty"`

	// community results only
	CommunityID int     `json:"community_id,omitempty"`
	Title       string  `json:"title,omitempty"`
	Summary     string  `json:"summary,omitempty"`
	NumEntities int     `json:"num_entities,omitempty"`
	Rank        float64 `json:"rank,omitempty"`
}
