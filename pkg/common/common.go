package common

import "strings"

// EntityType classifies a node in the knowledge graph.
type EntityType string

const (
	EntityTypePerson       EntityType = "PERSON"
	EntityTypeOrganization EntityType = "ORGANIZATION"
	EntityTypeLocation     EntityType = "LOCATION"
	EntityTypeEvent        EntityType = "EVENT"
	EntityTypeConcept      EntityType = "CONCEPT"
	EntityTypeProduct      EntityType = "PRODUCT"
	EntityTypeDate         EntityType = "DATE"
	EntityTypeUnknown      EntityType = "UNKNOWN"
)

// ParseEntityType maps a raw type string onto a known EntityType,
// falling back to UNKNOWN for anything unrecognized.
func ParseEntityType(raw string) EntityType {
	switch EntityType(strings.ToUpper(strings.TrimSpace(raw))) {
	case EntityTypePerson, EntityTypeOrganization, EntityTypeLocation,
		EntityTypeEvent, EntityTypeConcept, EntityTypeProduct, EntityTypeDate:
		return EntityType(strings.ToUpper(strings.TrimSpace(raw)))
	default:
		return EntityTypeUnknown
	}
}

// Entity represents a node in the knowledge graph. An entity can be an
// organization, person, location, or any other relevant concept extracted
// from source text.
//
// The Name is the unique, case-sensitive key. Entities extracted more than
// once are merged by lower-cased name, concatenating their descriptions.
// After the index build an entity is never mutated except by an explicit
// rebuild.
type Entity struct {
	Name        string     `json:"name"`
	Type        EntityType `json:"type"`
	Description string     `json:"description"`
	Embedding   []float32  `json:"embedding,omitempty"`
	SourceChunk string     `json:"source_chunk,omitempty"`
}

// Relationship represents an undirected, labeled edge between two entities.
// Both endpoints must exist as nodes; edges with missing endpoints are
// dropped silently at graph build time. Repeated (source, target, label)
// triples increment Weight rather than duplicating the edge.
type Relationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Label       string  `json:"relationship"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	SourceChunk string  `json:"source_chunk,omitempty"`
}

// Chunk represents a contiguous segment of source text, produced by
// splitting documents into overlapping token windows. Chunks are immutable
// once embedded.
type Chunk struct {
	ChunkID   string    `json:"chunk_id"`
	DocID     string    `json:"doc_id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	Index     int       `json:"chunk_index"`
}

// Community is a non-overlapping cluster of graph entities produced by
// modularity-based partitioning. Every graph node belongs to exactly one
// community.
type Community struct {
	ID      int      `json:"id"`
	Members []string `json:"members"`
}

// Size returns the number of member entities.
func (c Community) Size() int {
	return len(c.Members)
}

// CommunityReport is the generated summary for one community. Reports are
// derived artifacts: cached, embedded, and searched by the global engine.
type CommunityReport struct {
	CommunityID int       `json:"community_id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	NumEntities int       `json:"num_entities"`
	Rank        float64   `json:"rank"`
	Embedding   []float32 `json:"embedding,omitempty"`
}
