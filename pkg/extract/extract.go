package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/wfiftyfour/graphrag/pkg/ai"
	"github.com/wfiftyfour/graphrag/pkg/common"
)

var defaultEntityTypes = []string{
	"PERSON", "ORGANIZATION", "LOCATION", "EVENT", "CONCEPT", "PRODUCT", "DATE",
}

type extractEntity struct {
	Name        string `json:"name" jsonschema_description:"Name of the entity as it appears in the text"`
	Type        string `json:"type" jsonschema_description:"One of the provided entity types"`
	Description string `json:"description" jsonschema_description:"Comprehensive description of the entity's attributes, activities and information provided by the source."`
}

type extractRelationship struct {
	Source       string  `json:"source" jsonschema_description:"Name of the source entity, as identified above"`
	Target       string  `json:"target" jsonschema_description:"Name of the target entity, as identified above"`
	Relationship string  `json:"relationship" jsonschema_description:"Short label for the relationship, e.g. FOUNDED, WORKS_AT, LOCATED_IN"`
	Description  string  `json:"description" jsonschema_description:"Explanation as to why the source entity and the target entity are related to each other"`
	Weight       float64 `json:"weight" jsonschema_description:"A numeric score indicating strength of the relationship between the source and target entity"`
}

type extractResponse struct {
	Entities      []extractEntity       `json:"entities" jsonschema_description:"Entities identified in the text"`
	Relationships []extractRelationship `json:"relationships" jsonschema_description:"Relationships identified in the text"`
}

// ExtractChunk asks the AI client for the entities and relationships of a
// single chunk. The response is schema-constrained and repaired on the way
// in; a response that still fails to parse is returned as an error, never
// a panic. Extracted items carry the chunk's ID as provenance.
func ExtractChunk(
	ctx context.Context,
	chunk common.Chunk,
	aiClient ai.Client,
	entityTypes []string,
) ([]common.Entity, []common.Relationship, error) {
	types := entityTypes
	if len(types) == 0 {
		types = defaultEntityTypes
	}

	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, strings.Join(types, ","))

	var res extractResponse
	err := aiClient.GenerateCompletionWithFormat(
		ctx,
		"extract_entities_and_relationships",
		"Extract entities and relationships from a provided text chunk.",
		chunk.Text,
		&res,
		ai.WithSystemPrompts(systemPrompt),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract from chunk %s: %w", chunk.ChunkID, err)
	}

	entities := make([]common.Entity, 0, len(res.Entities))
	for _, e := range res.Entities {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		entities = append(entities, common.Entity{
			Name:        name,
			Type:        common.ParseEntityType(e.Type),
			Description: strings.TrimSpace(e.Description),
			SourceChunk: chunk.ChunkID,
		})
	}

	relationships := make([]common.Relationship, 0, len(res.Relationships))
	for _, r := range res.Relationships {
		source := strings.TrimSpace(r.Source)
		target := strings.TrimSpace(r.Target)
		if source == "" || target == "" {
			continue
		}
		weight := r.Weight
		if weight <= 0 {
			weight = 1
		}
		relationships = append(relationships, common.Relationship{
			Source:      source,
			Target:      target,
			Label:       strings.TrimSpace(r.Relationship),
			Description: strings.TrimSpace(r.Description),
			Weight:      weight,
			SourceChunk: chunk.ChunkID,
		})
	}

	return entities, relationships, nil
}
