package graph

import (
	"strings"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

// MergeEntities deduplicates entities by lower-cased name. The first
// occurrence wins the canonical spelling and type; later duplicates
// contribute their descriptions, concatenated with a space when not
// already contained. Input order is preserved.
func MergeEntities(entities []common.Entity) []common.Entity {
	out := make([]common.Entity, 0, len(entities))
	index := make(map[string]int)

	for _, entity := range entities {
		name := strings.TrimSpace(entity.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)

		if i, ok := index[key]; ok {
			desc := strings.TrimSpace(entity.Description)
			if desc != "" && !strings.Contains(out[i].Description, desc) {
				if out[i].Description != "" {
					out[i].Description += " "
				}
				out[i].Description += desc
			}
			continue
		}

		entity.Name = name
		index[key] = len(out)
		out = append(out, entity)
	}

	return out
}

// MergeRelationships deduplicates relationships by unordered lower-cased
// endpoint pair and label. Duplicates increase the kept relationship's
// weight, so weights are monotonically non-decreasing under merging.
func MergeRelationships(relationships []common.Relationship) []common.Relationship {
	type key struct {
		a, b, label string
	}

	out := make([]common.Relationship, 0, len(relationships))
	index := make(map[key]int)

	for _, rel := range relationships {
		source := strings.TrimSpace(rel.Source)
		target := strings.TrimSpace(rel.Target)
		if source == "" || target == "" {
			continue
		}

		a := strings.ToLower(source)
		b := strings.ToLower(target)
		if b < a {
			a, b = b, a
		}
		k := key{a: a, b: b, label: strings.ToLower(rel.Label)}

		weight := rel.Weight
		if weight <= 0 {
			weight = 1
		}

		if i, ok := index[k]; ok {
			out[i].Weight += weight
			desc := strings.TrimSpace(rel.Description)
			if desc != "" && !strings.Contains(out[i].Description, desc) {
				if out[i].Description != "" {
					out[i].Description += " "
				}
				out[i].Description += desc
			}
			continue
		}

		rel.Source = source
		rel.Target = target
		rel.Weight = weight
		index[k] = len(out)
		out = append(out, rel)
	}

	return out
}
