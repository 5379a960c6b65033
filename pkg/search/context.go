package search

import (
	"fmt"
	"strings"
)

const (
	defaultContextTokens = 4000
	// rough estimate of characters per token for the truncation budget
	charsPerToken    = 4
	truncationMarker = "\n\n[Context truncated...]"
	// related entity lines rendered per entity block
	maxRelatedLines = 3
)

// ContextBuilder renders search results into the labeled text context fed
// to the answer model. The token budget is approximate: content is cut at
// maxTokens*4 characters and marked, never re-tokenized.
type ContextBuilder struct {
	maxTokens int
}

// NewContextBuilder creates a ContextBuilder with the given token budget.
// A non-positive budget uses the 4000-token default.
func NewContextBuilder(maxTokens int) *ContextBuilder {
	if maxTokens <= 0 {
		maxTokens = defaultContextTokens
	}
	return &ContextBuilder{maxTokens: maxTokens}
}

// BuildLocalContext renders chunk and entity results. Chunks become
// numbered [Source N] blocks; entities become [Entity: name] blocks with
// up to three related-entity lines from their graph context.
func (b *ContextBuilder) BuildLocalContext(results []SearchResult) string {
	var parts []string

	for i, result := range results {
		switch result.Type {
		case ResultTypeChunk:
			parts = append(parts, fmt.Sprintf("[Source %d]\n%s", i+1, result.Content))

		case ResultTypeEntity:
			name, _ := result.Metadata["name"].(string)
			var sb strings.Builder
			fmt.Fprintf(&sb, "[Entity: %s]\n%s\n", name, result.Content)

			if result.GraphContext != nil && len(result.GraphContext.Relationships) > 0 {
				sb.WriteString("Related to:\n")
				rels := result.GraphContext.Relationships
				if len(rels) > maxRelatedLines {
					rels = rels[:maxRelatedLines]
				}
				for _, rel := range rels {
					fmt.Fprintf(&sb, "- %s (%s)\n", rel.Neighbor, rel.Relationship)
				}
			}
			parts = append(parts, sb.String())
		}
	}

	return b.truncate(strings.Join(parts, "\n\n"))
}

// BuildGlobalContext renders community results as numbered
// [Community N: title] blocks with summary and entity count.
func (b *ContextBuilder) BuildGlobalContext(results []SearchResult) string {
	var parts []string

	for i, result := range results {
		parts = append(parts, fmt.Sprintf(
			"[Community %d: %s]\n%s\n(Contains %d entities)",
			i+1, result.Title, result.Summary, result.NumEntities,
		))
	}

	return b.truncate(strings.Join(parts, "\n\n"))
}

// BuildHybridContext renders the top global results as high-level context
// followed by the top local results as detail.
func (b *ContextBuilder) BuildHybridContext(localResults, globalResults []SearchResult) string {
	var parts []string

	if len(globalResults) > 0 {
		if len(globalResults) > 3 {
			globalResults = globalResults[:3]
		}
		parts = append(parts, "## High-Level Context (Communities)")
		parts = append(parts, b.BuildGlobalContext(globalResults))
	}

	if len(localResults) > 0 {
		if len(localResults) > 5 {
			localResults = localResults[:5]
		}
		parts = append(parts, "\n## Specific Details (Documents & Entities)")
		parts = append(parts, b.BuildLocalContext(localResults))
	}

	return strings.Join(parts, "\n\n")
}

func (b *ContextBuilder) truncate(context string) string {
	maxChars := b.maxTokens * charsPerToken
	if len(context) > maxChars {
		return context[:maxChars] + truncationMarker
	}
	return context
}
