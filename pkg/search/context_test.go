package search

import (
	"strings"
	"testing"
)

func TestBuildLocalContextBlocks(t *testing.T) {
	b := NewContextBuilder(4000)
	results := []SearchResult{
		{
			Type:    ResultTypeChunk,
			Score:   0.9,
			Content: "Iron is found in red meat.",
		},
		{
			Type:    ResultTypeEntity,
			Score:   0.8,
			Content: "Iron: An essential mineral.",
			Metadata: map[string]any{
				"name": "Iron",
			},
			GraphContext: &GraphContext{
				Neighbors: []string{"Red Meat", "Spinach", "Vitamin C", "Liver"},
				Relationships: []Relation{
					{Neighbor: "Red Meat", Relationship: "found_in"},
					{Neighbor: "Spinach", Relationship: "found_in"},
					{Neighbor: "Vitamin C", Relationship: "absorbed_with"},
					{Neighbor: "Liver", Relationship: "stored_in"},
				},
				Degree: 4,
			},
		},
		{
			Type:    ResultTypeChunk,
			Score:   0.7,
			Content: "Vitamin C aids iron absorption.",
		},
	}

	context := b.BuildLocalContext(results)

	if !strings.Contains(context, "[Source 1]\nIron is found in red meat.") {
		t.Error("missing first source block")
	}
	if !strings.Contains(context, "[Entity: Iron]\nIron: An essential mineral.") {
		t.Error("missing entity block")
	}
	if !strings.Contains(context, "[Source 3]\nVitamin C aids iron absorption.") {
		t.Error("chunk numbering should follow result position")
	}
	if !strings.Contains(context, "Related to:\n- Red Meat (found_in)") {
		t.Error("missing related-entity lines")
	}
	// only the first three relationships are rendered
	if strings.Contains(context, "Liver") {
		t.Error("related lines should be capped at three")
	}
	if strings.Contains(context, truncationMarker) {
		t.Error("short context should not be truncated")
	}
}

func TestBuildGlobalContextBlocks(t *testing.T) {
	b := NewContextBuilder(4000)
	results := []SearchResult{
		{
			Type:        ResultTypeCommunity,
			Title:       "Iron, Vitamin C, Red Meat",
			Summary:     "Nutrients and their dietary sources.",
			NumEntities: 3,
		},
	}

	context := b.BuildGlobalContext(results)

	want := "[Community 1: Iron, Vitamin C, Red Meat]\nNutrients and their dietary sources.\n(Contains 3 entities)"
	if context != want {
		t.Errorf("context = %q, want %q", context, want)
	}
}

func TestContextTruncation(t *testing.T) {
	b := NewContextBuilder(10) // 40-char budget
	results := []SearchResult{
		{
			Type:    ResultTypeChunk,
			Content: strings.Repeat("Iron is an essential dietary mineral. ", 10),
		},
	}

	context := b.BuildLocalContext(results)

	if !strings.HasSuffix(context, truncationMarker) {
		t.Fatal("long context should carry the truncation marker")
	}
	if maxLen := 10*charsPerToken + len(truncationMarker); len(context) > maxLen {
		t.Errorf("context length %d exceeds %d", len(context), maxLen)
	}
}

func TestBuildHybridContext(t *testing.T) {
	b := NewContextBuilder(4000)
	local := []SearchResult{{Type: ResultTypeChunk, Content: "A local detail."}}
	global := []SearchResult{{Type: ResultTypeCommunity, Title: "Topics", Summary: "High level.", NumEntities: 2}}

	context := b.BuildHybridContext(local, global)

	globalIdx := strings.Index(context, "## High-Level Context (Communities)")
	localIdx := strings.Index(context, "## Specific Details (Documents & Entities)")
	if globalIdx == -1 || localIdx == -1 {
		t.Fatalf("missing section headers in %q", context)
	}
	if globalIdx > localIdx {
		t.Error("global section should precede local section")
	}

	if got := b.BuildHybridContext(nil, nil); got != "" {
		t.Errorf("empty inputs should yield empty context, got %q", got)
	}
}
