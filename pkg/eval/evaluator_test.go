package eval

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/wfiftyfour/graphrag/pkg/search"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			text: "Iron, Vitamin-C!",
			want: []string{"iron", "vitamin"},
		},
		{
			name: "drops short tokens",
			text: "it is an iron age",
			want: []string{"iron", "age"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenize(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func resultsFixture() []search.SearchResult {
	return []search.SearchResult{
		{
			Type:    search.ResultTypeChunk,
			Score:   0.9,
			Content: "Iron is an essential mineral found in red meat and spinach.",
		},
		{
			Type:    search.ResultTypeChunk,
			Score:   0.7,
			Content: "Vitamin C significantly improves iron absorption from plant sources.",
		},
		{
			Type:     search.ResultTypeEntity,
			Score:    0.6,
			Content:  "Iron: An essential dietary mineral.",
			Metadata: map[string]any{"name": "Iron"},
			GraphContext: &search.GraphContext{
				Neighbors: []string{"Red Meat", "Spinach"},
				Degree:    2,
			},
		},
	}
}

func TestEvaluateBounds(t *testing.T) {
	m := Evaluate(
		"What foods contain iron?",
		"Iron is found in red meat and spinach. Vitamin C improves iron absorption.",
		resultsFixture(),
		"",
	)

	for name, v := range map[string]float64{
		"relevance":    m.RelevanceScore,
		"coverage":     m.CoverageScore,
		"quality":      m.AnswerQuality,
		"faithfulness": m.Faithfulness,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, outside [0,1]", name, v)
		}
	}

	wantOverall := (m.RelevanceScore + m.CoverageScore + m.AnswerQuality + m.Faithfulness) / 4
	if math.Abs(m.Overall()-wantOverall) > 1e-12 {
		t.Errorf("Overall() = %v, want mean %v", m.Overall(), wantOverall)
	}
}

func TestEvaluateEmptyInputs(t *testing.T) {
	m := Evaluate("query about iron", "", nil, "")
	if m.RelevanceScore != 0 {
		t.Errorf("relevance with no results = %v, want 0", m.RelevanceScore)
	}
	if m.CoverageScore != 0 {
		t.Errorf("coverage with no results = %v, want 0", m.CoverageScore)
	}
	if m.AnswerQuality != 0 {
		t.Errorf("quality with no answer = %v, want 0", m.AnswerQuality)
	}
	if m.Faithfulness != 0 {
		t.Errorf("faithfulness with no answer = %v, want 0", m.Faithfulness)
	}
}

func TestRelevanceRankDiscounting(t *testing.T) {
	// identical content, descending vs ascending similarity
	high := []search.SearchResult{
		{Type: search.ResultTypeChunk, Score: 1.0, Content: "iron mineral content"},
		{Type: search.ResultTypeChunk, Score: 0.2, Content: "iron mineral content"},
	}
	low := []search.SearchResult{
		{Type: search.ResultTypeChunk, Score: 0.2, Content: "iron mineral content"},
		{Type: search.ResultTypeChunk, Score: 1.0, Content: "iron mineral content"},
	}

	query := "iron mineral"
	if relevance(query, high) <= relevance(query, low) {
		t.Error("better result first should score higher than better result last")
	}
}

func TestRelevanceUsesSummaryForCommunities(t *testing.T) {
	results := []search.SearchResult{
		{
			Type:    search.ResultTypeCommunity,
			Score:   0.8,
			Summary: "Dietary iron and mineral absorption across foods.",
		},
	}
	withSummary := relevance("iron mineral absorption", results)

	results[0].Summary = "Unrelated topic entirely."
	withoutOverlap := relevance("iron mineral absorption", results)

	if withSummary <= withoutOverlap {
		t.Error("community summary overlap should raise relevance")
	}
}

func TestCoverageRewardsDiversity(t *testing.T) {
	same := []search.SearchResult{
		{Type: search.ResultTypeChunk, Content: "Iron is found in red meat."},
		{Type: search.ResultTypeChunk, Content: "Iron is found in red meat."},
	}
	diverse := []search.SearchResult{
		{Type: search.ResultTypeChunk, Content: "Iron is found in red meat."},
		{
			Type:     search.ResultTypeEntity,
			Content:  "Vitamin C: improves absorption of plant iron.",
			Metadata: map[string]any{"name": "Vitamin C"},
			GraphContext: &search.GraphContext{
				Neighbors: []string{"Iron", "Citrus"},
			},
		},
	}

	if coverage(diverse) <= coverage(same) {
		t.Error("diverse results should score higher coverage than duplicates")
	}
}

func TestAnswerQualityGroundTruth(t *testing.T) {
	query := "What foods contain iron?"
	answer := "Iron is found in red meat, spinach, and lentils. Vitamin C improves absorption."

	exact := answerQuality(answer, query, answer)
	disjoint := answerQuality(answer, query, "Photosynthesis converts sunlight into chemical energy.")

	if exact <= disjoint {
		t.Error("matching ground truth should raise answer quality")
	}
}

func TestFaithfulnessBoundaries(t *testing.T) {
	context := "Iron deficiency affects billions worldwide and remains the most common nutritional disorder."
	results := []search.SearchResult{
		{Type: search.ResultTypeChunk, Score: 0.9, Content: context},
	}

	// answer copied verbatim from the context
	copied := faithfulness(context, results)
	if copied < 0.95 {
		t.Errorf("verbatim answer faithfulness = %v, want ~1.0", copied)
	}

	// answer with fully disjoint vocabulary
	disjoint := faithfulness("quantum entanglement produces correlated photon pairs", results)
	if disjoint > 0.05 {
		t.Errorf("disjoint answer faithfulness = %v, want ~0.0", disjoint)
	}
}

func TestFaithfulnessSamplesTopFiveResults(t *testing.T) {
	var results []search.SearchResult
	for i := 0; i < 6; i++ {
		results = append(results, search.SearchResult{
			Type:    search.ResultTypeChunk,
			Content: "filler content about unrelated subjects entirely",
		})
	}
	// the only supporting content sits at rank 6 and is never sampled
	results[5].Content = "zygomatic arches support facial musculature"

	got := faithfulness("zygomatic arches support facial musculature", results)
	if got > 0.05 {
		t.Errorf("content beyond the top five should not ground the answer, got %v", got)
	}
}

func TestStdDevSingleSentenceDefault(t *testing.T) {
	// one long sentence: stddev falls back to 5, variance quality = 1
	answer := strings.Repeat("word ", 15)
	score := answerQuality(answer, "", "")
	if score <= 0 {
		t.Errorf("single sentence answer should still score, got %v", score)
	}
}
