package search

import (
	"reflect"
	"testing"

	"github.com/wfiftyfour/graphrag/pkg/common"
)

func reportFixture() []common.CommunityReport {
	return []common.CommunityReport{
		{
			CommunityID: 0,
			Title:       "Iron, Vitamin C, Red Meat",
			Summary:     "Nutrients and their dietary sources.",
			NumEntities: 3,
			Rank:        3,
			Embedding:   []float32{1, 0},
		},
		{
			CommunityID: 1,
			Title:       "Alice, Acme, and 4 others",
			Summary:     "People and their employers.",
			NumEntities: 6,
			Rank:        6,
			Embedding:   []float32{0, 1},
		},
	}
}

func TestGlobalSearchRanksReports(t *testing.T) {
	s, err := NewGlobalSearch(reportFixture())
	if err != nil {
		t.Fatalf("NewGlobalSearch failed: %v", err)
	}
	if !s.Loaded() {
		t.Fatal("reports should be loaded")
	}

	results, err := s.Search([]float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	top := results[0]
	if top.Type != ResultTypeCommunity {
		t.Errorf("type = %q, want community", top.Type)
	}
	if top.CommunityID != 0 || top.Title != "Iron, Vitamin C, Red Meat" {
		t.Errorf("unexpected top community: %+v", top)
	}
	if top.NumEntities != 3 {
		t.Errorf("num entities = %d, want 3", top.NumEntities)
	}

	entities, _ := top.Metadata["entities"].([]string)
	if want := []string{"Iron", "Vitamin C", "Red Meat"}; !reflect.DeepEqual(entities, want) {
		t.Errorf("entities = %v, want %v", entities, want)
	}
}

func TestGlobalSearchTitleParsingDropsOthers(t *testing.T) {
	s, err := NewGlobalSearch(reportFixture())
	if err != nil {
		t.Fatalf("NewGlobalSearch failed: %v", err)
	}

	results, err := s.Search([]float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	entities, _ := results[0].Metadata["entities"].([]string)
	if want := []string{"Alice", "Acme"}; !reflect.DeepEqual(entities, want) {
		t.Errorf("entities = %v, want %v", entities, want)
	}
	if results[0].Metadata["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", results[0].Metadata["name"])
	}
}

func TestGlobalSearchWithoutData(t *testing.T) {
	s, err := NewGlobalSearch(nil)
	if err != nil {
		t.Fatalf("NewGlobalSearch failed: %v", err)
	}
	if s.Loaded() {
		t.Error("no reports should mean not loaded")
	}

	results, err := s.Search([]float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Search on empty data should not error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestAllSummariesSortedByRank(t *testing.T) {
	s, err := NewGlobalSearch(reportFixture())
	if err != nil {
		t.Fatalf("NewGlobalSearch failed: %v", err)
	}

	all := s.AllSummaries(0)
	if len(all) != 2 {
		t.Fatalf("got %d summaries, want 2", len(all))
	}
	if all[0].Rank < all[1].Rank {
		t.Error("summaries not sorted by rank descending")
	}

	limited := s.AllSummaries(1)
	if len(limited) != 1 || limited[0].CommunityID != 1 {
		t.Errorf("AllSummaries(1) = %+v, want the rank-6 community", limited)
	}
}

func TestTitleEntities(t *testing.T) {
	tests := []struct {
		title string
		want  []string
	}{
		{"", nil},
		{"Alice", []string{"Alice"}},
		{"Alice, Bob, Carol", []string{"Alice", "Bob", "Carol"}},
		{"Alice, Bob, and 3 others", []string{"Alice", "Bob"}},
	}
	for _, tt := range tests {
		if got := titleEntities(tt.title); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("titleEntities(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}
