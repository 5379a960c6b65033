package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/index"
)

// GlobalSearch retrieves community reports for theme-level queries. With
// no community data loaded it degrades to empty results rather than
// erroring, so corpora indexed without community detection still answer.
type GlobalSearch struct {
	reports     []common.CommunityReport
	reportIndex *index.VectorIndex
}

// NewGlobalSearch creates a GlobalSearch over the given reports. Reports
// without embeddings are skipped; passing no usable reports is allowed.
func NewGlobalSearch(reports []common.CommunityReport) (*GlobalSearch, error) {
	gs := &GlobalSearch{}

	var kept []common.CommunityReport
	for _, r := range reports {
		if len(r.Embedding) == 0 {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return gs, nil
	}

	idx, err := index.NewVectorIndex(len(kept[0].Embedding))
	if err != nil {
		return nil, err
	}
	for i, r := range kept {
		if err := idx.Add(r.Embedding, map[string]any{"report": i}); err != nil {
			return nil, fmt.Errorf("failed to index community %d: %w", r.CommunityID, err)
		}
	}

	gs.reports = kept
	gs.reportIndex = idx
	return gs, nil
}

// Loaded reports whether any community reports are searchable.
func (s *GlobalSearch) Loaded() bool {
	return s.reportIndex != nil
}

// Search returns the topK communities whose report summaries best match
// the query embedding. Entity names are re-derived from report titles,
// which is best-effort: titles of large communities name only their first
// two members.
func (s *GlobalSearch) Search(queryEmbedding []float32, topK int) ([]SearchResult, error) {
	if s.reportIndex == nil {
		return nil, nil
	}

	matches, err := s.reportIndex.Search(queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("community search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		report := s.reports[m.Metadata["report"].(int)]

		entities := titleEntities(report.Title)
		metadata := map[string]any{"entities": entities}
		if len(entities) > 0 {
			metadata["name"] = entities[0]
		}

		results = append(results, SearchResult{
			Type:        ResultTypeCommunity,
			Score:       m.Score,
			Metadata:    metadata,
			CommunityID: report.CommunityID,
			Title:       report.Title,
			Summary:     report.Summary,
			NumEntities: report.NumEntities,
			Rank:        report.Rank,
		})
	}
	return results, nil
}

// AllSummaries returns every loaded report sorted by rank descending.
// topK <= 0 returns all of them.
func (s *GlobalSearch) AllSummaries(topK int) []common.CommunityReport {
	out := make([]common.CommunityReport, len(s.reports))
	copy(out, s.reports)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Rank > out[b].Rank
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// titleEntities recovers entity names from a community title of the form
// "A, B, C" or "A, B, and N others". Tokens ending in "others" are the
// overflow counter, not names.
func titleEntities(title string) []string {
	if title == "" {
		return nil
	}
	parts := strings.Split(strings.ReplaceAll(title, " and ", ", "), ", ")
	var entities []string
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), ",")
		if p == "" || strings.HasSuffix(p, "others") {
			continue
		}
		entities = append(entities, p)
	}
	return entities
}
