package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/ai"
	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/logger"
)

// maxReportRelationships caps the relationship lines fed to the summary
// prompt for a single community.
const maxReportRelationships = 20

// summaryMaxTries bounds completion attempts per community summary.
const summaryMaxTries = 2

// CommunityTitle derives a display title from the community's members.
// Three or fewer members are comma-joined verbatim; larger communities
// show the first two members and a count of the rest.
func CommunityTitle(members []string) string {
	if len(members) <= 3 {
		return strings.Join(members, ", ")
	}
	return fmt.Sprintf("%s, %s, and %d others", members[0], members[1], len(members)-2)
}

// GenerateReport summarizes a single community via the AI client and
// returns its report. The report's rank is the member count and its
// summary is embedded for global search.
func GenerateReport(
	ctx context.Context,
	g *Graph,
	community common.Community,
	aiClient ai.Client,
) (common.CommunityReport, error) {
	report := common.CommunityReport{
		CommunityID: community.ID,
		Title:       CommunityTitle(community.Members),
		NumEntities: len(community.Members),
		Rank:        float64(len(community.Members)),
	}

	memberSet := make(map[string]bool, len(community.Members))
	for _, m := range community.Members {
		memberSet[m] = true
	}

	var entityLines []string
	for _, member := range community.Members {
		node := g.Node(member)
		if node == nil {
			continue
		}
		entityLines = append(entityLines, fmt.Sprintf("- %s (%s): %s", member, node.Type, node.Description))
	}

	var relationLines []string
	for _, member := range community.Members {
		for _, neighbor := range g.Neighbors(member) {
			if !memberSet[neighbor] {
				continue
			}
			for _, edge := range g.EdgeBetween(member, neighbor) {
				relationLines = append(relationLines, fmt.Sprintf("- %s --[%s]--> %s", member, edge.Label, neighbor))
			}
		}
	}
	if len(relationLines) > maxReportRelationships {
		relationLines = relationLines[:maxReportRelationships]
	}

	prompt := fmt.Sprintf(ai.SummaryPrompt,
		strings.Join(entityLines, "\n"),
		strings.Join(relationLines, "\n"),
	)

	summary, err := util.RetryWithContext(ctx, summaryMaxTries, func(ctx context.Context) (string, error) {
		return aiClient.GenerateCompletion(ctx, prompt)
	})
	if err != nil {
		return report, fmt.Errorf("failed to summarize community %d: %w", community.ID, err)
	}
	report.Summary = strings.TrimSpace(summary)

	embedding, err := aiClient.GenerateEmbedding(ctx, report.Summary)
	if err != nil {
		return report, fmt.Errorf("failed to embed community %d summary: %w", community.ID, err)
	}
	report.Embedding = embedding

	return report, nil
}

// GenerateReports summarizes all communities sequentially, preserving
// input order. A failed community aborts the pass.
func GenerateReports(
	ctx context.Context,
	g *Graph,
	communities []common.Community,
	aiClient ai.Client,
) ([]common.CommunityReport, error) {
	reports := make([]common.CommunityReport, 0, len(communities))
	for _, community := range communities {
		logger.Info("[Graph] Summarizing community", "community_id", community.ID, "members", len(community.Members))
		report, err := GenerateReport(ctx, g, community, aiClient)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
