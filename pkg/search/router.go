package search

import "strings"

// Mode selects the retrieval strategy for a query.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeGlobal Mode = "global"
	// ModeHybrid combines both surfaces. It is never auto-selected by
	// Classify; callers opt in explicitly.
	ModeHybrid Mode = "hybrid"
)

var localKeywords = []string{
	"who", "what is", "where", "when", "specific", "detail",
	"example", "how does", "define", "describe",
}

var globalKeywords = []string{
	"overview", "summary", "general", "main themes",
	"compare", "contrast", "relationship between",
	"what are all", "list all", "categorize",
}

// longQueryTokens is the tie-break threshold: tied keyword counts route
// queries with more whitespace tokens than this to global.
const longQueryTokens = 10

// Classify routes a query to local or global search by counting keyword
// hits, case-insensitive. Each keyword counts once regardless of how
// often it appears. Strictly more global hits selects global, strictly
// more local hits selects local; a tie falls back to query length.
func Classify(query string) Mode {
	lower := strings.ToLower(query)

	localScore := 0
	for _, kw := range localKeywords {
		if strings.Contains(lower, kw) {
			localScore++
		}
	}
	globalScore := 0
	for _, kw := range globalKeywords {
		if strings.Contains(lower, kw) {
			globalScore++
		}
	}

	switch {
	case globalScore > localScore:
		return ModeGlobal
	case localScore > globalScore:
		return ModeLocal
	default:
		if len(strings.Fields(query)) > longQueryTokens {
			return ModeGlobal
		}
		return ModeLocal
	}
}

// Strategy describes how a classified query should be executed.
type Strategy struct {
	UseLocal        bool `json:"use_local"`
	UseGlobal       bool `json:"use_global"`
	LocalTopK       int  `json:"local_top_k"`
	GlobalTopK      int  `json:"global_top_k"`
	UseGraphContext bool `json:"use_graph_context"`
}

// StrategyFor returns the retrieval plan for a mode. Unknown modes fall
// back to the local plan.
func StrategyFor(mode Mode) Strategy {
	switch mode {
	case ModeGlobal:
		return Strategy{UseGlobal: true, GlobalTopK: 10}
	case ModeHybrid:
		return Strategy{
			UseLocal:        true,
			UseGlobal:       true,
			LocalTopK:       5,
			GlobalTopK:      5,
			UseGraphContext: true,
		}
	default:
		return Strategy{UseLocal: true, LocalTopK: 10, UseGraphContext: true}
	}
}
