package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfiftyfour/graphrag/pkg/ai"
	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/eval"
	"github.com/wfiftyfour/graphrag/pkg/graph"
	"github.com/wfiftyfour/graphrag/pkg/index"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/search"
	"github.com/wfiftyfour/graphrag/pkg/store"
)

// App owns the loaded retrieval state: the vector indices, the knowledge
// graph, and the search engines built over them. It is constructed once
// at startup and passed by handle into anything that answers queries.
type App struct {
	aiClient       ai.Client
	graph          *graph.Graph
	local          *search.LocalSearch
	global         *search.GlobalSearch
	contextBuilder *search.ContextBuilder
}

type NewAppParams struct {
	// Storage is the index backend to load from. A missing chunk index is
	// a hard error (store.ErrNotFound); missing community data degrades
	// global search to empty results.
	Storage store.Storage
	// AIClient embeds queries and generates answers.
	AIClient ai.Client
	// ContextTokens is the context window budget. Zero uses the default.
	ContextTokens int
}

// New loads all index artifacts from storage and assembles the search
// engines.
func New(ctx context.Context, params NewAppParams) (*App, error) {
	if params.Storage == nil {
		return nil, errors.New("storage backend is required")
	}
	if params.AIClient == nil {
		return nil, errors.New("ai client is required")
	}

	chunks, err := params.Storage.LoadChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk index: %w", err)
	}
	chunkIndex, err := buildChunkIndex(chunks)
	if err != nil {
		return nil, err
	}

	entities, err := params.Storage.LoadEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load entities: %w", err)
	}
	entityIndex, err := buildEntityIndex(entities)
	if err != nil {
		return nil, err
	}

	relationships, err := params.Storage.LoadRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}
	g := graph.Build(entities, relationships)

	reports, err := params.Storage.LoadReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load community reports: %w", err)
	}

	local, err := search.NewLocalSearch(search.NewLocalSearchParams{
		Chunks:   chunkIndex,
		Entities: entityIndex,
		Graph:    g,
	})
	if err != nil {
		return nil, err
	}
	global, err := search.NewGlobalSearch(reports)
	if err != nil {
		return nil, err
	}

	logger.Info("[App] Index loaded",
		"chunks", len(chunks),
		"entities", len(entities),
		"relationships", len(relationships),
		"reports", len(reports),
	)

	return &App{
		aiClient:       params.AIClient,
		graph:          g,
		local:          local,
		global:         global,
		contextBuilder: search.NewContextBuilder(params.ContextTokens),
	}, nil
}

func buildChunkIndex(chunks []common.Chunk) (*index.VectorIndex, error) {
	dim := 0
	for _, c := range chunks {
		if len(c.Embedding) > 0 {
			dim = len(c.Embedding)
			break
		}
	}
	if dim == 0 {
		return nil, errors.New("chunk index has no embeddings")
	}

	idx, err := index.NewVectorIndex(dim)
	if err != nil {
		return nil, err
	}
	for _, c := range chunks {
		meta := map[string]any{
			"chunk_id":    c.ChunkID,
			"doc_id":      c.DocID,
			"text":        c.Text,
			"chunk_index": c.Index,
		}
		if err := idx.Add(c.Embedding, meta); err != nil {
			return nil, fmt.Errorf("failed to index chunk %s: %w", c.ChunkID, err)
		}
	}
	return idx, nil
}

// buildEntityIndex returns nil when no entity has an embedding, which
// disables the entity half of local search.
func buildEntityIndex(entities []common.Entity) (*index.VectorIndex, error) {
	dim := 0
	for _, e := range entities {
		if len(e.Embedding) > 0 {
			dim = len(e.Embedding)
			break
		}
	}
	if dim == 0 {
		return nil, nil
	}

	idx, err := index.NewVectorIndex(dim)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if len(e.Embedding) == 0 {
			continue
		}
		meta := map[string]any{
			"name":        e.Name,
			"type":        string(e.Type),
			"description": e.Description,
		}
		if err := idx.Add(e.Embedding, meta); err != nil {
			return nil, fmt.Errorf("failed to index entity %s: %w", e.Name, err)
		}
	}
	return idx, nil
}

// Graph exposes the loaded knowledge graph.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// QueryParams configures one retrieval pass.
type QueryParams struct {
	Query string
	// Mode forces a strategy. Empty means classify the query.
	Mode search.Mode
	// TopK overrides the strategy's result budgets when positive.
	TopK int
	// Generate produces an answer from the retrieved context.
	Generate bool
	// Evaluate scores the retrieval and answer.
	Evaluate bool
	// GroundTruth is the optional reference answer for evaluation.
	GroundTruth string
}

// Evaluation is the metric set of one evaluated query.
type Evaluation struct {
	eval.Metrics
	OverallScore float64 `json:"overall_score"`
}

// QueryResponse is the outcome of one retrieval pass.
type QueryResponse struct {
	Query   string                `json:"query"`
	Mode    search.Mode           `json:"mode"`
	Results []search.SearchResult `json:"results"`
	Context string                `json:"context,omitempty"`
	Answer  string                `json:"answer,omitempty"`
	Metrics *Evaluation           `json:"metrics,omitempty"`
}

// Query runs retrieval for one query: classify (unless a mode is forced),
// embed, search the selected surfaces, build the context block, and
// optionally generate and evaluate an answer.
func (a *App) Query(ctx context.Context, params QueryParams) (*QueryResponse, error) {
	if params.Query == "" {
		return nil, errors.New("query is empty")
	}

	mode := params.Mode
	if mode == "" {
		mode = search.Classify(params.Query)
	}
	strategy := search.StrategyFor(mode)
	if params.TopK > 0 {
		if strategy.UseLocal {
			strategy.LocalTopK = params.TopK
		}
		if strategy.UseGlobal {
			strategy.GlobalTopK = params.TopK
		}
	}

	embedding, err := a.aiClient.EmbedQuery(ctx, params.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var localResults, globalResults []search.SearchResult
	if strategy.UseLocal {
		localResults, err = a.local.Search(embedding, strategy.LocalTopK)
		if err != nil {
			return nil, fmt.Errorf("local search failed: %w", err)
		}
	}
	if strategy.UseGlobal {
		globalResults, err = a.global.Search(embedding, strategy.GlobalTopK)
		if err != nil {
			return nil, fmt.Errorf("global search failed: %w", err)
		}
	}

	resp := &QueryResponse{
		Query:   params.Query,
		Mode:    mode,
		Results: append(append([]search.SearchResult{}, localResults...), globalResults...),
	}

	switch {
	case strategy.UseLocal && strategy.UseGlobal:
		resp.Context = a.contextBuilder.BuildHybridContext(localResults, globalResults)
	case strategy.UseGlobal:
		resp.Context = a.contextBuilder.BuildGlobalContext(globalResults)
	default:
		resp.Context = a.contextBuilder.BuildLocalContext(localResults)
	}

	if params.Generate {
		answer, err := a.aiClient.GenerateCompletion(ctx, params.Query,
			ai.WithSystemPrompts(fmt.Sprintf(ai.AnswerPrompt, resp.Context)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to generate answer: %w", err)
		}
		resp.Answer = answer
	}

	if params.Evaluate {
		metrics := eval.Evaluate(params.Query, resp.Answer, resp.Results, params.GroundTruth)
		resp.Metrics = &Evaluation{Metrics: metrics, OverallScore: metrics.Overall()}
	}

	return resp, nil
}
