package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wfiftyfour/graphrag/pkg/ai"
	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/extract"
	"github.com/wfiftyfour/graphrag/pkg/graph"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/store"
)

// Document is one input text for an index build.
type Document struct {
	ID   string
	Text string
}

// LoadDocuments reads every .txt and .md file in dir as a Document. The
// file name without extension becomes the document ID.
func LoadDocuments(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read document directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", entry.Name(), err)
		}
		docs = append(docs, Document{
			ID:   strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())),
			Text: string(data),
		})
	}
	sort.Slice(docs, func(a, b int) bool { return docs[a].ID < docs[b].ID })
	return docs, nil
}

// BuildParams configures an index build.
type BuildParams struct {
	Documents []Document
	// ChunkTokens is the chunk size ceiling. Zero uses the default.
	ChunkTokens int
	// Workers bounds concurrent extraction calls. Zero means one.
	Workers int
	// CheckpointPath stores failed chunk IDs for a later retry pass.
	CheckpointPath string
	// Resolution tunes community granularity. Zero uses the default.
	Resolution float64
	// SkipCommunities builds only the chunk and entity indices.
	SkipCommunities bool
}

// BuildStats summarizes a finished build.
type BuildStats struct {
	Documents     int `json:"documents"`
	Chunks        int `json:"chunks"`
	FailedChunks  int `json:"failed_chunks"`
	Entities      int `json:"entities"`
	Relationships int `json:"relationships"`
	Communities   int `json:"communities"`
	Reports       int `json:"reports"`
}

// BuildIndex runs the full pipeline: chunk the documents, embed the
// chunks, extract the graph, detect communities, summarize them, and
// persist everything. Chunks whose extraction failed are recorded in the
// checkpoint and do not abort the build.
func BuildIndex(
	ctx context.Context,
	storage store.Storage,
	aiClient ai.Client,
	params BuildParams,
) (*BuildStats, error) {
	if len(params.Documents) == 0 {
		return nil, errors.New("no documents to index")
	}

	chunker, err := extract.NewChunker(extract.NewChunkerParams{MaxTokens: params.ChunkTokens})
	if err != nil {
		return nil, err
	}

	var chunks []common.Chunk
	for _, doc := range params.Documents {
		chunks = append(chunks, chunker.ChunkDocument(doc.ID, doc.Text)...)
	}
	logger.Info("[Build] Chunked documents", "documents", len(params.Documents), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := aiClient.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	pipeline := extract.NewPipeline(extract.NewPipelineParams{
		Workers:        params.Workers,
		CheckpointPath: params.CheckpointPath,
	})
	result, err := pipeline.Run(ctx, chunks, aiClient)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	logger.Info("[Build] Extraction finished",
		"entities", len(result.Entities),
		"relationships", len(result.Relationships),
		"failed_chunks", len(result.FailedChunks),
	)

	if err := embedEntities(ctx, aiClient, result.Entities); err != nil {
		return nil, err
	}

	stats := &BuildStats{
		Documents:     len(params.Documents),
		Chunks:        len(chunks),
		FailedChunks:  len(result.FailedChunks),
		Entities:      len(result.Entities),
		Relationships: len(result.Relationships),
	}

	if err := storage.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to save chunks: %w", err)
	}
	if err := storage.SaveEntities(ctx, result.Entities); err != nil {
		return nil, fmt.Errorf("failed to save entities: %w", err)
	}
	if err := storage.SaveRelationships(ctx, result.Relationships); err != nil {
		return nil, fmt.Errorf("failed to save relationships: %w", err)
	}

	if params.SkipCommunities {
		return stats, nil
	}

	g := graph.Build(result.Entities, result.Relationships)
	resolution := params.Resolution
	if resolution <= 0 {
		resolution = 1.0
	}
	communities := graph.DetectCommunities(g, resolution)
	stats.Communities = len(communities)
	logger.Info("[Build] Detected communities", "communities", len(communities))

	reports, err := graph.GenerateReports(ctx, g, communities, aiClient)
	if err != nil {
		return nil, fmt.Errorf("failed to generate community reports: %w", err)
	}
	stats.Reports = len(reports)

	if err := storage.SaveCommunities(ctx, communities); err != nil {
		return nil, fmt.Errorf("failed to save communities: %w", err)
	}
	if err := storage.SaveReports(ctx, reports); err != nil {
		return nil, fmt.Errorf("failed to save community reports: %w", err)
	}

	return stats, nil
}

// RetryFailedChunks re-runs extraction for the chunks named in the
// checkpoint file, merges the recovered entities and relationships into
// the stored graph, and persists the result. Chunk embeddings are not
// regenerated; only the extraction half is retried.
func RetryFailedChunks(
	ctx context.Context,
	storage store.Storage,
	aiClient ai.Client,
	docs []Document,
	checkpointPath string,
) error {
	chunker, err := extract.NewChunker(extract.NewChunkerParams{})
	if err != nil {
		return err
	}
	var chunks []common.Chunk
	for _, doc := range docs {
		chunks = append(chunks, chunker.ChunkDocument(doc.ID, doc.Text)...)
	}

	pipeline := extract.NewPipeline(extract.NewPipelineParams{
		CheckpointPath: checkpointPath,
	})
	result, err := pipeline.RetryFailed(ctx, chunks, aiClient)
	if err != nil {
		return fmt.Errorf("retry extraction failed: %w", err)
	}
	if len(result.Entities) == 0 && len(result.Relationships) == 0 {
		return nil
	}

	storedEntities, err := storage.LoadEntities(ctx)
	if err != nil {
		return fmt.Errorf("failed to load entities: %w", err)
	}
	storedRelationships, err := storage.LoadRelationships(ctx)
	if err != nil {
		return fmt.Errorf("failed to load relationships: %w", err)
	}

	entities := graph.MergeEntities(append(storedEntities, result.Entities...))
	relationships := graph.MergeRelationships(append(storedRelationships, result.Relationships...))
	if err := embedEntities(ctx, aiClient, entities); err != nil {
		return err
	}

	if err := storage.SaveEntities(ctx, entities); err != nil {
		return fmt.Errorf("failed to save entities: %w", err)
	}
	if err := storage.SaveRelationships(ctx, relationships); err != nil {
		return fmt.Errorf("failed to save relationships: %w", err)
	}
	logger.Info("[Build] Retry pass merged",
		"entities", len(entities),
		"relationships", len(relationships),
	)
	return nil
}

// embedEntities fills in embeddings for entities that lack one, embedding
// "name: description" so the name itself is searchable.
func embedEntities(ctx context.Context, aiClient ai.Client, entities []common.Entity) error {
	var inputs []string
	var targets []int
	for i, e := range entities {
		if len(e.Embedding) > 0 {
			continue
		}
		inputs = append(inputs, fmt.Sprintf("%s: %s", e.Name, e.Description))
		targets = append(targets, i)
	}
	if len(inputs) == 0 {
		return nil
	}

	embeddings, err := aiClient.GenerateEmbeddings(ctx, inputs)
	if err != nil {
		return fmt.Errorf("failed to embed entities: %w", err)
	}
	for j, i := range targets {
		entities[i].Embedding = embeddings[j]
	}
	return nil
}
