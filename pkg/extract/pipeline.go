package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/ai"
	"github.com/wfiftyfour/graphrag/pkg/common"
	"github.com/wfiftyfour/graphrag/pkg/graph"
	"github.com/wfiftyfour/graphrag/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkTimeout = 300 * time.Second
	defaultWorkers      = 1

	// extractMaxTries bounds attempts per chunk before it is checkpointed
	// as failed.
	extractMaxTries = 2
)

// Pipeline runs entity and relationship extraction over a batch of chunks.
//
// Failures are soft: a chunk that errors or times out contributes empty
// results, its ID is recorded, and the batch continues. Recorded IDs are
// checkpointed to a JSON file so a later retry pass can re-run exactly the
// chunks that failed.
type Pipeline struct {
	workers      int
	chunkTimeout time.Duration
	checkpoint   string
	entityTypes  []string
}

// NewPipelineParams contains configuration options for creating a Pipeline.
type NewPipelineParams struct {
	// Workers bounds concurrent extraction calls. Defaults to 1, which
	// keeps a single local model saturated without queue buildup.
	Workers int
	// ChunkTimeout is the per-chunk extraction deadline. Defaults to 300s.
	ChunkTimeout time.Duration
	// CheckpointPath is where failed chunk IDs are written. Empty disables
	// checkpointing.
	CheckpointPath string
	// EntityTypes overrides the default entity type list in the prompt.
	EntityTypes []string
}

// NewPipeline creates a Pipeline with the given parameters.
func NewPipeline(params NewPipelineParams) *Pipeline {
	workers := params.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := params.ChunkTimeout
	if timeout <= 0 {
		timeout = defaultChunkTimeout
	}
	return &Pipeline{
		workers:      workers,
		chunkTimeout: timeout,
		checkpoint:   params.CheckpointPath,
		entityTypes:  params.EntityTypes,
	}
}

// Result is the merged output of one extraction pass.
type Result struct {
	Entities      []common.Entity
	Relationships []common.Relationship
	FailedChunks  []string
}

// Run extracts entities and relationships from every chunk, merges
// duplicates, and checkpoints the IDs of chunks that failed. Only context
// cancellation of the parent aborts the batch; individual chunk errors do
// not.
func (p *Pipeline) Run(
	ctx context.Context,
	chunks []common.Chunk,
	aiClient ai.Client,
) (*Result, error) {
	logger.Info("[Extract] Processing batch", "chunks", len(chunks), "workers", p.workers)

	var (
		mu            sync.Mutex
		entities      []common.Entity
		relationships []common.Relationship
		failed        []string
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for _, chunk := range chunks {
		c := chunk
		eg.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			cCtx, cancel := context.WithTimeout(gCtx, p.chunkTimeout)
			ents, rels, err := util.Retry2WithContext(cCtx, extractMaxTries,
				func(ctx context.Context) ([]common.Entity, []common.Relationship, error) {
					return ExtractChunk(ctx, c, aiClient, p.entityTypes)
				})
			cancel()

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				logger.Warn("[Extract] Chunk failed", "chunk_id", c.ChunkID, "error", err)
				failed = append(failed, c.ChunkID)
				return nil
			}

			entities = append(entities, ents...)
			relationships = append(relationships, rels...)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("extraction batch aborted: %w", err)
	}

	if err := p.writeCheckpoint(failed); err != nil {
		return nil, err
	}

	if err := aiClient.Release(ctx); err != nil {
		logger.Warn("[Extract] Failed to release model", "error", err)
	}

	logger.Info("[Extract] Batch complete",
		"entities", len(entities),
		"relationships", len(relationships),
		"failed_chunks", len(failed),
	)

	return &Result{
		Entities:      graph.MergeEntities(entities),
		Relationships: graph.MergeRelationships(relationships),
		FailedChunks:  failed,
	}, nil
}

// RetryFailed re-runs extraction for the chunks named in the checkpoint
// file. With no checkpoint or an empty one it returns an empty result.
func (p *Pipeline) RetryFailed(
	ctx context.Context,
	chunks []common.Chunk,
	aiClient ai.Client,
) (*Result, error) {
	failedIDs, err := p.readCheckpoint()
	if err != nil {
		return nil, err
	}
	if len(failedIDs) == 0 {
		logger.Info("[Extract] No failed chunks to retry")
		return &Result{}, nil
	}

	idSet := make(map[string]bool, len(failedIDs))
	for _, id := range failedIDs {
		idSet[id] = true
	}

	var retry []common.Chunk
	for _, c := range chunks {
		if idSet[c.ChunkID] {
			retry = append(retry, c)
		}
	}

	logger.Info("[Extract] Retrying failed chunks", "count", len(retry))
	return p.Run(ctx, retry, aiClient)
}

func (p *Pipeline) writeCheckpoint(failed []string) error {
	if p.checkpoint == "" {
		return nil
	}
	if len(failed) == 0 {
		// clear a stale checkpoint from a previous run
		if err := os.Remove(p.checkpoint); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear checkpoint: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(p.checkpoint), 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	data, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := os.WriteFile(p.checkpoint, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

func (p *Pipeline) readCheckpoint() ([]string, error) {
	if p.checkpoint == "" {
		return nil, nil
	}
	data, err := os.ReadFile(p.checkpoint)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return ids, nil
}
