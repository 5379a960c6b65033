package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wfiftyfour/graphrag/internal/app"
	"github.com/wfiftyfour/graphrag/pkg/ai"
	"github.com/wfiftyfour/graphrag/pkg/leaselock"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/store"
)

// BuildJobMsg is one index build request.
type BuildJobMsg struct {
	// DocsDir is the directory of input documents on the worker host.
	DocsDir string `json:"docs_dir"`
	// Resolution tunes community granularity. Zero uses the default.
	Resolution float64 `json:"resolution,omitempty"`
	// Workers bounds concurrent extraction calls. Zero means one.
	Workers int `json:"workers,omitempty"`
	// SkipCommunities builds only chunk and entity indices.
	SkipCommunities bool `json:"skip_communities,omitempty"`
	// CheckpointPath stores failed chunk IDs for a retry pass.
	CheckpointPath string `json:"checkpoint_path,omitempty"`
}

const buildLockKey = "index_build"

// ProcessBuildMessage runs one index build job. With a pool available the
// build runs under a lease so concurrent workers never rebuild the same
// index at once; without one (file backend) builds run unguarded.
func ProcessBuildMessage(
	ctx context.Context,
	aiClient ai.Client,
	storage store.Storage,
	pool *pgxpool.Pool,
	msgBody string,
) error {
	var job BuildJobMsg
	if err := json.Unmarshal([]byte(msgBody), &job); err != nil {
		return fmt.Errorf("invalid build job message: %w", err)
	}
	if job.DocsDir == "" {
		return fmt.Errorf("build job has no docs_dir")
	}

	docs, err := app.LoadDocuments(job.DocsDir)
	if err != nil {
		return err
	}

	build := func(ctx context.Context) error {
		stats, err := app.BuildIndex(ctx, storage, aiClient, app.BuildParams{
			Documents:       docs,
			Workers:         job.Workers,
			CheckpointPath:  job.CheckpointPath,
			Resolution:      job.Resolution,
			SkipCommunities: job.SkipCommunities,
		})
		if err != nil {
			return err
		}
		logger.Info("[Queue] Build finished",
			"documents", stats.Documents,
			"chunks", stats.Chunks,
			"failed_chunks", stats.FailedChunks,
			"entities", stats.Entities,
			"relationships", stats.Relationships,
			"communities", stats.Communities,
		)
		return nil
	}

	if pool == nil {
		return build(ctx)
	}

	locks := leaselock.New(pool)
	return locks.WithLease(ctx, buildLockKey, leaselock.Options{
		TTL:  10 * time.Minute,
		Wait: false,
	}, build)
}
