package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/wfiftyfour/graphrag/internal/app"
	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	docsDir := flag.String("docs", "docs", "directory of .txt/.md documents to index")
	workers := flag.Int("workers", 1, "concurrent extraction calls")
	resolution := flag.Float64("resolution", 1.0, "community detection resolution")
	checkpoint := flag.String("checkpoint", "", "path for the failed-chunk checkpoint file")
	skipCommunities := flag.Bool("skip-communities", false, "skip community detection and reports")
	retry := flag.Bool("retry", false, "re-run only the chunks recorded in the checkpoint")
	flag.Parse()

	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient, err := app.NewAIClientFromEnv()
	if err != nil {
		logger.Fatal("Could not create AI client", "err", err)
	}

	storage, err := app.NewStorageFromEnv(ctx, nil)
	if err != nil {
		logger.Fatal("Failed to open index storage", "err", err)
	}
	defer storage.Close()

	docs, err := app.LoadDocuments(*docsDir)
	if err != nil {
		logger.Fatal("Failed to load documents", "err", err)
	}
	if len(docs) == 0 {
		logger.Fatal("No documents found", "dir", *docsDir)
	}

	if *retry {
		if *checkpoint == "" {
			logger.Fatal("Retry requires --checkpoint")
		}
		if err := app.RetryFailedChunks(ctx, storage, aiClient, docs, *checkpoint); err != nil {
			logger.Fatal("Retry pass failed", "err", err)
		}
		return
	}

	stats, err := app.BuildIndex(ctx, storage, aiClient, app.BuildParams{
		Documents:       docs,
		Workers:         *workers,
		CheckpointPath:  *checkpoint,
		Resolution:      *resolution,
		SkipCommunities: *skipCommunities,
	})
	if err != nil {
		logger.Fatal("Index build failed", "err", err)
	}

	logger.Info("Index build finished",
		"documents", stats.Documents,
		"chunks", stats.Chunks,
		"failed_chunks", stats.FailedChunks,
		"entities", stats.Entities,
		"relationships", stats.Relationships,
		"communities", stats.Communities,
		"reports", stats.Reports,
	)
}
