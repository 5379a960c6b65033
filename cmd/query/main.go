package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/wfiftyfour/graphrag/internal/app"
	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/logger"
	"github.com/wfiftyfour/graphrag/pkg/logger/console"
	"github.com/wfiftyfour/graphrag/pkg/search"

	_ "github.com/lib/pq"
)

func main() {
	topK := flag.Int("top-k", 0, "number of results (0 = strategy default)")
	mode := flag.String("mode", "", "force a retrieval mode: local, global or hybrid")
	noGenerate := flag.Bool("no-generate", false, "skip answer generation")
	noEval := flag.Bool("no-eval", false, "skip evaluation")
	groundTruth := flag.String("ground-truth", "", "reference answer for evaluation")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: query [flags] <question>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	question := strings.Join(flag.Args(), " ")

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

	a, err := app.New(ctx, app.NewAppParams{
		Storage:  storage,
		AIClient: aiClient,
	})
	if err != nil {
		logger.Fatal("Failed to load index", "err", err)
	}

	resp, err := a.Query(ctx, app.QueryParams{
		Query:       question,
		Mode:        search.Mode(*mode),
		TopK:        *topK,
		Generate:    !*noGenerate,
		Evaluate:    !*noEval,
		GroundTruth: *groundTruth,
	})
	if err != nil {
		logger.Fatal("Query failed", "err", err)
	}

	fmt.Printf("Mode: %s\n\n", resp.Mode)

	for i, r := range resp.Results {
		switch r.Type {
		case search.ResultTypeCommunity:
			fmt.Printf("%2d. [%.3f] community %d: %s\n", i+1, r.Score, r.CommunityID, r.Title)
		case search.ResultTypeEntity:
			name, _ := r.Metadata["name"].(string)
			fmt.Printf("%2d. [%.3f] entity: %s\n", i+1, r.Score, name)
		default:
			chunkID, _ := r.Metadata["chunk_id"].(string)
			fmt.Printf("%2d. [%.3f] chunk: %s\n", i+1, r.Score, chunkID)
		}
	}

	if resp.Answer != "" {
		fmt.Printf("\nAnswer:\n%s\n", resp.Answer)
	}

	if resp.Metrics != nil {
		fmt.Printf("\nRelevance:    %.3f\n", resp.Metrics.RelevanceScore)
		fmt.Printf("Coverage:     %.3f\n", resp.Metrics.CoverageScore)
		fmt.Printf("Answer:       %.3f\n", resp.Metrics.AnswerQuality)
		fmt.Printf("Faithfulness: %.3f\n", resp.Metrics.Faithfulness)
		fmt.Printf("Overall:      %.3f\n", resp.Metrics.OverallScore)
	}
}
