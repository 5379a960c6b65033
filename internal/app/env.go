package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/ai"
	oai "github.com/wfiftyfour/graphrag/pkg/ai/ollama"
	gai "github.com/wfiftyfour/graphrag/pkg/ai/openai"
	"github.com/wfiftyfour/graphrag/pkg/store"
	filestore "github.com/wfiftyfour/graphrag/pkg/store/file"
	pgxstore "github.com/wfiftyfour/graphrag/pkg/store/pgx"
)

// NewAIClientFromEnv builds the AI client selected by AI_ADAPTER. "ollama"
// uses a single Ollama endpoint; everything else is treated as an
// OpenAI-compatible API with separate chat and embedding endpoints.
func NewAIClientFromEnv() (ai.Client, error) {
	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		return oai.NewClient(oai.NewClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			QueryPrefix:     util.GetEnv("AI_QUERY_PREFIX"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 1)),
		})
	default:
		return gai.NewClient(gai.NewClientParams{
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),
			QueryPrefix:     util.GetEnv("AI_QUERY_PREFIX"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 1)),
		}), nil
	}
}

// NewPoolFromEnv opens a pgx pool on DATABASE_URL with pgvector types
// registered, and applies pending migrations from MIGRATIONS_DIR
// (default "file://migrations").
func NewPoolFromEnv(ctx context.Context) (*pgxpool.Pool, error) {
	databaseURL := util.GetEnv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	source := util.GetEnv("MIGRATIONS_DIR")
	if source == "" {
		source = "file://migrations"
	}
	if err := pgxstore.RunMigrations(source, databaseURL); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// NewStorageFromEnv builds the index backend selected by STORE_BACKEND:
// "pgx" uses PostgreSQL via the given pool (opened on demand when nil),
// anything else uses the INDEX_DIR file backend (default "index").
func NewStorageFromEnv(ctx context.Context, pool *pgxpool.Pool) (store.Storage, error) {
	switch util.GetEnv("STORE_BACKEND") {
	case "pgx":
		if pool == nil {
			var err error
			pool, err = NewPoolFromEnv(ctx)
			if err != nil {
				return nil, err
			}
		}
		return pgxstore.NewStorage(pgxstore.NewStorageParams{Conn: pool})
	default:
		dir := util.GetEnv("INDEX_DIR")
		if dir == "" {
			dir = "index"
		}
		return filestore.NewStorage(filestore.NewStorageParams{Dir: dir})
	}
}
