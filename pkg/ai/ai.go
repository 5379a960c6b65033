package ai

import (
	"context"
	"math"
)

// GenerateOptions holds configuration for AI generation requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
	MaxTokens     int      // Upper bound on generated tokens (0 = backend default)
}

// GenerateOption is a functional option for configuring AI generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel returns a GenerateOption that sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns a GenerateOption that sets the system prompts
// to prepend to the generation request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns a GenerateOption that sets the sampling temperature.
// Higher values (e.g., 1.0) produce more random outputs, while lower values
// (e.g., 0.2) make outputs more focused and deterministic.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens returns a GenerateOption that caps the number of generated tokens.
func WithMaxTokens(n int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = n
	}
}

// ModelMetrics contains performance metrics from AI model operations.
type ModelMetrics struct {
	InputTokens    int     `json:"input_tokens"`
	OutputTokens   int     `json:"output_tokens"`
	TotalTokens    int     `json:"total_tokens"`
	DurationMs     int64   `json:"duration_ms"`
	TokenPerSecond float32 `json:"token_per_second"`
}

// Client defines the interface for AI operations used in index construction
// and querying. Implementations handle text generation and embeddings.
//
// Generation calls are synchronous request/response with no cancellation
// support beyond the passed context; callers are responsible for timeouts.
// Connection errors and runtime errors are both returned as-is and are
// retryable by the caller, never retried internally.
type Client interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)

	// GenerateCompletionWithFormat enforces a JSON schema derived from out
	// and unmarshals the response into it. name and description identify
	// the schema to the backend.
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	// GenerateEmbedding embeds a document text. The returned vector is
	// L2-normalized so that dot products are cosine similarities.
	GenerateEmbedding(ctx context.Context, input string) ([]float32, error)

	// GenerateEmbeddings embeds a batch of document texts, preserving order.
	GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)

	// EmbedQuery embeds a search query. Unlike GenerateEmbedding it applies
	// the model-specific instruction prefix, which must never be applied to
	// indexed documents.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Release frees backend resources held between batches (e.g. unloads
	// the model from VRAM). Safe to call multiple times.
	Release(ctx context.Context) error

	ResetMetrics()
	GetMetrics() ModelMetrics
}

// Normalize scales v to unit length in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
