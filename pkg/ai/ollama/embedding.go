package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/wfiftyfour/graphrag/internal/util"
	"github.com/wfiftyfour/graphrag/pkg/ai"

	"github.com/ollama/ollama/api"
)

const defaultDimensions = 1024

// GenerateEmbedding creates a vector embedding for the given document text
// using the configured embedding model on Ollama.
//
// The returned vector is L2-normalized. Empty or whitespace-only input
// yields a zero vector of the configured dimension.
func (c *Client) GenerateEmbedding(
	ctx context.Context,
	input string,
) ([]float32, error) {
	dim := int(util.GetEnvNumeric("AI_EMBED_DIM", defaultDimensions))
	if len(strings.TrimSpace(input)) == 0 {
		return make([]float32, dim), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: input,
	}

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.API.Embed(rCtx, req)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	out := make([]float32, 0, dim)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if len(out) >= dim {
				break
			}
			out = append(out, float32(val))
		}
	}
	return ai.Normalize(out), nil
}

// GenerateEmbeddings embeds a batch of document texts, preserving order.
func (c *Client) GenerateEmbeddings(
	ctx context.Context,
	inputs []string,
) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		emb, err := c.GenerateEmbedding(ctx, input)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

// EmbedQuery embeds a search query with the model's instruction prefix.
// The prefix improves retrieval for instruction-tuned embedding models and
// must never be applied to indexed documents.
func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return c.GenerateEmbedding(ctx, c.queryPrefix+query)
}
