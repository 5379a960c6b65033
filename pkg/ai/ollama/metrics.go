package ollama

import (
	"context"
	"math"

	"github.com/wfiftyfour/graphrag/pkg/ai"

	"github.com/ollama/ollama/api"
)

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *Client) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *Client) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

// Release unloads the generation and extraction models from the server so
// that their VRAM is free for the next batch. The embedding model stays
// resident. Safe to call multiple times.
func (c *Client) Release(ctx context.Context) error {
	models := []string{c.chatModel, c.extractionModel}
	seen := map[string]bool{}
	for _, m := range models {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true

		req := &api.GenerateRequest{
			Model:     m,
			KeepAlive: &api.Duration{Duration: 0},
		}
		if err := c.API.Generate(ctx, req, func(api.GenerateResponse) error {
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		tokensPerSecond := (float64(c.metrics.TotalTokens) * 1000.0) / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(tokensPerSecond*100) / 100)
	}
}
