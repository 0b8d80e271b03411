package ollama

import (
	"math"

	"github.com/OFFIS-RIT/corpusgraph/pkg/ai"
)

// GetMetrics returns the token usage and timing accumulated since the
// last reset.
func (c *GraphOllamaClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

// ResetMetrics zeroes the accumulated counters.
func (c *GraphOllamaClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics = ai.ModelMetrics{}
}

func (c *GraphOllamaClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs

	if c.metrics.DurationMs > 0 {
		rate := float64(c.metrics.TotalTokens) * 1000.0 / float64(c.metrics.DurationMs)
		c.metrics.TokenPerSecond = float32(math.Round(rate*100) / 100)
	}
}
