package orchestrator

import "agentic-nlu/internal/nlu/llmx"

// Config controls the tier gating of the classification pipeline.
type Config struct {
	// FastConfidenceThreshold is the gate below which the fast tier's
	// answer is escalated to the reasoning tier.
	FastConfidenceThreshold float64

	// AgenticEnabled turns the reasoning tier off entirely; the fast
	// result is then final regardless of confidence.
	AgenticEnabled bool

	Provider    llmx.Provider
	Temperature float64
	MaxTokens   int
}

func (c *Config) applyDefaults() {
	if c.FastConfidenceThreshold == 0 {
		c.FastConfidenceThreshold = 0.75
	}
	if c.Temperature == 0 {
		c.Temperature = 0.2
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 600
	}
}
