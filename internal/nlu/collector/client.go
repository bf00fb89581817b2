// Package collector ships successful LLM extractions to the training-data
// collector. This is telemetry: every failure is swallowed.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"agentic-nlu/internal/common/logger"
)

type Config struct {
	BaseURL string
	Enabled bool
}

type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{Timeout: 3 * time.Second},
		logger: log.With(map[string]interface{}{"component": "collector"}),
	}
}

// CollectLLM posts one text/output pair, best effort.
func (c *Client) CollectLLM(ctx context.Context, text string, llmOutput interface{}, source string) {
	if c == nil || !c.config.Enabled || c.config.BaseURL == "" {
		return
	}

	payload := map[string]interface{}{
		"text":       text,
		"llm_output": llmOutput,
		"source":     source,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/collect/llm", bytes.NewBuffer(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("collector post failed", map[string]interface{}{"error": err.Error()})
		return
	}
	resp.Body.Close()
}
