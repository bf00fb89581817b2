// Package llmx is the client for the LLM chat gateway used by both the
// agentic orchestrator and the LLM entity extractor.
package llmx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agentic-nlu/internal/common/logger"
)

var (
	ErrLLMTimeout    = errors.New("LLM_TIMEOUT")
	ErrLLMCallFailed = errors.New("LLM_CALL_FAILED")
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-agnostic chat completion request.
type Request struct {
	Messages       []Message `json:"messages"`
	Provider       Provider  `json:"provider"`
	Model          string    `json:"model,omitempty"`
	Temperature    float64   `json:"temperature"`
	MaxTokens      int       `json:"maxTokens"`
	ResponseFormat string    `json:"responseFormat,omitempty"`
}

// Client is the chat contract the pipeline depends on. The gateway
// returns text; parsing it is the caller's problem.
type Client interface {
	Chat(ctx context.Context, req *Request) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// HTTPClient talks to the LLM gateway over HTTP.
type HTTPClient struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHTTPClient(config *Config, log logger.Logger) *HTTPClient {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.With(map[string]interface{}{"component": "llm"}),
	}
}

func (c *HTTPClient) Chat(ctx context.Context, chatReq *Request) (string, error) {
	if chatReq.Model == "" {
		chatReq.Model = c.config.Model
	}

	body, _ := json.Marshal(chatReq)
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/chat", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLLMCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return "", ErrLLMTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrLLMCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrLLMCallFailed, resp.StatusCode)
	}

	var apiResponse struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrLLMCallFailed, err)
	}

	c.logger.Debug("llm chat completed", map[string]interface{}{
		"provider":   chatReq.Provider,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return apiResponse.Content, nil
}
