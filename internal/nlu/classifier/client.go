// Package classifier is the client for the fast statistical intent
// classifier service, the low-latency primary tier of the pipeline.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/models"
)

var (
	ErrClassifierUnavailable = errors.New("CLASSIFIER_UNAVAILABLE")
	ErrClassifierTimeout     = errors.New("CLASSIFIER_TIMEOUT")
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.With(map[string]interface{}{"component": "fast-classifier"}),
	}
}

// Classify sends text to the trained multilingual classifier and returns
// its intent guess with rough entities. The result carries no provider
// tag; the orchestrator owns tagging.
func (c *Client) Classify(ctx context.Context, text, language string) (*models.ClassificationResult, error) {
	requestBody := map[string]interface{}{
		"text": text,
	}
	if language != "" {
		requestBody["language"] = language
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/classify", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrClassifierTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrClassifierUnavailable, resp.StatusCode)
	}

	var apiResponse struct {
		Intent     string                 `json:"intent"`
		Confidence float64                `json:"confidence"`
		Entities   map[string]interface{} `json:"entities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrClassifierUnavailable, err)
	}

	c.logger.Debug("fast classification", map[string]interface{}{
		"intent":     apiResponse.Intent,
		"confidence": apiResponse.Confidence,
	})

	return &models.ClassificationResult{
		Intent:     apiResponse.Intent,
		Confidence: apiResponse.Confidence,
		Entities:   apiResponse.Entities,
	}, nil
}
