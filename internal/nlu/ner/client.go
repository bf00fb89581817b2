// Package ner is the client for the trained named-entity-recognition
// service, with health probing and opportunistic availability demotion.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
)

var (
	ErrNERUnavailable = errors.New("NER_UNAVAILABLE")
	ErrNERTimeout     = errors.New("NER_TIMEOUT")
)

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	ProbeInterval time.Duration
}

type Client struct {
	config *Config
	client *http.Client
	logger logger.Logger
	avail  *AvailabilityCell
}

func NewClient(config *Config, log logger.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.ProbeInterval == 0 {
		config.ProbeInterval = 30 * time.Second
	}
	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.With(map[string]interface{}{"component": "ner"}),
		avail:  &AvailabilityCell{},
	}
}

// HealthStatus mirrors the NER service health payload.
type HealthStatus struct {
	ModelLoaded bool     `json:"model_loaded"`
	Encoder     string   `json:"encoder,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Device      string   `json:"device,omitempty"`
}

// State reports the current availability.
func (c *Client) State() State {
	return c.avail.Get()
}

// Available reports whether extraction calls should be attempted.
// Unknown counts as available so the first request probes the service.
func (c *Client) Available() bool {
	return c.avail.Get() != StateUnavailable
}

// Probe checks service health and updates the availability cell.
// A reachable service whose model is not loaded counts as unavailable.
func (c *Client) Probe(ctx context.Context) {
	status, err := c.Health(ctx)
	if err != nil || !status.ModelLoaded {
		if c.avail.Get() != StateUnavailable {
			c.logger.Warn("ner service unavailable", map[string]interface{}{
				"error":       errString(err),
				"modelLoaded": status != nil && status.ModelLoaded,
			})
		}
		c.avail.Set(StateUnavailable)
		metrics.NERAvailable.Set(0)
		return
	}
	if c.avail.Get() != StateAvailable {
		c.logger.Info("ner service available", map[string]interface{}{
			"encoder": status.Encoder,
			"device":  status.Device,
		})
	}
	c.avail.Set(StateAvailable)
	metrics.NERAvailable.Set(1)
}

// StartProbing re-probes health on a fixed timer until ctx is cancelled.
// It runs off the request path and holds no locks shared with it.
func (c *Client) StartProbing(ctx context.Context) {
	go func() {
		c.Probe(ctx)
		ticker := time.NewTicker(c.config.ProbeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Probe(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Health fetches the service health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", c.config.BaseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNERUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNERUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: health status %d", ErrNERUnavailable, resp.StatusCode)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrNERUnavailable, err)
	}
	return &status, nil
}

type extractResponse struct {
	Text              string      `json:"text"`
	Entities          []RawEntity `json:"entities"`
	FoodReference     []string    `json:"food_reference"`
	StoreReference    string      `json:"store_reference"`
	Quantity          *int        `json:"quantity"`
	LocationReference string      `json:"location_reference"`
	Preference        []string    `json:"preference"`
	ProcessingTimeMs  float64     `json:"processing_time_ms"`
}

// RawEntity is one labeled span from the NER model.
type RawEntity struct {
	Label string  `json:"label"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Extract calls the NER model for structured slot extraction. Any call
// failure demotes availability immediately so later requests skip the
// dead service instead of stacking timeouts.
func (c *Client) Extract(ctx context.Context, text string) (*models.ExtractedEntities, error) {
	requestBody := map[string]interface{}{
		"text":          text,
		"return_tokens": false,
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/extract", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNERUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.demote(err)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrNERTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrNERUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrNERUnavailable, resp.StatusCode)
		c.demote(err)
		return nil, err
	}

	var apiResponse extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrNERUnavailable, err)
	}

	c.logger.Debug("ner extraction", map[string]interface{}{
		"foodCount":        len(apiResponse.FoodReference),
		"store":            apiResponse.StoreReference,
		"processingTimeMs": apiResponse.ProcessingTimeMs,
	})

	return toEntities(&apiResponse), nil
}

// ExtractBatch extracts entities for several texts in one call.
func (c *Client) ExtractBatch(ctx context.Context, texts []string) ([]*models.ExtractedEntities, error) {
	requestBody := map[string]interface{}{"texts": texts}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.BaseURL+"/extract/batch", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNERUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.demote(err)
		return nil, fmt.Errorf("%w: %v", ErrNERUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", ErrNERUnavailable, resp.StatusCode)
		c.demote(err)
		return nil, err
	}

	var apiResponse struct {
		Results []extractResponse `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrNERUnavailable, err)
	}

	out := make([]*models.ExtractedEntities, 0, len(apiResponse.Results))
	for i := range apiResponse.Results {
		out = append(out, toEntities(&apiResponse.Results[i]))
	}
	return out, nil
}

func (c *Client) demote(err error) {
	if c.avail.Get() != StateUnavailable {
		c.logger.Warn("demoting ner availability", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.avail.Set(StateUnavailable)
	metrics.NERAvailable.Set(0)
}

func toEntities(r *extractResponse) *models.ExtractedEntities {
	return &models.ExtractedEntities{
		FoodReference:     r.FoodReference,
		StoreReference:    r.StoreReference,
		Quantity:          r.Quantity,
		LocationReference: r.LocationReference,
		Preference:        r.Preference,
		Source:            "ner",
		Confidence:        0.9,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
