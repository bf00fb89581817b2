package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentic-nlu/internal/common/cache"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
	"agentic-nlu/internal/nlu/collector"
	"agentic-nlu/internal/nlu/llmx"
)

type LLMConfig struct {
	Provider    llmx.Provider
	Temperature float64
	MaxTokens   int
}

// LLMExtractor produces normalized entities through the chat gateway.
// Successful extractions are cached by lowercased input text so client
// retries of the same message skip the model entirely.
type LLMExtractor struct {
	llm       llmx.Client
	config    *LLMConfig
	cache     cache.Cache
	collector *collector.Client
	logger    logger.Logger
}

func NewLLMExtractor(llm llmx.Client, config *LLMConfig, c cache.Cache, col *collector.Client, log logger.Logger) *LLMExtractor {
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 800
	}
	return &LLMExtractor{
		llm:       llm,
		config:    config,
		cache:     c,
		collector: col,
		logger:    log.With(map[string]interface{}{"component": "llm-extractor"}),
	}
}

// Extract never returns an error: any call or parse failure degrades to a
// well-formed zero-confidence result carrying the error in Reasoning.
func (e *LLMExtractor) Extract(ctx context.Context, text string) *models.ExtractedEntities {
	key := strings.ToLower(strings.TrimSpace(text))

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, key); ok {
			metrics.ExtractionCacheHits.WithLabelValues("hit").Inc()
			var entities models.ExtractedEntities
			if err := json.Unmarshal([]byte(cached), &entities); err == nil {
				return &entities
			}
		}
		metrics.ExtractionCacheHits.WithLabelValues("miss").Inc()
	}

	system, user := buildExtractionMessages(text)
	content, err := e.llm.Chat(ctx, &llmx.Request{
		Messages: []llmx.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Provider:       e.config.Provider,
		Temperature:    e.config.Temperature,
		MaxTokens:      e.config.MaxTokens,
		ResponseFormat: "json_object",
	})
	if err != nil {
		e.logger.Warn("llm extraction call failed", map[string]interface{}{"error": err.Error()})
		return failureEntities(err)
	}

	entities, err := parseLLMEntities(content)
	if err != nil {
		e.logger.Warn("llm extraction parse failed", map[string]interface{}{"error": err.Error()})
		return failureEntities(err)
	}

	if e.cache != nil {
		if encoded, err := json.Marshal(entities); err == nil {
			e.cache.Set(ctx, key, string(encoded))
		}
	}

	// Telemetry only; a dead collector must never slow extraction down.
	if e.collector != nil {
		go e.collector.CollectLLM(context.WithoutCancel(ctx), text, entities, "llm_extractor")
	}

	return entities
}

func failureEntities(err error) *models.ExtractedEntities {
	return &models.ExtractedEntities{
		Source:     "llm",
		Confidence: 0,
		Reasoning:  fmt.Sprintf("%T: %v", err, err),
	}
}
