// Package orchestrator runs the tiered classification pipeline: a fast
// statistical pass first, escalated to an LLM reasoning pass only when
// the fast tier is unsure.
package orchestrator

import (
	"context"
	"time"

	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
	"agentic-nlu/internal/nlu/llmx"
)

// FastClassifier is the slice of the classifier client the orchestrator
// depends on.
type FastClassifier interface {
	Classify(ctx context.Context, text, language string) (*models.ClassificationResult, error)
}

// Orchestrator gates between the fast and reasoning tiers.
type Orchestrator struct {
	fast   FastClassifier
	llm    llmx.Client
	config *Config
	logger logger.Logger
}

func New(fast FastClassifier, llm llmx.Client, config *Config, log logger.Logger) *Orchestrator {
	config.applyDefaults()
	return &Orchestrator{
		fast:   fast,
		llm:    llm,
		config: config,
		logger: log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Classify never returns an error: every failure degrades to the best
// answer available at that point, bottoming out at unknown/0.1.
func (o *Orchestrator) Classify(ctx context.Context, text, language string, history []string) *models.ClassificationResult {
	start := time.Now()

	fast, err := o.fast.Classify(ctx, text, language)
	if err != nil {
		o.logger.Warn("fast classification failed", map[string]interface{}{"error": err.Error()})
		fast = &models.ClassificationResult{
			Intent:     "unknown",
			Confidence: 0.1,
		}
	}
	fast.Provider = models.ProviderBertFast

	if !o.config.AgenticEnabled || o.llm == nil || fast.Confidence >= o.config.FastConfidenceThreshold {
		metrics.ClassificationsTotal.WithLabelValues(string(models.ProviderBertFast)).Inc()
		metrics.ClassificationDuration.WithLabelValues(string(models.ProviderBertFast)).Observe(time.Since(start).Seconds())
		return fast
	}

	metrics.AgenticEscalations.Inc()
	o.logger.Info("escalating to reasoning tier", map[string]interface{}{
		"fastIntent":     fast.Intent,
		"fastConfidence": fast.Confidence,
	})

	result := o.classifyAgentic(ctx, text, fast, history)
	metrics.ClassificationsTotal.WithLabelValues(string(result.Provider)).Inc()
	metrics.ClassificationDuration.WithLabelValues(string(result.Provider)).Observe(time.Since(start).Seconds())
	return result
}

// classifyAgentic runs the reasoning pass. Any call or parse failure
// returns the fast result unchanged; an escalation that goes wrong must
// never make the answer worse.
func (o *Orchestrator) classifyAgentic(ctx context.Context, text string, fast *models.ClassificationResult, history []string) *models.ClassificationResult {
	system, user := buildClassificationMessages(text, fast, history)

	content, err := o.llm.Chat(ctx, &llmx.Request{
		Messages: []llmx.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Provider:       o.config.Provider,
		Temperature:    o.config.Temperature,
		MaxTokens:      o.config.MaxTokens,
		ResponseFormat: "json_object",
	})
	if err != nil {
		o.logger.Warn("reasoning tier call failed, keeping fast result", map[string]interface{}{
			"error": err.Error(),
		})
		return fast
	}

	payload, err := parseAgenticResponse(content)
	if err != nil {
		metrics.AgenticParseFailures.Inc()
		o.logger.Warn("reasoning tier parse failed, keeping fast result", map[string]interface{}{
			"error": err.Error(),
		})
		return fast
	}

	entities := payload.Entities
	if len(entities) == 0 {
		entities = fast.Entities
	}

	return &models.ClassificationResult{
		Intent:               payload.Intent,
		Confidence:           payload.Confidence,
		Entities:             entities,
		Provider:             models.ProviderHybrid,
		Reasoning:            payload.Reasoning,
		ClarificationNeeded:  payload.ClarificationNeeded,
		ClarificationOptions: payload.ClarificationOptions,
		MultiIntent:          payload.MultiIntent,
	}
}
