// Package extract implements the NER-first, LLM-fallback entity
// extraction tier and the store-scoped resolution flow on top of it.
package extract

import (
	"context"
	"strings"

	stderrors "agentic-nlu/internal/common/errors"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
	"agentic-nlu/internal/nlu/resolve"
)

// NERClient is the slice of the NER client the extractor depends on.
type NERClient interface {
	Available() bool
	Extract(ctx context.Context, text string) (*models.ExtractedEntities, error)
}

// LLMEntityExtractor is the fallback tier contract.
type LLMEntityExtractor interface {
	Extract(ctx context.Context, text string) *models.ExtractedEntities
}

// Extractor chains NER extraction, the multi-store heuristic and the LLM
// fallback into one normalized result.
type Extractor struct {
	ner      NERClient
	llm      LLMEntityExtractor
	resolver resolve.Resolver
	logger   logger.Logger
}

func NewExtractor(ner NERClient, llm LLMEntityExtractor, resolver resolve.Resolver, log logger.Logger) *Extractor {
	return &Extractor{
		ner:      ner,
		llm:      llm,
		resolver: resolver,
		logger:   log.With(map[string]interface{}{"component": "extractor"}),
	}
}

// Extract returns normalized entities for text. NER is preferred while
// available; a failed NER call falls through to the LLM tier. Only the
// no-extractor-configured case returns an error, since there is no data
// to degrade to.
func (e *Extractor) Extract(ctx context.Context, text string) (*models.ExtractedEntities, error) {
	if e.ner != nil && e.ner.Available() {
		entities, err := e.ner.Extract(ctx, text)
		if err == nil {
			metrics.ExtractionsTotal.WithLabelValues("ner").Inc()
			return e.mergeMultiStore(ctx, text, entities), nil
		}
		e.logger.Warn("ner extraction failed, falling back", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if e.llm != nil {
		if e.ner != nil {
			metrics.ExtractionFallbacks.Inc()
		}
		metrics.ExtractionsTotal.WithLabelValues("llm").Inc()
		return e.llm.Extract(ctx, text), nil
	}

	return nil, stderrors.NewExtractionUnavailableError("neither NER nor LLM extractor configured")
}

// mergeMultiStore runs the multi-store heuristic over the raw text and,
// when it triggers, asks the LLM tier solely for store_references. The
// LLM's structured output is authoritative: if it sees fewer than two
// stores the NER single-store reading stands.
func (e *Extractor) mergeMultiStore(ctx context.Context, text string, entities *models.ExtractedEntities) *models.ExtractedEntities {
	if e.llm == nil || !LikelyMultiStore(strings.ToLower(text)) {
		return entities
	}

	llmEntities := e.llm.Extract(ctx, text)
	if len(llmEntities.StoreReferences) >= 2 {
		entities.StoreReferences = llmEntities.StoreReferences
		entities.StoreReference = llmEntities.StoreReferences[0].Store
		e.logger.Info("multi-store order detected", map[string]interface{}{
			"stores": len(entities.StoreReferences),
		})
	}
	return entities
}

// ExtractAndResolve extracts entities and attaches catalog IDs. Store
// resolution strictly precedes food resolution: the food search is scoped
// to the resolved store's ID, and reversing the order silently returns
// wrong-store menu items.
func (e *Extractor) ExtractAndResolve(ctx context.Context, text string) (*models.ResolvedEntities, error) {
	entities, err := e.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	out := &models.ResolvedEntities{ExtractedEntities: *entities}
	if e.resolver == nil {
		return out, nil
	}

	storeID := ""
	if entities.StoreReference != "" {
		store, err := e.resolver.ResolveStore(ctx, entities.StoreReference)
		if err != nil {
			e.logger.Warn("store resolution failed", map[string]interface{}{
				"store": entities.StoreReference,
				"error": err.Error(),
			})
		} else if store != nil {
			out.ResolvedStore = store
			storeID = store.ID
		}
	}

	if len(entities.FoodReference) > 0 {
		foods, err := e.resolver.ResolveFood(ctx, entities.FoodReference, storeID)
		if err != nil {
			e.logger.Warn("food resolution failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			out.ResolvedFood = foods
		}
	}

	if out.Quantity == nil {
		out.Quantity = ParseQuantity(text)
	}

	return out, nil
}
