// Package intent manages the refreshable intent-to-example pattern set
// backing the cheap regex matching tier.
package intent

import (
	"context"
	"strings"
	"sync"
	"time"

	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
)

const (
	baseConfidence = 0.7
	maxConfidence  = 0.95

	noMatchIntent     = "unknown"
	noMatchConfidence = 0.3
)

// Manager holds the compiled pattern set and refreshes it from the store.
type Manager struct {
	store           *Store
	logger          logger.Logger
	refreshInterval time.Duration

	mu            sync.RWMutex
	patterns      []compiledPattern
	usingFallback bool
}

func NewManager(store *Store, refreshInterval time.Duration, log logger.Logger) *Manager {
	if refreshInterval == 0 {
		refreshInterval = 5 * time.Minute
	}
	m := &Manager{
		store:           store,
		logger:          log.With(map[string]interface{}{"component": "intent-manager"}),
		refreshInterval: refreshInterval,
	}
	// Start with the hardcoded table so matching works before the first
	// successful refresh.
	m.patterns = compileFallback()
	m.usingFallback = true
	return m
}

// UsingFallback reports whether the hardcoded pattern table is in effect.
func (m *Manager) UsingFallback() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usingFallback
}

// Refresh pulls definitions and recompiles patterns. Zero definitions or
// a failed pull compiles the hardcoded fallback table instead.
func (m *Manager) Refresh(ctx context.Context) error {
	var defs []models.IntentDefinition
	var err error
	if m.store != nil {
		defs, err = m.store.List(ctx)
	}

	if err != nil || len(defs) == 0 {
		m.mu.Lock()
		m.patterns = compileFallback()
		m.usingFallback = true
		m.mu.Unlock()
		metrics.IntentRefreshes.WithLabelValues("fallback").Inc()
		if err != nil {
			m.logger.Warn("intent refresh failed, using hardcoded patterns", map[string]interface{}{
				"error": err.Error(),
			})
			return err
		}
		m.logger.Info("no intent definitions, using hardcoded patterns", nil)
		return nil
	}

	var patterns []compiledPattern
	for _, def := range defs {
		for _, ex := range def.Examples {
			if p, ok := compileExample(def.Name, ex); ok {
				patterns = append(patterns, *p)
			}
		}
	}

	m.mu.Lock()
	m.patterns = patterns
	m.usingFallback = false
	m.mu.Unlock()
	metrics.IntentRefreshes.WithLabelValues("database").Inc()

	m.logger.Info("intent patterns refreshed", map[string]interface{}{
		"definitions": len(defs),
		"patterns":    len(patterns),
	})
	return nil
}

// StartRefreshing refreshes immediately and then on a fixed timer until
// ctx is cancelled. Runs independently of request handling.
func (m *Manager) StartRefreshing(ctx context.Context) {
	go func() {
		_ = m.Refresh(ctx)
		ticker := time.NewTicker(m.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = m.Refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Match scans patterns in stored order; the first match wins. Confidence
// starts at 0.7 and is boosted toward 0.95 by the fraction of pattern
// words found among the input's words (substring containment in either
// direction).
func (m *Manager) Match(text string) models.IntentMatch {
	input := strings.ToLower(strings.TrimSpace(text))

	m.mu.RLock()
	patterns := m.patterns
	usingFallback := m.usingFallback
	m.mu.RUnlock()

	source := "database"
	if usingFallback {
		source = "fallback"
	}

	inputWords := strings.Fields(input)
	for _, p := range patterns {
		if !p.re.MatchString(input) {
			continue
		}

		confidence := baseConfidence
		if len(p.words) > 0 {
			found := 0
			for _, pw := range p.words {
				for _, iw := range inputWords {
					if strings.Contains(iw, pw) || strings.Contains(pw, iw) {
						found++
						break
					}
				}
			}
			confidence += (maxConfidence - baseConfidence) * float64(found) / float64(len(p.words))
		}
		if confidence > maxConfidence {
			confidence = maxConfidence
		}

		return models.IntentMatch{
			Intent:         p.intent,
			Confidence:     confidence,
			MatchedPattern: p.raw,
			Source:         source,
		}
	}

	return models.IntentMatch{
		Intent:     noMatchIntent,
		Confidence: noMatchConfidence,
		Source:     "fallback",
	}
}
