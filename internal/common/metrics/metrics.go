package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_classifications_total",
			Help: "Total number of classification requests by final provider tier",
		},
		[]string{"provider"},
	)

	AgenticEscalations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlu_agentic_escalations_total",
			Help: "Total number of low-confidence escalations to the reasoning tier",
		},
	)

	AgenticParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlu_agentic_parse_failures_total",
			Help: "Total number of reasoning-tier responses that failed JSON parsing",
		},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_extractions_total",
			Help: "Total number of entity extractions by source tier",
		},
		[]string{"source"},
	)

	ExtractionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlu_extraction_fallbacks_total",
			Help: "Total number of NER to LLM extraction fallbacks",
		},
	)

	ExtractionCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_extraction_cache_total",
			Help: "LLM extraction cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nlu_classification_duration_seconds",
			Help: "Duration of classification by provider tier",
		},
		[]string{"provider"},
	)

	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_resolutions_total",
			Help: "Catalog resolution attempts by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	NERAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nlu_ner_available",
			Help: "Whether the NER service is currently considered available",
		},
	)

	IntentRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlu_intent_refreshes_total",
			Help: "Intent pattern refreshes by resulting source",
		},
		[]string{"source"},
	)
)
