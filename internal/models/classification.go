package models

// Provider tags which tier produced a classification result.
type Provider string

const (
	ProviderBertFast Provider = "bert-fast"
	ProviderHybrid   Provider = "hybrid"
	ProviderFallback Provider = "fallback"
	ProviderNER      Provider = "ner"
	ProviderLLM      Provider = "llm"
)

// ClassificationResult is the output of any classification step.
// Confidence is meaningful only within a tier; cross-tier comparison
// happens through threshold gating, never raw value equality.
type ClassificationResult struct {
	Intent               string                 `json:"intent"`
	Confidence           float64                `json:"confidence"`
	Entities             map[string]interface{} `json:"entities"`
	Provider             Provider               `json:"provider"`
	Reasoning            string                 `json:"reasoning,omitempty"`
	ClarificationNeeded  bool                   `json:"clarificationNeeded,omitempty"`
	ClarificationOptions []string               `json:"clarificationOptions,omitempty"`
	MultiIntent          []string               `json:"multiIntent,omitempty"`
}
