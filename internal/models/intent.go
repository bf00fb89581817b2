package models

import "time"

// IntentDefinition is a persisted intent-to-examples mapping. Examples
// double as the source material for fuzzy match patterns.
type IntentDefinition struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Examples    []string          `json:"examples"`
	Slots       map[string]string `json:"slots,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// IntentMatch is the result of pattern matching a user message.
// Source is "database" for live definitions and "fallback" when the
// hardcoded pattern table is in effect or nothing matched.
type IntentMatch struct {
	Intent         string  `json:"intent"`
	Confidence     float64 `json:"confidence"`
	MatchedPattern string  `json:"matchedPattern,omitempty"`
	Source         string  `json:"source"`
}
