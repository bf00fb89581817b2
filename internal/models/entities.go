package models

// StoreOrder pairs a store name with the items requested from it.
type StoreOrder struct {
	Store string   `json:"store"`
	Items []string `json:"items"`
}

// ExtractedEntities is the normalized slot-filling result, independent of
// which extractor produced it.
//
// StoreReferences is populated only when 2+ distinct stores are detected in
// one message; a single-store order always leaves it nil. When both
// StoreReference and StoreReferences are set, StoreReference equals the
// first entry's store (enforced at construction).
type ExtractedEntities struct {
	FoodReference     []string     `json:"food_reference,omitempty"`
	StoreReference    string       `json:"store_reference,omitempty"`
	StoreReferences   []StoreOrder `json:"store_references,omitempty"`
	Quantity          *int         `json:"quantity,omitempty"`
	LocationReference string       `json:"location_reference,omitempty"`
	Phone             string       `json:"phone,omitempty"`
	PersonName        string       `json:"person_name,omitempty"`
	Preference        []string     `json:"preference,omitempty"`
	TimeReference     string       `json:"time_reference,omitempty"`

	// Source is the tier that resolved the entities: ner, llm or regex.
	Source     string  `json:"_source,omitempty"`
	Confidence float64 `json:"_confidence"`

	// Reasoning carries the error class and message on zero-confidence
	// failure results; it is diagnostic only.
	Reasoning string `json:"reasoning,omitempty"`
}
