package models

// ResolvedStore is the catalog match for a free-text store name.
type ResolvedStore struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Matched    bool    `json:"matched"`
	Confidence float64 `json:"confidence"`
}

// ResolvedFood is the catalog match for one food item query. Unmatched
// queries are still returned with Matched false so the output stays in
// 1:1 positional correspondence with the input.
type ResolvedFood struct {
	Query     string  `json:"query"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StoreID   string  `json:"storeId"`
	StoreName string  `json:"storeName"`
	Price     float64 `json:"price"`
	Matched   bool    `json:"matched"`
}

// ResolvedEntities is ExtractedEntities with catalog IDs attached.
// Ephemeral: constructed per request, never persisted.
type ResolvedEntities struct {
	ExtractedEntities
	ResolvedStore *ResolvedStore `json:"resolved_store,omitempty"`
	ResolvedFood  []ResolvedFood `json:"resolved_food,omitempty"`
}
