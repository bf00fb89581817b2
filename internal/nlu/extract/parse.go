package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"agentic-nlu/internal/models"
)

var ErrLLMParseFailed = errors.New("LLM_PARSE_FAILED")

// genericStoreWords must never be treated as a proper store name.
var genericStoreWords = map[string]struct{}{
	"any": {}, "anywhere": {}, "nearby": {}, "near": {}, "best": {},
	"good": {}, "top": {}, "famous": {}, "local": {}, "some": {},
	"somewhere": {}, "restaurant": {}, "restaurants": {}, "shop": {},
	"store": {}, "hotel": {}, "online": {}, "cheap": {}, "cheapest": {},
}

// llmEntitiesSchema is the shape contract for the extraction response.
// Validation runs before normalization so malformed payloads fail as one
// parse error instead of many field surprises.
const llmEntitiesSchema = `{
  "type": "object",
  "properties": {
    "food_reference": {"type": ["array", "null"], "items": {"type": "string"}},
    "store_reference": {"type": ["string", "null"]},
    "store_references": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "store": {"type": ["string", "null"]},
          "items": {"type": ["array", "null"], "items": {"type": "string"}}
        }
      }
    },
    "quantity": {"type": ["integer", "number", "string", "null"]},
    "location_reference": {"type": ["string", "null"]},
    "phone": {"type": ["string", "number", "null"]},
    "person_name": {"type": ["string", "null"]},
    "preference": {"type": ["array", "null"], "items": {"type": "string"}},
    "time_reference": {"type": ["string", "null"]},
    "confidence": {"type": ["number", "null"]}
  }
}`

var compiledEntitiesSchema = gojsonschema.NewStringLoader(llmEntitiesSchema)

// llmEntitiesPayload is the loose decoding target before normalization.
type llmEntitiesPayload struct {
	FoodReference     []string            `json:"food_reference"`
	StoreReference    string              `json:"store_reference"`
	StoreReferences   []models.StoreOrder `json:"store_references"`
	Quantity          json.RawMessage     `json:"quantity"`
	LocationReference string              `json:"location_reference"`
	Phone             json.RawMessage     `json:"phone"`
	PersonName        string              `json:"person_name"`
	Preference        []string            `json:"preference"`
	TimeReference     string              `json:"time_reference"`
	Confidence        float64             `json:"confidence"`
}

// stripCodeFences defensively removes markdown fencing some models emit
// despite the no-fences instruction.
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// extractJSONObject returns the outermost {...} span, tolerating prose
// around the object.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// parseLLMEntities decodes and normalizes an extraction response.
func parseLLMEntities(raw string) (*models.ExtractedEntities, error) {
	jsonStr, ok := extractJSONObject(stripCodeFences(raw))
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrLLMParseFailed)
	}

	result, err := gojsonschema.Validate(compiledEntitiesSchema, gojsonschema.NewStringLoader(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMParseFailed, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrLLMParseFailed, result.Errors()[0].String())
	}

	var payload llmEntitiesPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMParseFailed, err)
	}

	return normalizeEntities(&payload), nil
}

// normalizeEntities applies the construction-time invariants: stoplist
// filtering, minimum-length food filtering, the >=2 store_references
// rule and null defaults for anything malformed.
func normalizeEntities(p *llmEntitiesPayload) *models.ExtractedEntities {
	out := &models.ExtractedEntities{
		Source:     "llm",
		Confidence: clamp01(p.Confidence),
	}

	for _, f := range p.FoodReference {
		f = strings.TrimSpace(f)
		if len(f) > 1 && !containsString(out.FoodReference, f) {
			out.FoodReference = append(out.FoodReference, f)
		}
	}

	out.StoreReference = normalizeStoreName(p.StoreReference)

	var validStores []models.StoreOrder
	for _, so := range p.StoreReferences {
		store := normalizeStoreName(so.Store)
		var items []string
		for _, it := range so.Items {
			it = strings.TrimSpace(it)
			if len(it) > 1 {
				items = append(items, it)
			}
		}
		if len(store) >= 2 && len(items) > 0 {
			validStores = append(validStores, models.StoreOrder{Store: store, Items: items})
		}
	}
	// Hard invariant: fewer than 2 valid entries means no multi-store
	// order, not a singleton list.
	if len(validStores) >= 2 {
		out.StoreReferences = validStores
		out.StoreReference = validStores[0].Store
	}

	out.Quantity = coerceQuantity(p.Quantity)
	out.LocationReference = strings.TrimSpace(p.LocationReference)
	out.Phone = coerceStringish(p.Phone)
	out.PersonName = strings.TrimSpace(p.PersonName)
	for _, pref := range p.Preference {
		pref = strings.TrimSpace(pref)
		if pref != "" {
			out.Preference = append(out.Preference, pref)
		}
	}
	out.TimeReference = strings.TrimSpace(p.TimeReference)

	return out
}

// normalizeStoreName lowercases, trims and stoplists a store name;
// returns "" when it is not a usable proper name.
func normalizeStoreName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if _, generic := genericStoreWords[name]; generic {
		return ""
	}
	// Multi-word names made entirely of generic words are just as useless.
	words := strings.Fields(name)
	allGeneric := true
	for _, w := range words {
		if _, generic := genericStoreWords[w]; !generic {
			allGeneric = false
			break
		}
	}
	if allGeneric {
		return ""
	}
	return name
}

func coerceQuantity(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		n := int(f)
		if n > 0 {
			return &n
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
			return &n
		}
	}
	return nil
}

func coerceStringish(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatInt(int64(f), 10)
	}
	return ""
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
