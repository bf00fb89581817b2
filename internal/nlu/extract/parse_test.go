package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLLMEntitiesHappyPath(t *testing.T) {
	raw := `{"food_reference": ["paneer tikka"], "store_reference": "Dominos",
		"quantity": 2, "confidence": 0.92}`

	entities, err := parseLLMEntities(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"paneer tikka"}, entities.FoodReference)
	assert.Equal(t, "dominos", entities.StoreReference)
	require.NotNil(t, entities.Quantity)
	assert.Equal(t, 2, *entities.Quantity)
	assert.Equal(t, "llm", entities.Source)
	assert.InDelta(t, 0.92, entities.Confidence, 0.001)
}

func TestParseLLMEntitiesStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"food_reference\": [\"jalebi\"], \"confidence\": 0.8}\n```"

	entities, err := parseLLMEntities(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"jalebi"}, entities.FoodReference)
}

func TestParseLLMEntitiesToleratesSurroundingProse(t *testing.T) {
	raw := `Here is the extraction: {"food_reference": ["chai"], "confidence": 0.7} Hope that helps.`

	entities, err := parseLLMEntities(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"chai"}, entities.FoodReference)
}

func TestParseLLMEntitiesNoObject(t *testing.T) {
	_, err := parseLLMEntities("sorry, I cannot help with that")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLLMParseFailed)
}

func TestNormalizeGenericStoreWordsBecomeNull(t *testing.T) {
	for _, raw := range []string{
		`{"store_reference": "any", "food_reference": ["pizza"]}`,
		`{"store_reference": "nearby restaurant", "food_reference": ["pizza"]}`,
		`{"store_reference": "best shop", "food_reference": ["pizza"]}`,
	} {
		entities, err := parseLLMEntities(raw)
		require.NoError(t, err)
		assert.Empty(t, entities.StoreReference, "raw=%s", raw)
	}
}

func TestNormalizeKeepsProperStoreWithGenericWord(t *testing.T) {
	entities, err := parseLLMEntities(`{"store_reference": "Sharma Sweet Shop"}`)
	require.NoError(t, err)
	assert.Equal(t, "sharma sweet shop", entities.StoreReference)
}

func TestNormalizeStoreReferencesInvariant(t *testing.T) {
	t.Run("two valid entries", func(t *testing.T) {
		raw := `{"store_references": [
			{"store": "ganesh sweets", "items": ["mali paneer"]},
			{"store": "dagu teli", "items": ["gulkand"]}
		]}`
		entities, err := parseLLMEntities(raw)
		require.NoError(t, err)
		require.Len(t, entities.StoreReferences, 2)
		assert.Equal(t, "ganesh sweets", entities.StoreReference)
	})

	t.Run("singleton collapses to nil", func(t *testing.T) {
		raw := `{"store_reference": "dominos",
			"store_references": [{"store": "dominos", "items": ["pizza"]}]}`
		entities, err := parseLLMEntities(raw)
		require.NoError(t, err)
		assert.Nil(t, entities.StoreReferences)
		assert.Equal(t, "dominos", entities.StoreReference)
	})

	t.Run("malformed entry filtered then collapses", func(t *testing.T) {
		raw := `{"store_references": [
			{"store": "dominos", "items": ["pizza"]},
			{"store": "any", "items": ["samosa"]}
		]}`
		entities, err := parseLLMEntities(raw)
		require.NoError(t, err)
		assert.Nil(t, entities.StoreReferences)
	})
}

func TestNormalizeNullDefaults(t *testing.T) {
	entities, err := parseLLMEntities(`{"food_reference": null, "store_reference": null,
		"quantity": null, "phone": null, "confidence": 0.5}`)
	require.NoError(t, err)

	assert.Nil(t, entities.FoodReference)
	assert.Empty(t, entities.StoreReference)
	assert.Nil(t, entities.StoreReferences)
	assert.Nil(t, entities.Quantity)
	assert.Empty(t, entities.Phone)
}

func TestNormalizeCoercions(t *testing.T) {
	entities, err := parseLLMEntities(`{"quantity": "4", "phone": 9876543210}`)
	require.NoError(t, err)

	require.NotNil(t, entities.Quantity)
	assert.Equal(t, 4, *entities.Quantity)
	assert.Equal(t, "9876543210", entities.Phone)
}

func TestNormalizeDropsShortAndDuplicateFood(t *testing.T) {
	entities, err := parseLLMEntities(`{"food_reference": ["roti", "x", "roti", " "]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"roti"}, entities.FoodReference)
}

func TestNormalizeClampsConfidence(t *testing.T) {
	entities, err := parseLLMEntities(`{"confidence": 1.7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, entities.Confidence)
}
