package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "agentic-nlu/internal/common/errors"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/models"
)

type fakeNER struct {
	available bool
	entities  *models.ExtractedEntities
	err       error
	calls     int
}

func (f *fakeNER) Available() bool { return f.available }

func (f *fakeNER) Extract(_ context.Context, _ string) (*models.ExtractedEntities, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := *f.entities
	return &out, nil
}

type fakeLLMTier struct {
	entities *models.ExtractedEntities
	calls    int
}

func (f *fakeLLMTier) Extract(_ context.Context, _ string) *models.ExtractedEntities {
	f.calls++
	out := *f.entities
	return &out
}

type fakeResolver struct {
	store        *models.ResolvedStore
	storeErr     error
	foodStoreIDs []string
	foodItems    [][]string
}

func (f *fakeResolver) ResolveStore(_ context.Context, _ string) (*models.ResolvedStore, error) {
	return f.store, f.storeErr
}

func (f *fakeResolver) ResolveFood(_ context.Context, items []string, storeID string) ([]models.ResolvedFood, error) {
	f.foodStoreIDs = append(f.foodStoreIDs, storeID)
	f.foodItems = append(f.foodItems, items)
	out := make([]models.ResolvedFood, len(items))
	for i, item := range items {
		out[i] = models.ResolvedFood{Query: item, ID: "food-" + item, Matched: true}
	}
	return out, nil
}

func nerEntities() *models.ExtractedEntities {
	qty := 2
	return &models.ExtractedEntities{
		FoodReference:  []string{"paneer tikka"},
		StoreReference: "dominos",
		Quantity:       &qty,
		Source:         "ner",
		Confidence:     0.9,
	}
}

func TestExtractPrefersNER(t *testing.T) {
	ner := &fakeNER{available: true, entities: nerEntities()}
	llm := &fakeLLMTier{entities: &models.ExtractedEntities{Source: "llm"}}
	e := NewExtractor(ner, llm, nil, logger.NewTestLogger(t))

	entities, err := e.Extract(context.Background(), "2 paneer tikka from dominos")
	require.NoError(t, err)

	assert.Equal(t, "ner", entities.Source)
	assert.Equal(t, "dominos", entities.StoreReference)
	assert.Equal(t, 1, ner.calls)
	assert.Equal(t, 0, llm.calls, "single-store text must not trigger the supplementary call")
}

func TestExtractMergesMultiStoreFromLLM(t *testing.T) {
	ner := &fakeNER{available: true, entities: &models.ExtractedEntities{
		FoodReference:  []string{"mali paneer", "gulkand"},
		StoreReference: "ganesh sweets",
		Source:         "ner",
		Confidence:     0.9,
	}}
	llm := &fakeLLMTier{entities: &models.ExtractedEntities{
		Source: "llm",
		StoreReferences: []models.StoreOrder{
			{Store: "ganesh sweets", Items: []string{"mali paneer"}},
			{Store: "dagu teli", Items: []string{"gulkand"}},
		},
	}}
	e := NewExtractor(ner, llm, nil, logger.NewTestLogger(t))

	entities, err := e.Extract(context.Background(),
		"order mali paneer from ganesh sweets and gulkand from dagu teli")
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "ner", entities.Source, "merge keeps the NER result as the base")
	require.Len(t, entities.StoreReferences, 2)
	assert.Equal(t, "ganesh sweets", entities.StoreReference)
	assert.Equal(t, "dagu teli", entities.StoreReferences[1].Store)
}

func TestExtractHeuristicYieldsToLLMSingleStore(t *testing.T) {
	ner := &fakeNER{available: true, entities: nerEntities()}
	llm := &fakeLLMTier{entities: &models.ExtractedEntities{
		Source:         "llm",
		StoreReference: "dominos",
	}}
	e := NewExtractor(ner, llm, nil, logger.NewTestLogger(t))

	// "and ... from" trips the heuristic but the model sees one store.
	entities, err := e.Extract(context.Background(), "pizza and garlic bread from dominos")
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls)
	assert.Nil(t, entities.StoreReferences)
	assert.Equal(t, "dominos", entities.StoreReference)
}

func TestExtractFallsBackWhenNERUnavailable(t *testing.T) {
	ner := &fakeNER{available: false, entities: nerEntities()}
	llm := &fakeLLMTier{entities: &models.ExtractedEntities{
		FoodReference: []string{"cold coffee"},
		Source:        "llm",
		Confidence:    0.85,
	}}
	e := NewExtractor(ner, llm, nil, logger.NewTestLogger(t))

	entities, err := e.Extract(context.Background(), "do you have cold coffee")
	require.NoError(t, err)

	assert.Equal(t, 0, ner.calls)
	assert.Equal(t, "llm", entities.Source)
	assert.Equal(t, []string{"cold coffee"}, entities.FoodReference)
}

func TestExtractFallsBackWhenNERFails(t *testing.T) {
	ner := &fakeNER{available: true, err: errors.New("connection reset")}
	llm := &fakeLLMTier{entities: &models.ExtractedEntities{Source: "llm", Confidence: 0.8}}
	e := NewExtractor(ner, llm, nil, logger.NewTestLogger(t))

	entities, err := e.Extract(context.Background(), "order pizza")
	require.NoError(t, err)

	assert.Equal(t, 1, ner.calls)
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "llm", entities.Source)
}

func TestExtractErrorsWhenNothingConfigured(t *testing.T) {
	e := NewExtractor(nil, nil, nil, logger.NewTestLogger(t))

	_, err := e.Extract(context.Background(), "order pizza")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeExtractionUnavailable))
}

func TestExtractAndResolveScopesFoodToStore(t *testing.T) {
	ner := &fakeNER{available: true, entities: nerEntities()}
	resolver := &fakeResolver{store: &models.ResolvedStore{ID: "st-1", Name: "Dominos", Matched: true}}
	e := NewExtractor(ner, nil, resolver, logger.NewTestLogger(t))

	resolved, err := e.ExtractAndResolve(context.Background(), "2 paneer tikka from dominos")
	require.NoError(t, err)

	require.NotNil(t, resolved.ResolvedStore)
	assert.Equal(t, "st-1", resolved.ResolvedStore.ID)
	require.Len(t, resolver.foodStoreIDs, 1)
	assert.Equal(t, "st-1", resolver.foodStoreIDs[0], "food lookup must carry the resolved store ID")
	require.Len(t, resolved.ResolvedFood, 1)
	assert.True(t, resolved.ResolvedFood[0].Matched)
}

func TestExtractAndResolveUnscopedWhenStoreMisses(t *testing.T) {
	ner := &fakeNER{available: true, entities: nerEntities()}
	resolver := &fakeResolver{store: nil}
	e := NewExtractor(ner, nil, resolver, logger.NewTestLogger(t))

	resolved, err := e.ExtractAndResolve(context.Background(), "2 paneer tikka from dominos")
	require.NoError(t, err)

	assert.Nil(t, resolved.ResolvedStore)
	require.Len(t, resolver.foodStoreIDs, 1)
	assert.Empty(t, resolver.foodStoreIDs[0])
}

func TestExtractAndResolveFillsQuantityFromText(t *testing.T) {
	ner := &fakeNER{available: true, entities: &models.ExtractedEntities{
		FoodReference: []string{"samosa"},
		Source:        "ner",
		Confidence:    0.9,
	}}
	e := NewExtractor(ner, nil, &fakeResolver{}, logger.NewTestLogger(t))

	resolved, err := e.ExtractAndResolve(context.Background(), "do samosa bhej do")
	require.NoError(t, err)

	require.NotNil(t, resolved.Quantity)
	assert.Equal(t, 2, *resolved.Quantity)
}

func TestExtractAndResolvePropagatesExhaustion(t *testing.T) {
	e := NewExtractor(nil, nil, &fakeResolver{}, logger.NewTestLogger(t))

	_, err := e.ExtractAndResolve(context.Background(), "order pizza")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeExtractionUnavailable))
}
