package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentic-nlu/internal/common/cache"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/nlu/llmx"
)

type fakeChat struct {
	calls   int
	content string
	err     error
	lastReq *llmx.Request
}

func (f *fakeChat) Chat(_ context.Context, req *llmx.Request) (string, error) {
	f.calls++
	f.lastReq = req
	return f.content, f.err
}

func TestLLMExtractorParsesAndTags(t *testing.T) {
	chat := &fakeChat{content: `{"food_reference": ["paneer tikka"], "store_reference": "dominos", "quantity": 2, "confidence": 0.9}`}
	e := NewLLMExtractor(chat, &LLMConfig{}, nil, nil, logger.NewTestLogger(t))

	entities := e.Extract(context.Background(), "2 paneer tikka from dominos")

	assert.Equal(t, "llm", entities.Source)
	assert.Equal(t, "dominos", entities.StoreReference)
	require.NotNil(t, entities.Quantity)
	assert.Equal(t, 2, *entities.Quantity)

	require.NotNil(t, chat.lastReq)
	assert.Equal(t, "json_object", chat.lastReq.ResponseFormat)
	require.Len(t, chat.lastReq.Messages, 2)
	assert.Equal(t, "system", chat.lastReq.Messages[0].Role)
}

func TestLLMExtractorCachesByNormalizedText(t *testing.T) {
	chat := &fakeChat{content: `{"food_reference": ["samosa"], "confidence": 0.8}`}
	mem := cache.NewMemory(time.Minute, 16)
	defer mem.Stop()
	e := NewLLMExtractor(chat, &LLMConfig{}, mem, nil, logger.NewTestLogger(t))

	first := e.Extract(context.Background(), "Do Samosa Bhej Do")
	second := e.Extract(context.Background(), "  do samosa bhej do ")

	assert.Equal(t, 1, chat.calls, "identical normalized text must not re-hit the model")
	assert.Equal(t, first.FoodReference, second.FoodReference)
}

func TestLLMExtractorCacheExpiry(t *testing.T) {
	chat := &fakeChat{content: `{"food_reference": ["chai"], "confidence": 0.8}`}
	mem := cache.NewMemory(30*time.Millisecond, 16)
	defer mem.Stop()
	e := NewLLMExtractor(chat, &LLMConfig{}, mem, nil, logger.NewTestLogger(t))

	e.Extract(context.Background(), "ek chai")
	time.Sleep(60 * time.Millisecond)
	e.Extract(context.Background(), "ek chai")

	assert.Equal(t, 2, chat.calls)
}

func TestLLMExtractorDegradesOnCallFailure(t *testing.T) {
	chat := &fakeChat{err: errors.New("connection refused")}
	e := NewLLMExtractor(chat, &LLMConfig{}, nil, nil, logger.NewTestLogger(t))

	entities := e.Extract(context.Background(), "2 pizza from dominos")

	assert.Equal(t, "llm", entities.Source)
	assert.Zero(t, entities.Confidence)
	assert.NotEmpty(t, entities.Reasoning)
	assert.Empty(t, entities.FoodReference)
}

func TestLLMExtractorDegradesOnParseFailure(t *testing.T) {
	chat := &fakeChat{content: "I would love to help you order food!"}
	mem := cache.NewMemory(time.Minute, 16)
	defer mem.Stop()
	e := NewLLMExtractor(chat, &LLMConfig{}, mem, nil, logger.NewTestLogger(t))

	entities := e.Extract(context.Background(), "order pizza")
	assert.Zero(t, entities.Confidence)
	assert.NotEmpty(t, entities.Reasoning)

	// Failures are not cached; the next call retries the model.
	e.Extract(context.Background(), "order pizza")
	assert.Equal(t, 2, chat.calls)
}
