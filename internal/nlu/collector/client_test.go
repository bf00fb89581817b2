package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentic-nlu/internal/common/logger"
)

func TestCollectLLMPostsPayload(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collect/llm", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	c := NewClient(&Config{BaseURL: server.URL, Enabled: true}, logger.NewTestLogger(t))
	c.CollectLLM(context.Background(), "do samosa", map[string]interface{}{"quantity": 2}, "llm_extractor")

	assert.Equal(t, "do samosa", got["text"])
	assert.Equal(t, "llm_extractor", got["source"])
}

func TestCollectLLMDisabledDoesNotCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	c := NewClient(&Config{BaseURL: server.URL, Enabled: false}, logger.NewTestLogger(t))
	c.CollectLLM(context.Background(), "text", nil, "llm_extractor")
	assert.False(t, called)
}

func TestCollectLLMSwallowsFailures(t *testing.T) {
	c := NewClient(&Config{BaseURL: "http://127.0.0.1:1", Enabled: true}, logger.NewTestLogger(t))
	// Must not panic or block; failures are dropped.
	c.CollectLLM(context.Background(), "text", nil, "llm_extractor")

	var nilClient *Client
	nilClient.CollectLLM(context.Background(), "text", nil, "llm_extractor")
}
