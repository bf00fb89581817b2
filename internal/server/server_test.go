package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "agentic-nlu/internal/common/errors"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/models"
	"agentic-nlu/internal/nlu/ner"
)

type stubClassifier struct {
	result *models.ClassificationResult
}

func (s *stubClassifier) Classify(_ context.Context, _, _ string, _ []string) *models.ClassificationResult {
	return s.result
}

type stubExtractor struct {
	entities *models.ExtractedEntities
	resolved *models.ResolvedEntities
	err      error
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (*models.ExtractedEntities, error) {
	return s.entities, s.err
}

func (s *stubExtractor) ExtractAndResolve(_ context.Context, _ string) (*models.ResolvedEntities, error) {
	return s.resolved, s.err
}

type stubIntentStore struct {
	defs   []models.IntentDefinition
	getErr error
}

func (s *stubIntentStore) List(_ context.Context) ([]models.IntentDefinition, error) {
	return s.defs, nil
}

func (s *stubIntentStore) Get(_ context.Context, name string) (*models.IntentDefinition, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.IntentDefinition{Name: name}, nil
}

func (s *stubIntentStore) Create(_ context.Context, def *models.IntentDefinition) (*models.IntentDefinition, error) {
	return def, nil
}

func (s *stubIntentStore) Update(_ context.Context, def *models.IntentDefinition) (*models.IntentDefinition, error) {
	return def, nil
}

func (s *stubIntentStore) Delete(_ context.Context, _ string) error { return nil }

type stubMatcher struct {
	match     models.IntentMatch
	refreshed bool
}

func (s *stubMatcher) Match(_ string) models.IntentMatch { return s.match }
func (s *stubMatcher) Refresh(_ context.Context) error   { s.refreshed = true; return nil }
func (s *stubMatcher) UsingFallback() bool               { return true }

type stubNER struct{ state ner.State }

func (s *stubNER) State() ner.State { return s.state }

func newTestRouter(t *testing.T, deps *Dependencies) *mux.Router {
	t.Helper()
	if deps.Version == "" {
		deps.Version = "test"
	}
	h := &handlers{deps: deps, logger: logger.NewTestLogger(t)}
	router := mux.NewRouter()
	registerRoutes(router, h)
	return router
}

func postJSON(t *testing.T, router *mux.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestClassifyEndpoint(t *testing.T) {
	router := newTestRouter(t, &Dependencies{
		Classifier: &stubClassifier{result: &models.ClassificationResult{
			Intent: "order_food", Confidence: 0.9, Provider: models.ProviderBertFast,
		}},
	})

	rec := postJSON(t, router, "/v1/classify", map[string]string{"text": "order pizza"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ClassificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "order_food", result.Intent)
	assert.Equal(t, models.ProviderBertFast, result.Provider)
}

func TestClassifyRejectsEmptyText(t *testing.T) {
	router := newTestRouter(t, &Dependencies{Classifier: &stubClassifier{}})
	rec := postJSON(t, router, "/v1/classify", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractEndpoint(t *testing.T) {
	router := newTestRouter(t, &Dependencies{
		Extractor: &stubExtractor{entities: &models.ExtractedEntities{
			FoodReference: []string{"samosa"}, Source: "ner", Confidence: 0.9,
		}},
	})

	rec := postJSON(t, router, "/v1/extract", map[string]string{"text": "do samosa"})
	require.Equal(t, http.StatusOK, rec.Code)

	var entities models.ExtractedEntities
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entities))
	assert.Equal(t, []string{"samosa"}, entities.FoodReference)
	assert.Equal(t, "ner", entities.Source)
}

func TestExtractUnavailableMapsTo503(t *testing.T) {
	router := newTestRouter(t, &Dependencies{
		Extractor: &stubExtractor{err: stderrors.NewExtractionUnavailableError("nothing configured")},
	})

	rec := postJSON(t, router, "/v1/extract", map[string]string{"text": "order pizza"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "EXTRACTION_UNAVAILABLE")
}

func TestExtractResolveEndpoint(t *testing.T) {
	router := newTestRouter(t, &Dependencies{
		Extractor: &stubExtractor{resolved: &models.ResolvedEntities{
			ExtractedEntities: models.ExtractedEntities{StoreReference: "dominos"},
			ResolvedStore:     &models.ResolvedStore{ID: "st-1", Name: "Dominos", Matched: true},
		}},
	})

	rec := postJSON(t, router, "/v1/extract/resolve", map[string]string{"text": "pizza from dominos"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resolved models.ResolvedEntities
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	require.NotNil(t, resolved.ResolvedStore)
	assert.Equal(t, "st-1", resolved.ResolvedStore.ID)
}

func TestIntentCRUDStatusMapping(t *testing.T) {
	t.Run("get missing is 404", func(t *testing.T) {
		router := newTestRouter(t, &Dependencies{
			IntentStore: &stubIntentStore{getErr: stderrors.NewIntentNotFoundError("nope")},
		})
		req := httptest.NewRequest(http.MethodGet, "/v1/intents/nope", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("create is 201", func(t *testing.T) {
		router := newTestRouter(t, &Dependencies{IntentStore: &stubIntentStore{}})
		rec := postJSON(t, router, "/v1/intents", models.IntentDefinition{
			Name: "order_food", Examples: []string{"order pizza"},
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("create without examples is 400", func(t *testing.T) {
		router := newTestRouter(t, &Dependencies{IntentStore: &stubIntentStore{}})
		rec := postJSON(t, router, "/v1/intents", models.IntentDefinition{Name: "order_food"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no store is 503", func(t *testing.T) {
		router := newTestRouter(t, &Dependencies{})
		req := httptest.NewRequest(http.MethodGet, "/v1/intents", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestIntentMatchAndRefresh(t *testing.T) {
	matcher := &stubMatcher{match: models.IntentMatch{Intent: "greeting", Confidence: 0.85, Source: "fallback"}}
	router := newTestRouter(t, &Dependencies{Intents: matcher})

	rec := postJSON(t, router, "/v1/intents/match", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	var match models.IntentMatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, "greeting", match.Intent)

	rec = postJSON(t, router, "/v1/intents/refresh", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, matcher.refreshed)
}

func TestHealthReportsNERState(t *testing.T) {
	router := newTestRouter(t, &Dependencies{
		Intents: &stubMatcher{},
		NER:     &stubNER{state: ner.StateAvailable},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "available", status["ner"])
	assert.Equal(t, "ok", status["status"])
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter(t, &Dependencies{Intents: &stubMatcher{}})
	router.Use(requestIDMiddleware)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
