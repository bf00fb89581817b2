package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	stderrors "agentic-nlu/internal/common/errors"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/models"
	"agentic-nlu/internal/nlu/ner"
)

type handlers struct {
	deps   *Dependencies
	logger logger.Logger
}

type classifyRequest struct {
	Text     string   `json:"text"`
	Language string   `json:"language"`
	History  []string `json:"history"`
}

type extractRequest struct {
	Text string `json:"text"`
}

func (h *handlers) classify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, stderrors.New(stderrors.ErrCodeInvalidInput, "text is required", "", false))
		return
	}

	result := h.deps.Classifier.Classify(r.Context(), req.Text, req.Language, req.History)
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, stderrors.New(stderrors.ErrCodeInvalidInput, "text is required", "", false))
		return
	}

	entities, err := h.deps.Extractor.Extract(r.Context(), req.Text)
	if err != nil {
		h.writeExtractionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities)
}

func (h *handlers) extractResolve(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, stderrors.New(stderrors.ErrCodeInvalidInput, "text is required", "", false))
		return
	}

	resolved, err := h.deps.Extractor.ExtractAndResolve(r.Context(), req.Text)
	if err != nil {
		h.writeExtractionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

func (h *handlers) writeExtractionError(w http.ResponseWriter, err error) {
	if stderrors.IsCode(err, stderrors.ErrCodeExtractionUnavailable) {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	h.logger.Error("extraction failed", map[string]interface{}{"error": err.Error()})
	writeError(w, http.StatusInternalServerError, err)
}

func (h *handlers) listIntents(w http.ResponseWriter, r *http.Request) {
	if h.deps.IntentStore == nil {
		writeError(w, http.StatusServiceUnavailable, stderrors.New(stderrors.ErrCodeIntentStoreFailed, "intent store not configured", "", false))
		return
	}
	defs, err := h.deps.IntentStore.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if defs == nil {
		defs = []models.IntentDefinition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

func (h *handlers) getIntent(w http.ResponseWriter, r *http.Request) {
	if h.deps.IntentStore == nil {
		writeError(w, http.StatusServiceUnavailable, stderrors.New(stderrors.ErrCodeIntentStoreFailed, "intent store not configured", "", false))
		return
	}
	def, err := h.deps.IntentStore.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.writeIntentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (h *handlers) createIntent(w http.ResponseWriter, r *http.Request) {
	if h.deps.IntentStore == nil {
		writeError(w, http.StatusServiceUnavailable, stderrors.New(stderrors.ErrCodeIntentStoreFailed, "intent store not configured", "", false))
		return
	}
	var def models.IntentDefinition
	if !decodeBody(w, r, &def) {
		return
	}
	if strings.TrimSpace(def.Name) == "" || len(def.Examples) == 0 {
		writeError(w, http.StatusBadRequest, stderrors.New(stderrors.ErrCodeInvalidInput, "name and examples are required", "", false))
		return
	}

	created, err := h.deps.IntentStore.Create(r.Context(), &def)
	if err != nil {
		h.writeIntentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) updateIntent(w http.ResponseWriter, r *http.Request) {
	if h.deps.IntentStore == nil {
		writeError(w, http.StatusServiceUnavailable, stderrors.New(stderrors.ErrCodeIntentStoreFailed, "intent store not configured", "", false))
		return
	}
	var def models.IntentDefinition
	if !decodeBody(w, r, &def) {
		return
	}
	def.Name = mux.Vars(r)["name"]

	updated, err := h.deps.IntentStore.Update(r.Context(), &def)
	if err != nil {
		h.writeIntentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handlers) deleteIntent(w http.ResponseWriter, r *http.Request) {
	if h.deps.IntentStore == nil {
		writeError(w, http.StatusServiceUnavailable, stderrors.New(stderrors.ErrCodeIntentStoreFailed, "intent store not configured", "", false))
		return
	}
	if err := h.deps.IntentStore.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		h.writeIntentError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) writeIntentError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.IsCode(err, stderrors.ErrCodeIntentNotFound):
		writeError(w, http.StatusNotFound, err)
	case stderrors.IsCode(err, stderrors.ErrCodeDuplicateIntent):
		writeError(w, http.StatusConflict, err)
	default:
		h.logger.Error("intent store error", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *handlers) matchIntent(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Intents.Match(req.Text))
}

func (h *handlers) refreshIntents(w http.ResponseWriter, r *http.Request) {
	err := h.deps.Intents.Refresh(r.Context())
	status := map[string]interface{}{
		"usingFallback": h.deps.Intents.UsingFallback(),
	}
	if err != nil {
		status["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": h.deps.Version,
	}
	if h.deps.NER != nil {
		status["ner"] = h.deps.NER.State().String()
	} else {
		status["ner"] = ner.StateUnavailable.String()
	}
	if h.deps.Intents != nil {
		status["intentsFallback"] = h.deps.Intents.UsingFallback()
	}
	writeJSON(w, http.StatusOK, status)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, stderrors.New(stderrors.ErrCodeInvalidInput, "invalid request body", err.Error(), false))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if stdErr, ok := err.(*stderrors.StandardError); ok {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": stdErr})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"message": err.Error()},
	})
}
