// Package server exposes the NLU pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"agentic-nlu/internal/common/config"
	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/models"
	"agentic-nlu/internal/nlu/ner"
)

// Classifier is the tiered classification entrypoint.
type Classifier interface {
	Classify(ctx context.Context, text, language string, history []string) *models.ClassificationResult
}

// Extractor is the entity extraction entrypoint.
type Extractor interface {
	Extract(ctx context.Context, text string) (*models.ExtractedEntities, error)
	ExtractAndResolve(ctx context.Context, text string) (*models.ResolvedEntities, error)
}

// IntentStore is the definition CRUD surface.
type IntentStore interface {
	List(ctx context.Context) ([]models.IntentDefinition, error)
	Get(ctx context.Context, name string) (*models.IntentDefinition, error)
	Create(ctx context.Context, def *models.IntentDefinition) (*models.IntentDefinition, error)
	Update(ctx context.Context, def *models.IntentDefinition) (*models.IntentDefinition, error)
	Delete(ctx context.Context, name string) error
}

// IntentMatcher is the pattern-matching tier with its refresh control.
type IntentMatcher interface {
	Match(text string) models.IntentMatch
	Refresh(ctx context.Context) error
	UsingFallback() bool
}

// NERHealth reports the availability of the NER tier for /health.
type NERHealth interface {
	State() ner.State
}

// Dependencies collects everything the handlers need. IntentStore and
// NER may be nil when the respective backend is not configured.
type Dependencies struct {
	Classifier  Classifier
	Extractor   Extractor
	IntentStore IntentStore
	Intents     IntentMatcher
	NER         NERHealth
	Version     string
}

// Server wraps the HTTP listener around the NLU handlers.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func New(cfg *config.ServerConfig, deps *Dependencies, log logger.Logger) *Server {
	h := &handlers{deps: deps, logger: log.With(map[string]interface{}{"component": "http"})}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware(h.logger))
	registerRoutes(router, h)

	readTimeout := time.Duration(cfg.ReadTimeout) * time.Second
	writeTimeout := time.Duration(cfg.WriteTimeout) * time.Second
	if readTimeout == 0 {
		readTimeout = 15 * time.Second
	}
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger: h.logger,
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
