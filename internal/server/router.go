package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerRoutes(router *mux.Router, h *handlers) {
	v1 := router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/classify", h.classify).Methods(http.MethodPost)
	v1.HandleFunc("/extract", h.extract).Methods(http.MethodPost)
	v1.HandleFunc("/extract/resolve", h.extractResolve).Methods(http.MethodPost)

	v1.HandleFunc("/intents", h.listIntents).Methods(http.MethodGet)
	v1.HandleFunc("/intents", h.createIntent).Methods(http.MethodPost)
	v1.HandleFunc("/intents/match", h.matchIntent).Methods(http.MethodPost)
	v1.HandleFunc("/intents/refresh", h.refreshIntents).Methods(http.MethodPost)
	v1.HandleFunc("/intents/{name}", h.getIntent).Methods(http.MethodGet)
	v1.HandleFunc("/intents/{name}", h.updateIntent).Methods(http.MethodPut)
	v1.HandleFunc("/intents/{name}", h.deleteIntent).Methods(http.MethodDelete)

	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}
