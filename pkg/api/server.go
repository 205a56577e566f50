// Package api exposes avrolog containers over HTTP: list and create
// containers, read their records, and append new records using the sync
// marker the catalog registered at write time.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the chi router for the given server.
func Router(server *Server, metrics *Metrics, apiKey string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API key authentication middleware for protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(apiKey)))

		// Health check
		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))

		// Container operations
		r.Get("/containers", metrics.InstrumentHandler("GET", "/api/v1/containers", server.handleListContainers))
		r.Post("/containers", metrics.InstrumentHandler("POST", "/api/v1/containers", server.handleCreateContainer))
		r.Get("/containers/{name}/records", metrics.InstrumentHandler("GET", "/api/v1/containers/{name}/records", server.handleReadRecords))
		r.Post("/containers/{name}/records", metrics.InstrumentHandler("POST", "/api/v1/containers/{name}/records", server.handleAppendRecords))
		r.Get("/containers/{name}/stats", metrics.InstrumentHandler("GET", "/api/v1/containers/{name}/stats", server.handleStats))
	})

	return r
}

// StartServer starts the HTTP server with all routes configured and blocks
// until it fails.
func StartServer(svc ContainerService, config ServerConfig) error {
	metrics := NewMetrics()
	server := NewServer(svc, config, metrics)
	r := Router(server, metrics, config.APIKey)

	addr := fmt.Sprintf(":%d", config.Port)
	fmt.Printf("Starting avrolog REST API server on %s\n", addr)
	fmt.Printf("Metrics available at: http://localhost:%d/metrics\n", config.Port)
	return http.ListenAndServe(addr, r)
}
