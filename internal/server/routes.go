package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (pipeline progress events)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Pipeline
	mux.HandleFunc("/api/timeline", s.app.TimelineHandler.ProcessHandler) // POST - run the pipeline
	mux.HandleFunc("/api/taxonomy", s.app.TimelineHandler.TaxonomyHandler)

	// API routes - Persisted runs
	mux.HandleFunc("/api/runs", s.app.RunHandler.ListHandler)
	mux.HandleFunc("/api/runs/", s.app.RunHandler.RunRoutes) // GET/DELETE /{id}

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}
