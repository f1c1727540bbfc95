package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/p-arndt/werkbank/internal/config"
	"github.com/p-arndt/werkbank/internal/provider"
	"github.com/p-arndt/werkbank/internal/relay"
)

type Server struct {
	cfg       *config.Config
	manager   ProjectService
	providers *provider.Registry
	relay     *relay.Relay
	logger    *slog.Logger
	mux       *http.ServeMux
}

func NewServer(cfg *config.Config, mgr ProjectService, providers *provider.Registry, rl *relay.Relay, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		manager:   mgr,
		providers: providers,
		relay:     rl,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.authMiddleware(s.requestIDMiddleware(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /v1/projects", s.handleCreateProject)
	s.mux.HandleFunc("GET /v1/projects", s.handleListProjects)
	s.mux.HandleFunc("GET /v1/projects/{id}", s.handleGetProject)
	s.mux.HandleFunc("DELETE /v1/projects/{id}", s.handleDeleteProject)

	s.mux.HandleFunc("POST /v1/projects/{id}/generate", s.handleGenerate)
	s.mux.HandleFunc("POST /v1/projects/{id}/generate/cancel", s.handleCancelGeneration)

	s.mux.HandleFunc("POST /v1/projects/{id}/preview/start", s.handleStartPreview)
	s.mux.HandleFunc("POST /v1/projects/{id}/preview/stop", s.handleStopPreview)
	s.mux.HandleFunc("GET /v1/projects/{id}/preview/status", s.handlePreviewStatus)
	s.mux.HandleFunc("GET /v1/projects/{id}/preview/logs", s.handlePreviewLogs)

	s.mux.HandleFunc("GET /v1/projects/{id}/events", s.handleEvents)
	s.mux.HandleFunc("GET /v1/providers", s.handleProviders)

	// Health check (no auth)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.providers.Status(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
