// Package server exposes the narrow HTTP surface over the pipeline engine:
// starting runs, polling status, streaming snapshots, and health checks.
package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/aetherhq/prdgen/internal/llm"
	"github.com/aetherhq/prdgen/internal/pipeline"
	"github.com/aetherhq/prdgen/internal/state"
	"github.com/aetherhq/prdgen/internal/streaming"
)

// Deps holds the collaborators the server wires into each run.
type Deps struct {
	Store      state.Store
	Hub        streaming.SnapshotHub
	LLM        llm.Settings
	RunnerOpts pipeline.Options
	Logger     *slog.Logger
}

// Server routes HTTP requests onto the pipeline engine.
type Server struct {
	deps      Deps
	validator *requestValidator
}

// New creates a Server with the generate-request schema pre-compiled.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	validator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	return &Server{deps: deps, validator: validator}, nil
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/generate_prd", s.handleGenerate)
	mux.HandleFunc("GET /api/v1/status/{run_id}", s.handleStatus)
	mux.HandleFunc("GET /api/v1/stream/{run_id}", s.handleStream)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return mux
}
