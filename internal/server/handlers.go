package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/aetherhq/prdgen/internal/llm"
	"github.com/aetherhq/prdgen/internal/pipeline"
	"github.com/aetherhq/prdgen/pkg/prd"
)

// GenerateRequest is the payload for starting a new generation run.
type GenerateRequest struct {
	Idea     string `json:"idea"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// GenerateResponse acknowledges a started run.
type GenerateResponse struct {
	RunID string `json:"run_id"`
}

// handleGenerate validates the request, persists the initial snapshot and
// kicks off the pipeline in the background. The response only carries the
// run ID; progress is observable via the store and the stream.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeAndValidate(s.validator, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	client, err := s.clientFor(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	runID := uuid.NewString()
	initial := prd.NewInitial(runID, body.Idea)
	if err := s.deps.Store.SaveSnapshot(r.Context(), initial); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	runner := pipeline.NewRunner(s.deps.Store, client, s.deps.Hub, s.deps.RunnerOpts)

	// The run proceeds independently of the request that started it; the
	// request context would cancel it as soon as the response is written.
	go runner.Run(context.Background(), initial)

	writeJSON(w, http.StatusCreated, GenerateResponse{RunID: runID})
}

// handleStatus returns the latest snapshot for a run.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")
	snap, err := s.deps.Store.GetSnapshot(r.Context(), runID)
	if err != nil {
		var perr *prd.Error
		if errors.As(err, &perr) && perr.Code == prd.ErrCodeNotFound {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "prdgen"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "PRD generation API",
		"health":  "/health",
	})
}

// clientFor builds the LLM client for a request, honoring per-request
// provider and model overrides.
func (s *Server) clientFor(req *GenerateRequest) (llm.Client, error) {
	cfg := s.deps.LLM
	if req.Provider != "" {
		cfg.Provider = req.Provider
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}
	switch cfg.Provider {
	case "mock":
		return llm.NewMockClient(), nil
	case "openai", "":
		return llm.NewOpenAIClient(cfg)
	}
	return nil, prd.NewErrorf(prd.ErrCodeValidation, "unknown provider %q", cfg.Provider)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	var perr *prd.Error
	if errors.As(err, &perr) {
		writeJSON(w, status, perr)
		return
	}
	writeJSON(w, status, map[string]string{"code": prd.ErrCodeInternal, "message": err.Error()})
}
