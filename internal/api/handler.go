// Package api provides the HTTP handlers of the evaluation API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/service/evaluation"
)

// DefaultMaxBatch bounds the number of records per side in POST /v1/evaluate
// when Deps.MaxBatch is unset.
const DefaultMaxBatch = 1000

const maxBodyBytes = 32 << 20

// Handler serves the evaluation API.
type Handler struct {
	evaluator   *evaluator.Evaluator
	evaluations *evaluation.Service
	maxBatch    int
	record      bool
	logger      *slog.Logger
}

// Deps holds dependencies for Handler.
type Deps struct {
	Evaluator   *evaluator.Evaluator
	Evaluations *evaluation.Service
	MaxBatch    int
	// Record stores every evaluated batch in the run ledger.
	Record bool
	Logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBatch := deps.MaxBatch
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	return &Handler{
		evaluator:   deps.Evaluator,
		evaluations: deps.Evaluations,
		maxBatch:    maxBatch,
		record:      deps.Record,
		logger:      logger,
	}
}

// Routes mounts the API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/openapi.json", h.OpenAPI)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/score", h.Score)
		r.Post("/evaluate", h.Evaluate)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{id}", h.GetRun)
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Score evaluates one pair.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.evaluator.EvaluatePair(
		domain.GeneratedRecord{Question: req.Question, GeneratedQuery: req.GeneratedQuery},
		domain.ReferenceRecord{Question: req.Question, Query: req.ReferenceQuery},
	)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ScoreResponse{ASTDistance: result.ASTDistance, TokenCosine: result.TokenCosine})
}

// Evaluate evaluates a batch of pairs.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if n := max(len(req.Generated), len(req.Reference)); n > h.maxBatch {
		h.writeError(w, r, domain.ErrValidation("batch of %d records exceeds the limit of %d", n, h.maxBatch))
		return
	}

	outcome, err := h.evaluations.EvaluateBatch(r.Context(), req.Generated, req.Reference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := EvaluateResponse{Results: outcome.Results, Metrics: outcome.Aggregate, Truncated: outcome.Truncated}
	if h.record {
		run, err := h.evaluations.Record(r.Context(), evaluation.RunInfo{}, outcome)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp.RunID = run.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRuns lists recorded runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	page := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if v := r.URL.Query().Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, r, domain.ErrValidation("max_results must be a positive integer"))
			return
		}
		page.Size = n
	}

	runs, err := h.evaluations.ListRuns(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := ListRunsResponse{Runs: make([]Run, len(runs.Items)), Total: runs.Total, NextPageToken: runs.NextPageToken}
	for i, run := range runs.Items {
		resp.Runs[i] = RunFromDomain(run)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetRun returns a recorded run and its items.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, items, err := h.evaluations.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RunDetail{Run: RunFromDomain(*run), Items: RunItemsFromDomain(items)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return domain.ErrValidation("invalid request body: %v", err)
	}
	return nil
}
