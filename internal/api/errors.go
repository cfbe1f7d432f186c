package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"sql-eval/internal/domain"
	"sql-eval/internal/middleware"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var parse *domain.ParseError
	var mismatch *domain.QuestionMismatchError
	var noResults *domain.NoResultsError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &parse), errors.As(err, &mismatch):
		return http.StatusBadRequest
	case errors.As(err, &noResults):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Side      string `json:"side,omitempty"`
	Position  *int   `json:"position,omitempty"`
	Index     *int   `json:"index,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatusFromDomainError(err)
	body := errorBody{Code: code, Message: err.Error(), RequestID: middleware.RequestIDFromContext(r.Context())}

	var parse *domain.ParseError
	if errors.As(err, &parse) {
		body.Side = string(parse.Side)
		body.Position = &parse.Pos
	}
	var mismatch *domain.QuestionMismatchError
	if errors.As(err, &mismatch) && mismatch.Index >= 0 {
		body.Index = &mismatch.Index
	}
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", body.RequestID)
		body.Message = "internal error"
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
