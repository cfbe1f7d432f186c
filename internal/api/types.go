package api

import (
	"time"

	"sql-eval/internal/domain"
)

// ScoreRequest is the body of POST /v1/score. Question is optional.
type ScoreRequest struct {
	Question       string `json:"question"`
	GeneratedQuery string `json:"generated_query"`
	ReferenceQuery string `json:"reference_query"`
}

// ScoreResponse is the body returned by POST /v1/score.
type ScoreResponse struct {
	ASTDistance float64 `json:"ast_distance"`
	TokenCosine float64 `json:"token_cosine"`
}

// EvaluateRequest is the body of POST /v1/evaluate.
type EvaluateRequest struct {
	Generated []domain.GeneratedRecord `json:"generated"`
	Reference []domain.ReferenceRecord `json:"reference"`
}

// EvaluateResponse is the body returned by POST /v1/evaluate. RunID is set
// when the run was recorded in the ledger.
type EvaluateResponse struct {
	Results   []domain.EvaluationResult `json:"results"`
	Metrics   domain.AggregateMetrics   `json:"metrics"`
	Truncated int                       `json:"truncated"`
	RunID     string                    `json:"run_id,omitempty"`
}

// Run is the API view of a recorded run.
type Run struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	GeneratedPath   string    `json:"generated_path,omitempty"`
	ReferencePath   string    `json:"reference_path,omitempty"`
	Pairs           int       `json:"pairs"`
	Truncated       int       `json:"truncated"`
	ASTDistanceMean float64   `json:"ast_distance_mean"`
	TokenCosineMean float64   `json:"token_cosine_mean"`
	ParsePolicy     string    `json:"parse_policy"`
}

// RunItem is the API view of one pair of a recorded run.
type RunItem struct {
	Position    int     `json:"position"`
	Question    string  `json:"question"`
	ASTDistance float64 `json:"ast_distance"`
	TokenCosine float64 `json:"token_cosine"`
}

// ListRunsResponse is the body returned by GET /v1/runs.
type ListRunsResponse struct {
	Runs          []Run  `json:"runs"`
	Total         int    `json:"total"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

// RunDetail is the body returned by GET /v1/runs/{id}.
type RunDetail struct {
	Run   Run       `json:"run"`
	Items []RunItem `json:"items"`
}

// RunFromDomain converts a ledger run to its API view.
func RunFromDomain(r domain.Run) Run {
	return Run{
		ID:              r.ID,
		CreatedAt:       r.CreatedAt,
		GeneratedPath:   r.GeneratedPath,
		ReferencePath:   r.ReferencePath,
		Pairs:           r.Pairs,
		Truncated:       r.Truncated,
		ASTDistanceMean: r.ASTDistanceMean,
		TokenCosineMean: r.TokenCosineMean,
		ParsePolicy:     string(r.ParsePolicy),
	}
}

// RunItemsFromDomain converts ledger items to their API view.
func RunItemsFromDomain(items []domain.RunItem) []RunItem {
	out := make([]RunItem, len(items))
	for i, item := range items {
		out[i] = RunItem(item)
	}
	return out
}
