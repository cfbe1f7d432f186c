//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql-eval/internal/api"
	"sql-eval/internal/domain"
	"sql-eval/internal/middleware"
)

func batch() api.EvaluateRequest {
	return api.EvaluateRequest{
		Generated: []domain.GeneratedRecord{
			{Question: "count users", GeneratedQuery: "select count(*) from users"},
			{Question: "active users", GeneratedQuery: "SELECT id FROM users"},
		},
		Reference: []domain.ReferenceRecord{
			{Question: "count users", Query: "SELECT COUNT(*) FROM users"},
			{Question: "active users", Query: "SELECT id FROM users WHERE active"},
		},
	}
}

// TestHTTP_EvaluateAndRuns records a batch through the API and reads it back
// from the ledger.
func TestHTTP_EvaluateAndRuns(t *testing.T) {
	env := setupServer(t, serverOpts{})

	var runID string

	type step struct {
		name string
		fn   func(t *testing.T)
	}

	steps := []step{
		{"healthz", func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, env.Server.URL+"/healthz", nil)
			var body map[string]string
			decodeJSON(t, resp, &body)
			assert.Equal(t, "ok", body["status"])
		}},

		{"evaluate_records_run", func(t *testing.T) {
			resp := doRequest(t, http.MethodPost, env.Server.URL+"/v1/evaluate", batch())
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var result api.EvaluateResponse
			decodeJSON(t, resp, &result)
			require.Len(t, result.Results, 2)
			assert.Zero(t, result.Truncated)
			assert.NotEmpty(t, result.RunID)

			assert.Equal(t, "count users", result.Results[0].Question)
			assert.InDelta(t, 0.0, result.Results[0].ASTDistance, 1e-9)
			assert.Equal(t, 1.0, result.Results[0].TokenCosine)
			assert.Greater(t, result.Results[1].ASTDistance, 0.0)
			assert.Less(t, result.Results[1].TokenCosine, 1.0)

			wantMean := (result.Results[0].ASTDistance + result.Results[1].ASTDistance) / 2
			assert.InDelta(t, wantMean, result.Metrics.ASTDistanceMean, 1e-9)
			runID = result.RunID
		}},

		{"list_runs", func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, env.Server.URL+"/v1/runs", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var result api.ListRunsResponse
			decodeJSON(t, resp, &result)
			require.Len(t, result.Runs, 1)
			assert.Equal(t, 1, result.Total)
			assert.Equal(t, runID, result.Runs[0].ID)
			assert.Equal(t, 2, result.Runs[0].Pairs)
			assert.Equal(t, string(domain.ParsePolicyStrict), result.Runs[0].ParsePolicy)
		}},

		{"get_run", func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, env.Server.URL+"/v1/runs/"+runID, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var result api.RunDetail
			decodeJSON(t, resp, &result)
			assert.Equal(t, runID, result.Run.ID)
			require.Len(t, result.Items, 2)
			assert.Equal(t, 0, result.Items[0].Position)
			assert.Equal(t, "active users", result.Items[1].Question)
		}},

		{"get_unknown_run_404", func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, env.Server.URL+"/v1/runs/does-not-exist", nil)
			defer resp.Body.Close() //nolint:errcheck
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		}},

		{"paginate_runs", func(t *testing.T) {
			resp := doRequest(t, http.MethodPost, env.Server.URL+"/v1/evaluate", batch())
			require.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close() //nolint:errcheck

			resp = doRequest(t, http.MethodGet, env.Server.URL+"/v1/runs?max_results=1", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var first api.ListRunsResponse
			decodeJSON(t, resp, &first)
			require.Len(t, first.Runs, 1)
			assert.Equal(t, 2, first.Total)
			require.NotEmpty(t, first.NextPageToken)

			resp = doRequest(t, http.MethodGet, env.Server.URL+"/v1/runs?max_results=1&page_token="+first.NextPageToken, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var second api.ListRunsResponse
			decodeJSON(t, resp, &second)
			require.Len(t, second.Runs, 1)
			assert.Empty(t, second.NextPageToken)
			assert.NotEqual(t, first.Runs[0].ID, second.Runs[0].ID)
		}},
	}

	for _, s := range steps {
		if !t.Run(s.name, s.fn) {
			t.FailNow()
		}
	}
}

func TestHTTP_EvaluateErrors(t *testing.T) {
	env := setupServer(t, serverOpts{MaxBatch: 2})

	type errorBody struct {
		Code     int    `json:"code"`
		Message  string `json:"message"`
		Side     string `json:"side"`
		Position *int   `json:"position"`
		Index    *int   `json:"index"`
	}

	t.Run("parse_error_names_side", func(t *testing.T) {
		req := batch()
		req.Generated[1].GeneratedQuery = "SELEC 1"
		resp := doRequest(t, http.MethodPost, env.Server.URL+"/v1/evaluate", req)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorBody
		decodeJSON(t, resp, &body)
		assert.Equal(t, "generated", body.Side)
		assert.NotNil(t, body.Position)
	})

	t.Run("question_mismatch_names_index", func(t *testing.T) {
		req := batch()
		req.Reference[1].Question = "inactive users"
		resp := doRequest(t, http.MethodPost, env.Server.URL+"/v1/evaluate", req)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorBody
		decodeJSON(t, resp, &body)
		require.NotNil(t, body.Index)
		assert.Equal(t, 1, *body.Index)
	})

	t.Run("batch_over_limit", func(t *testing.T) {
		req := batch()
		req.Generated = append(req.Generated, domain.GeneratedRecord{Question: "extra", GeneratedQuery: "SELECT 1"})
		resp := doRequest(t, http.MethodPost, env.Server.URL+"/v1/evaluate", req)
		defer resp.Body.Close() //nolint:errcheck
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty_batch", func(t *testing.T) {
		resp := doRequest(t, http.MethodPost, env.Server.URL+"/v1/evaluate", api.EvaluateRequest{})
		defer resp.Body.Close() //nolint:errcheck
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("failed_batches_are_not_recorded", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, env.Server.URL+"/v1/runs", nil)
		var result api.ListRunsResponse
		decodeJSON(t, resp, &result)
		assert.Empty(t, result.Runs)
	})
}

func TestHTTP_ScoreAsMissPolicy(t *testing.T) {
	env := setupServer(t, serverOpts{Policy: domain.ParsePolicyScoreAsMiss})

	req := batch()
	req.Generated[1].GeneratedQuery = "SELEC 1"
	resp := doRequest(t, http.MethodPost, env.Server.URL+"/v1/evaluate", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.EvaluateResponse
	decodeJSON(t, resp, &result)
	require.Len(t, result.Results, 2)
	assert.InDelta(t, 1.0, result.Results[1].ASTDistance, 1e-9)
	assert.InDelta(t, 0.0, result.Results[1].TokenCosine, 1e-9)
}

func TestHTTP_RateLimit(t *testing.T) {
	env := setupServer(t, serverOpts{RateLimit: middleware.RateLimitConfig{RequestsPerSecond: 0.01, Burst: 2}})

	statuses := make([]int, 0, 3)
	for i := range 3 {
		resp := doRequest(t, http.MethodGet, env.Server.URL+"/healthz", nil)
		resp.Body.Close() //nolint:errcheck
		statuses = append(statuses, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader), fmt.Sprintf("request %d", i))
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
