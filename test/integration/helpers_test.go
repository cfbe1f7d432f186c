//go:build integration

// Package integration runs the evaluation API end to end against a real
// SQLite run ledger.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sql-eval/internal/api"
	internaldb "sql-eval/internal/db"
	"sql-eval/internal/db/repository"
	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/middleware"
	"sql-eval/internal/service/evaluation"
)

// testEnv bundles the in-process server and the ledger behind it.
type testEnv struct {
	Server *httptest.Server
	Ledger *internaldb.Ledger
}

type serverOpts struct {
	Policy    domain.ParsePolicy
	MaxBatch  int
	RateLimit middleware.RateLimitConfig
}

// setupServer wires the evaluator, the evaluation service, a temporary
// ledger and the real router into an httptest server.
func setupServer(t *testing.T, opts serverOpts) *testEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ledger, err := internaldb.OpenLedger(ctx, filepath.Join(t.TempDir(), "ledger.sqlite"))
	require.NoError(t, err, "open ledger")
	t.Cleanup(func() { _ = ledger.Close() })

	if opts.Policy == "" {
		opts.Policy = domain.ParsePolicyStrict
	}
	logger := slog.New(slog.DiscardHandler)
	ev := evaluator.New(evaluator.NewFrontend(), opts.Policy, logger)
	handler := api.NewHandler(api.Deps{
		Evaluator: ev,
		Evaluations: evaluation.NewService(evaluation.Deps{
			Evaluator: ev,
			Runs:      repository.NewRunRepo(ledger.Write, ledger.Read),
			Logger:    logger,
			Workers:   2,
		}),
		MaxBatch: opts.MaxBatch,
		Record:   true,
		Logger:   logger,
	})
	router := api.NewRouter(ctx, handler, api.RouterConfig{RateLimit: opts.RateLimit, Logger: logger})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{Server: srv, Ledger: ledger}
}

// doRequest sends method to url with body encoded as JSON when non-nil.
func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeJSON decodes and closes the response body.
func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
