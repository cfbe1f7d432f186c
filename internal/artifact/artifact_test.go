package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql-eval/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadGenerated(t *testing.T) {
	path := writeFile(t, "gen.json", `[
		{"question": "count users", "generated_query": "SELECT COUNT(*) FROM users"},
		{"question": "nothing", "generated_query": ""}
	]`)

	records, err := LoadGenerated(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "count users", records[0].Question)
	assert.Equal(t, "SELECT COUNT(*) FROM users", records[0].GeneratedQuery)
	assert.Empty(t, records[1].GeneratedQuery)
}

func TestLoadReference(t *testing.T) {
	path := writeFile(t, "ref.json", `[{"question": "count users", "query": "SELECT COUNT(*) FROM users"}]`)

	records, err := LoadReference(path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ReferenceRecord{{Question: "count users", Query: "SELECT COUNT(*) FROM users"}}, records)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		checkFn func(t *testing.T, err error)
	}{
		{
			name: "malformed json",
			path: func(t *testing.T) string { return writeFile(t, "bad.json", `[{"question": `) },
			checkFn: func(t *testing.T, err error) {
				var verr *domain.ValidationError
				assert.ErrorAs(t, err, &verr)
			},
		},
		{
			name: "object instead of array",
			path: func(t *testing.T) string { return writeFile(t, "obj.json", `{"question": "q"}`) },
			checkFn: func(t *testing.T, err error) {
				var verr *domain.ValidationError
				assert.ErrorAs(t, err, &verr)
			},
		},
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
			checkFn: func(t *testing.T, err error) {
				var nerr *domain.NotFoundError
				assert.ErrorAs(t, err, &nerr)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadGenerated(tc.path(t))
			require.Error(t, err)
			tc.checkFn(t, err)
		})
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	results := []domain.EvaluationResult{{
		Question:       "count users",
		GeneratedQuery: "SELECT COUNT(*) FROM users",
		ReferenceQuery: "SELECT COUNT(*) FROM users",
		ASTDistance:    0,
		TokenCosine:    1,
	}}
	agg := domain.AggregateMetrics{ASTDistanceMean: 0, TokenCosineMean: 1}

	require.NoError(t, Write(dir, results, agg))

	data, err := os.ReadFile(filepath.Join(dir, ResultsFile))
	require.NoError(t, err)
	var got []domain.EvaluationResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, results, got)
	assert.Contains(t, string(data), "\n    \"question\": \"count users\"")

	data, err = os.ReadFile(filepath.Join(dir, MetricsFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ast_distance_mean": 0, "token_cosine_mean": 1}`, string(data))
	assert.Contains(t, string(data), "\n  \"ast_distance_mean\": 0")
}

func TestWrite_EmptyResultsIsArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, nil, domain.AggregateMetrics{}))

	data, err := os.ReadFile(filepath.Join(dir, ResultsFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
