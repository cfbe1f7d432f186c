package docsgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSpec = `openapi: "3.0.3"
info:
  title: Test API
  version: "1.0"
  description: Scores things.
tags:
  - name: Runs
    description: Recorded | runs.
paths:
  /v1/runs/{id}:
    get:
      tags: [Runs]
      operationId: getRun
      summary: Return a run
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "404":
          description: Not found.
        "200":
          description: The run.
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Run"
  /v1/runs:
    get:
      tags: [Runs]
      operationId: listRuns
      parameters:
        - name: max_results
          in: query
          schema:
            type: integer
      responses:
        "200":
          description: Runs.
components:
  schemas:
    Run:
      type: object
      required: [id]
      properties:
        id:
          type: string
        items:
          type: array
          items:
            $ref: "#/components/schemas/Item"
        parse_policy:
          type: string
          enum: [strict, score-generated-as-miss]
    Item:
      type: integer
`

func loadTestDoc(t *testing.T) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(testSpec))
	require.NoError(t, err)
	return doc
}

func pageByPath(pages []Page) map[string]string {
	m := make(map[string]string, len(pages))
	for _, p := range pages {
		m[p.Path] = p.Content
	}
	return m
}

func TestRender(t *testing.T) {
	pages := pageByPath(Render(loadTestDoc(t)))
	require.Len(t, pages, 3)

	t.Run("index", func(t *testing.T) {
		index := pages["index.md"]
		assert.Contains(t, index, "# Test API\n\nScores things.")
		assert.Contains(t, index, "| [Runs](./endpoints/runs.md) | Recorded \\| runs. | 2 |")
	})

	t.Run("endpoints sorted by path", func(t *testing.T) {
		runs := pages[filepath.Join("endpoints", "runs.md")]
		list := "## `GET /v1/runs`"
		get := "## `GET /v1/runs/{id}`"
		require.Contains(t, runs, list)
		require.Contains(t, runs, get)
		assert.Less(t, strings.Index(runs, list), strings.Index(runs, get))
		assert.Contains(t, runs, "| `id` | path | `string` | `true` | - |")
		assert.Contains(t, runs, "| `max_results` | query | `integer` | `false` | - |")
		assert.Less(t, strings.Index(runs, "| `200` | The run. |"), strings.Index(runs, "| `404` | Not found. |"))
	})

	t.Run("schemas", func(t *testing.T) {
		schemas := pages["schemas.md"]
		assert.Contains(t, schemas, "| `id` | `string` | `true` | - |")
		assert.Contains(t, schemas, "| `items` | `array[Item]` | `false` | - |")
		assert.Contains(t, schemas, "One of `strict`, `score-generated-as-miss`.")
		assert.Contains(t, schemas, "## `Item`\n\nType: `integer`")
	})
}

func TestWrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "api")
	require.NoError(t, os.MkdirAll(out, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.md"), []byte("old"), 0o600))

	pages, err := Write(loadTestDoc(t), out)
	require.NoError(t, err)
	for _, p := range pages {
		data, err := os.ReadFile(filepath.Join(out, p.Path))
		require.NoError(t, err)
		assert.Equal(t, p.Content, string(data))
	}
	assert.NoFileExists(t, filepath.Join(out, "stale.md"))
}
