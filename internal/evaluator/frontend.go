// Package evaluator scores one generated query against its reference.
package evaluator

import (
	"strings"

	"sql-eval/internal/duckdbsql"
	"sql-eval/internal/sqlcanon"
	"sql-eval/internal/treediff"
)

// Frontend is the SQL capability the evaluator depends on: parsing with
// normalization, tokenizing and tree conversion.
type Frontend interface {
	Canonicalize(sql string) (*sqlcanon.Canonical, error)
	// Tokenize returns the lower-cased texts of the lexical tokens of sql.
	Tokenize(sql string) ([]string, error)
	Tree(c *sqlcanon.Canonical) *treediff.Node
}

// duckdbFrontend implements Frontend with the DuckDB grammar.
type duckdbFrontend struct{}

// NewFrontend returns the DuckDB-dialect front-end.
func NewFrontend() Frontend {
	return duckdbFrontend{}
}

func (duckdbFrontend) Canonicalize(sql string) (*sqlcanon.Canonical, error) {
	return sqlcanon.Canonicalize(sql)
}

func (duckdbFrontend) Tokenize(sql string) ([]string, error) {
	tokens, err := duckdbsql.Tokenize(sql)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = strings.ToLower(tok.Literal)
	}
	return out, nil
}

func (duckdbFrontend) Tree(c *sqlcanon.Canonical) *treediff.Node {
	return sqlcanon.ToTree(c.Stmt)
}
