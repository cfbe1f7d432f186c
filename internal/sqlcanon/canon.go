// Package sqlcanon rewrites parsed DuckDB queries into a canonical shape so
// that queries differing only in aliasing, identifier case, redundant
// parentheses or the order of commutative operands compare as equal.
//
// Every rewrite is deterministic and idempotent, and none of them changes
// the rows a query returns.
package sqlcanon

import (
	"strings"

	"sql-eval/internal/duckdbsql"
)

// Canonical is a parsed query in canonical form together with its printed SQL.
type Canonical struct {
	Stmt *duckdbsql.SelectStmt
	SQL  string
}

// Canonicalize parses sql and normalizes the result. Parse failures are
// returned as *duckdbsql.ParseError.
func Canonicalize(sql string) (*Canonical, error) {
	stmt, err := duckdbsql.Parse(sql)
	if err != nil {
		return nil, err
	}
	Normalize(stmt)
	return &Canonical{Stmt: stmt, SQL: duckdbsql.Format(stmt)}, nil
}

// Normalize rewrites stmt in place.
func Normalize(stmt *duckdbsql.SelectStmt) {
	foldCase(stmt)
	n := &normalizer{}
	n.stmt(stmt, nil)
}

// foldCase lower-cases every identifier and function name and maps type
// names onto one spelling per type.
func foldCase(stmt *duckdbsql.SelectStmt) {
	duckdbsql.Walk(stmt, func(node duckdbsql.Node) bool {
		switch x := node.(type) {
		case *duckdbsql.ColumnRef:
			x.Schema = strings.ToLower(x.Schema)
			x.Table = strings.ToLower(x.Table)
			x.Column = strings.ToLower(x.Column)
		case *duckdbsql.StarExpr:
			x.Table = strings.ToLower(x.Table)
		case *duckdbsql.FuncCall:
			x.Name = strings.ToLower(x.Name)
		case *duckdbsql.CastExpr:
			x.TypeName = canonicalType(x.TypeName)
		case *duckdbsql.TableName:
			x.Catalog = strings.ToLower(x.Catalog)
			x.Schema = strings.ToLower(x.Schema)
			x.Name = strings.ToLower(x.Name)
			x.Alias = strings.ToLower(x.Alias)
		case *duckdbsql.DerivedTable:
			x.Alias = strings.ToLower(x.Alias)
		case *duckdbsql.FuncTable:
			x.Alias = strings.ToLower(x.Alias)
		case *duckdbsql.CTE:
			x.Name = strings.ToLower(x.Name)
			lowerAll(x.Columns)
		case *duckdbsql.SelectItem:
			x.Alias = strings.ToLower(x.Alias)
		case *duckdbsql.Join:
			lowerAll(x.Using)
		}
		return true
	})
}

func lowerAll(names []string) {
	for i, name := range names {
		names[i] = strings.ToLower(name)
	}
}

// typeSynonyms maps alternative type spellings to the name DuckDB reports.
var typeSynonyms = map[string]string{
	"INT":                      "INTEGER",
	"INT4":                     "INTEGER",
	"SIGNED":                   "INTEGER",
	"INT8":                     "BIGINT",
	"LONG":                     "BIGINT",
	"INT2":                     "SMALLINT",
	"SHORT":                    "SMALLINT",
	"INT1":                     "TINYINT",
	"TEXT":                     "VARCHAR",
	"STRING":                   "VARCHAR",
	"CHAR":                     "VARCHAR",
	"BPCHAR":                   "VARCHAR",
	"CHARACTER VARYING":        "VARCHAR",
	"REAL":                     "FLOAT",
	"FLOAT4":                   "FLOAT",
	"FLOAT8":                   "DOUBLE",
	"DOUBLE PRECISION":         "DOUBLE",
	"NUMERIC":                  "DECIMAL",
	"BOOL":                     "BOOLEAN",
	"LOGICAL":                  "BOOLEAN",
	"DATETIME":                 "TIMESTAMP",
	"TIMESTAMP WITH TIME ZONE": "TIMESTAMPTZ",
}

// canonicalType returns the canonical spelling of a type name, keeping any
// parameter list.
func canonicalType(name string) string {
	base, params := name, ""
	if i := strings.IndexByte(name, '('); i >= 0 {
		base, params = name[:i], name[i:]
	}
	if synonym, ok := typeSynonyms[base]; ok {
		base = synonym
	}
	return base + params
}
