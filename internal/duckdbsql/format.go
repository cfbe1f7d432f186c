package duckdbsql

import (
	"strings"
)

// Format prints a statement back to SQL on a single line.
//
// Keywords are upper-case, identifiers are quoted only when they would not
// survive a round trip bare, and parentheses are emitted from operator
// precedence rather than copied from the source, so Parse(Format(s)) yields
// a tree equal to s apart from ParenExpr nodes.
func Format(stmt *SelectStmt) string {
	f := &formatter{}
	f.formatSelectStmt(stmt)
	return strings.TrimSpace(f.buf.String())
}

// FormatExpr prints an expression back to SQL.
func FormatExpr(expr Expr) string {
	f := &formatter{}
	f.formatExpr(expr)
	return strings.TrimSpace(f.buf.String())
}

// formatter is a simple SQL string builder. No indentation or pretty-printing.
type formatter struct {
	buf strings.Builder
}

func (f *formatter) write(s string) {
	f.buf.WriteString(s)
}

func (f *formatter) space() {
	f.buf.WriteByte(' ')
}

// QuoteIdent returns name as it has to appear in SQL text: bare when it is a
// plain lower-case word that is not reserved, double-quoted otherwise.
func QuoteIdent(name string) string {
	if isPlainIdent(name) && !IsReserved(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isPlainIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_', c >= 0x80:
		case (c >= '0' && c <= '9') || c == '$':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (f *formatter) writeIdent(s string) {
	f.write(QuoteIdent(s))
}

// writeQualified writes dot-separated name parts, skipping empty leading parts.
func (f *formatter) writeQualified(parts ...string) {
	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if !first {
			f.write(".")
		}
		f.writeIdent(part)
		first = false
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// commaSep writes items separated by ", ".
func (f *formatter) commaSep(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		if i > 0 {
			f.write(", ")
		}
		fn(i)
	}
}
