package duckdbsql

import "fmt"

// ParseError reports a lexical or syntactic failure at a byte offset of the
// input.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Message)
}
