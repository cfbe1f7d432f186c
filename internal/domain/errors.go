// Package domain defines core types and errors for SQL evaluation runs.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ParseError indicates that one side of a pair is not a parseable query.
type ParseError struct {
	Side    Side
	Pos     int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s query: parse error at position %d: %s", e.Side, e.Pos, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// QuestionMismatchError indicates that a generated record and a reference
// record at the same position belong to different questions. Index is -1
// when the position is unknown.
type QuestionMismatchError struct {
	Index     int
	Generated string
	Reference string
}

func (e *QuestionMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("question mismatch: generated %q, reference %q", e.Generated, e.Reference)
	}
	return fmt.Sprintf("question mismatch at index %d: generated %q, reference %q", e.Index, e.Generated, e.Reference)
}

// NoResultsError indicates an aggregate was requested over zero results.
type NoResultsError struct {
	Message string
}

func (e *NoResultsError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrNoResults creates a NoResultsError with a formatted message.
func ErrNoResults(format string, args ...interface{}) *NoResultsError {
	return &NoResultsError{Message: fmt.Sprintf(format, args...)}
}
