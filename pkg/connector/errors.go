package connector

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ConfigError is returned when connection parameters are missing or out of
// domain. Raised at construction time, before any connection is opened.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// ConnectionError is returned when the target engine cannot be reached or
// authentication fails. The message never contains credentials.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is returned when the engine rejects a statement (malformed SQL,
// reference to a non-existent object). Stmt holds a truncated snippet of the
// offending statement for diagnostics.
type QueryError struct {
	Stmt string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v (statement: %s)", e.Err, e.Stmt)
}

func (e *QueryError) Unwrap() error { return e.Err }

// TimeoutError is returned when the engine did not respond within the
// configured timeout.
type TimeoutError struct {
	After time.Duration
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("engine did not respond within %s: %v", e.After, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// classifyError maps a raw driver error to the connector error taxonomy.
func classifyError(err error, stmt string, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{After: timeout, Err: err}
	}
	return &QueryError{Stmt: truncateStmt(stmt), Err: err}
}

const stmtSnippetLen = 120

// truncateStmt shortens a statement for inclusion in error messages.
func truncateStmt(stmt string) string {
	if len(stmt) <= stmtSnippetLen {
		return stmt
	}
	return stmt[:stmtSnippetLen] + "..."
}
