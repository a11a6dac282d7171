package connector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "config",
			err:  &ConfigError{Field: "port", Reason: "must be between 0 and 65535"},
			want: "invalid configuration: port: must be between 0 and 65535",
		},
		{
			name: "connection",
			err:  &ConnectionError{Host: "ch.internal", Err: cause},
			want: "connection to ch.internal failed: boom",
		},
		{
			name: "query",
			err:  &QueryError{Stmt: "SELECT 1", Err: cause},
			want: "query failed: boom (statement: SELECT 1)",
		},
		{
			name: "timeout",
			err:  &TimeoutError{After: 30 * time.Second, Err: cause},
			want: "engine did not respond within 30s: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")

	for _, err := range []error{
		&ConnectionError{Host: "h", Err: cause},
		&QueryError{Stmt: "SELECT 1", Err: cause},
		&TimeoutError{After: time.Second, Err: cause},
	} {
		assert.ErrorIs(t, err, cause)
	}
}

func TestClassifyError(t *testing.T) {
	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := classifyError(fmt.Errorf("query: %w", context.DeadlineExceeded), "SELECT 1", 5*time.Second)

		var te *TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 5*time.Second, te.After)
		assert.True(t, IsTimeout(err))
	})

	t.Run("anything else becomes query error", func(t *testing.T) {
		err := classifyError(errors.New("syntax error"), "SELEC 1", 5*time.Second)

		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, "SELEC 1", qe.Stmt)
		assert.False(t, IsTimeout(err))
	})
}

func TestTruncateStmt(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateStmt(short))

	long := "SELECT " + strings.Repeat("x", 200)
	got := truncateStmt(long)
	assert.Len(t, got, stmtSnippetLen+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
