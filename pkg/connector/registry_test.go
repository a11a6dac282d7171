package connector

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConnector is a minimal Connector used to exercise the registry.
type stubConnector struct {
	Connector
	cfg Config
}

func (s *stubConnector) Type() string { return "stub" }

func stubFactory(cfg Config, _ *slog.Logger) (Connector, error) {
	return &stubConnector{cfg: cfg}, nil
}

func TestRegister(t *testing.T) {
	Register("stub", stubFactory)

	assert.True(t, IsRegistered("stub"), "stub should be registered after Register()")

	factory, ok := Get("stub")
	assert.True(t, ok, "Get(stub) should return true after Register()")
	assert.NotNil(t, factory, "Get(stub) should return non-nil factory")
}

func TestIsRegistered(t *testing.T) {
	Register("stub", stubFactory)

	tests := []struct {
		name     string
		tag      string
		expected bool
	}{
		{"stub registered", "stub", true},
		{"unknown not registered", "unknown_db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRegistered(tt.tag), "IsRegistered(%q)", tt.tag)
		})
	}
}

func TestListConnectors(t *testing.T) {
	Register("stub", stubFactory)
	assert.Contains(t, ListConnectors(), "stub")
}

func TestNew_Success(t *testing.T) {
	Register("stub", stubFactory)

	c, err := New("stub", Config{Host: "h", Username: "u"}, nil)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "stub", c.Type())
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New("unknown_connector", Config{}, nil)
	require.Error(t, err)

	var unknownErr *UnknownConnectorError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "unknown_connector", unknownErr.Type)
}

func TestNew_EmptyType(t *testing.T) {
	_, err := New("", Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "connector type not specified", err.Error())
}

func TestNewFromMap(t *testing.T) {
	Register("stub", stubFactory)

	c, err := NewFromMap("stub", map[string]any{
		"host":     "localhost",
		"username": "root",
		"port":     9000,
	}, nil)
	require.NoError(t, err)

	stub, ok := c.(*stubConnector)
	require.True(t, ok)
	assert.Equal(t, "localhost", stub.cfg.Host)
	assert.Equal(t, 9000, stub.cfg.Port)
}

func TestNewFromMap_BadConfig(t *testing.T) {
	Register("stub", stubFactory)

	_, err := NewFromMap("stub", map[string]any{"port": "nope"}, nil)
	require.Error(t, err)
}

func TestUnknownConnectorError_Error(t *testing.T) {
	err := &UnknownConnectorError{
		Type:      "fake_db",
		Available: []string{"clickhouse", "redshift"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db")
	assert.Contains(t, msg, "clickhouse")
}

func TestCapabilityChecks(t *testing.T) {
	var c Connector = &stubConnector{}
	assert.False(t, SupportsSchemas(c), "stub declares no schema capability")
	assert.False(t, SupportsMaterializedViews(c), "stub declares no materialized view capability")
}
