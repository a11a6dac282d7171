package connector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileYAML = `
profiles:
  analytics:
    type: clickhouse
    host: ch.internal
    port: 9000
    username: reader
    password: secret
  warehouse:
    type: redshift
    host: rs.internal
    username: etl
    database: dev
    schema: staging
    ssl: true
`

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProfiles(t *testing.T) {
	profiles, err := LoadProfiles(writeProfileFile(t, profileYAML))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	ch := profiles["analytics"]
	assert.Equal(t, "clickhouse", ch.Type)
	assert.Equal(t, "ch.internal", ch.Config.Host)
	assert.Equal(t, 9000, ch.Config.Port)
	assert.Equal(t, "reader", ch.Config.Username)

	rs := profiles["warehouse"]
	assert.Equal(t, "redshift", rs.Type)
	assert.Equal(t, "staging", rs.Config.Schema)
	assert.True(t, rs.Config.UseSSL())
}

func TestLoadProfiles_MissingFile(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profiles")
}

func TestLoadProfiles_Empty(t *testing.T) {
	profiles, err := LoadProfiles(writeProfileFile(t, "profiles:\n"))
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestProfilesFromMap(t *testing.T) {
	profiles, err := ProfilesFromMap(map[string]any{
		"analytics": map[string]any{
			"type":     "clickhouse",
			"host":     "ch.internal",
			"username": "reader",
		},
	})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "clickhouse", profiles["analytics"].Type)
	assert.Equal(t, "ch.internal", profiles["analytics"].Config.Host)
}

func TestProfileConnect_UnknownType(t *testing.T) {
	p := Profile{Type: "no-such-engine", Config: Config{Host: "h", Username: "u"}}
	_, err := p.Connect()

	var unknown *UnknownConnectorError
	require.ErrorAs(t, err, &unknown)
}
