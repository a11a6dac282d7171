package connector

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Config holds the connection parameters for a database connector.
// A Config is immutable once handed to a connector; the connector owns it
// exclusively for its lifetime.
type Config struct {
	// Host is the engine hostname. Required.
	Host string `mapstructure:"host"`

	// Port is the engine port. Zero takes the engine-specific default.
	Port int `mapstructure:"port"`

	// Username for authentication. Required.
	Username string `mapstructure:"username"`

	// Password for authentication. Never included in error messages.
	Password string `mapstructure:"password"`

	// Database is the default database for unqualified references.
	Database string `mapstructure:"database"`

	// Schema is the default schema, for engines that model one.
	Schema string `mapstructure:"schema"`

	// SSL enables TLS. Nil takes the engine-specific default
	// (on for cloud warehouses, off for local analytical engines).
	SSL *bool `mapstructure:"ssl"`

	// TimeoutSeconds bounds each underlying call. Zero takes the
	// engine-specific default.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// Options contains additional driver-specific options.
	Options map[string]string `mapstructure:"options"`
}

// FromMap builds a Config from an unordered string-keyed mapping using the
// same field names as the struct tags. Construction from a map is equivalent
// to constructing the struct directly.
func FromMap(m map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(m); err != nil {
		return Config{}, &ConfigError{Field: "config", Reason: err.Error()}
	}
	return cfg, nil
}

// Defaults holds the engine-specific values applied to fields the caller
// left unset.
type Defaults struct {
	Port           int
	SSL            bool
	TimeoutSeconds int
	Database       string
	Schema         string
}

// WithDefaults returns a copy of the config with unset fields filled from
// the engine defaults. The receiver is not modified.
func (c Config) WithDefaults(d Defaults) Config {
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.SSL == nil {
		ssl := d.SSL
		c.SSL = &ssl
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.Database == "" {
		c.Database = d.Database
	}
	if c.Schema == "" {
		c.Schema = d.Schema
	}
	return c
}

// Validate checks required fields and value domains. It has no side effects
// and does not open a connection.
func (c Config) Validate() error {
	if c.Host == "" {
		return &ConfigError{Field: "host", Reason: "is required"}
	}
	if c.Username == "" {
		return &ConfigError{Field: "username", Reason: "is required"}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &ConfigError{Field: "port", Reason: fmt.Sprintf("%d is out of range", c.Port)}
	}
	if c.TimeoutSeconds < 0 {
		return &ConfigError{Field: "timeout_seconds", Reason: "must not be negative"}
	}
	return nil
}

// UseSSL reports whether TLS is enabled, treating an unset flag as off.
// Connectors apply their own default via WithDefaults before reading this.
func (c Config) UseSSL() bool {
	return c.SSL != nil && *c.SSL
}

// Timeout returns the per-call timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
