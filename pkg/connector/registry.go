package connector

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory builds a connector from a validated configuration. The logger may
// be nil; implementations substitute a discard logger.
type Factory func(cfg Config, logger *slog.Logger) (Connector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a connector factory to the registry under the given engine
// tag. Called by connector implementations in their init() functions; the
// core never discovers or loads connectors itself.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a connector factory by engine tag.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates a connector for the given engine tag. The logger parameter is
// passed to the connector constructor (nil uses a discard logger).
func New(name string, cfg Config, logger *slog.Logger) (Connector, error) {
	if name == "" {
		return nil, fmt.Errorf("connector type not specified")
	}
	factory, ok := Get(name)
	if !ok {
		return nil, &UnknownConnectorError{
			Type:      name,
			Available: ListConnectors(),
		}
	}
	return factory(cfg, logger)
}

// NewFromMap creates a connector from an unordered string-keyed mapping with
// the same field names as Config. Equivalent to FromMap followed by New.
func NewFromMap(name string, m map[string]any, logger *slog.Logger) (Connector, error) {
	cfg, err := FromMap(m)
	if err != nil {
		return nil, err
	}
	return New(name, cfg, logger)
}

// ListConnectors returns all registered engine tags (sorted).
func ListConnectors() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if an engine tag is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownConnectorError is returned when an unknown engine tag is requested.
type UnknownConnectorError struct {
	Type      string
	Available []string
}

func (e *UnknownConnectorError) Error() string {
	return fmt.Sprintf("unknown connector type %q\nAvailable connectors: %v\nHint: import the engine package for its side-effect registration", e.Type, e.Available)
}
