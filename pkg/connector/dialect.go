package connector

import (
	"fmt"
	"strings"
)

// Level is one hierarchical scoping level an engine models above "table".
type Level int

const (
	// LevelDatabase is the outermost namespace level.
	LevelDatabase Level = iota
	// LevelSchema is the namespace level between database and table.
	LevelSchema
)

// Dialect describes an engine's identifier quoting convention and namespace
// model. Each connector package declares exactly one Dialect and validates
// it once at registration time, so level handling never varies per call.
type Dialect struct {
	// Name is the engine tag, used only for external reporting.
	Name string

	// Quote is the identifier quote character (` for ClickHouse-style
	// engines, " for warehouse-style engines).
	Quote string

	// Levels are the namespace levels the engine models, ordered outermost
	// first. Zero to two levels; a schema-supporting engine declares both
	// database and schema.
	Levels []Level

	// SystemDatabases are built-in databases hidden when include_sys is false.
	SystemDatabases map[string]bool

	// SystemSchemas are built-in schemas hidden when include_sys is false.
	SystemSchemas map[string]bool
}

// Validate checks the dialect declaration. Called once when the connector
// package registers itself, never per call.
func (d *Dialect) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dialect name is required")
	}
	if d.Quote == "" {
		return fmt.Errorf("dialect %s: quote character is required", d.Name)
	}
	if len(d.Levels) > 2 {
		return fmt.Errorf("dialect %s: at most two namespace levels are supported", d.Name)
	}
	seen := make(map[Level]bool, len(d.Levels))
	prev := Level(-1)
	for _, l := range d.Levels {
		if l != LevelDatabase && l != LevelSchema {
			return fmt.Errorf("dialect %s: unknown namespace level %d", d.Name, l)
		}
		if seen[l] {
			return fmt.Errorf("dialect %s: duplicate namespace level", d.Name)
		}
		if l <= prev {
			return fmt.Errorf("dialect %s: namespace levels must be ordered database before schema", d.Name)
		}
		seen[l] = true
		prev = l
	}
	if seen[LevelSchema] && !seen[LevelDatabase] {
		return fmt.Errorf("dialect %s: schema level requires a database level", d.Name)
	}
	return nil
}

// HasLevel reports whether the engine models the given namespace level.
func (d *Dialect) HasLevel(l Level) bool {
	for _, dl := range d.Levels {
		if dl == l {
			return true
		}
	}
	return false
}

// Ref is an unresolved reference to a table or view. Levels the engine does
// not model, or that are left empty, are omitted during resolution.
type Ref struct {
	Database string
	Schema   string
	Table    string
}

// segments returns the non-empty reference parts for the levels this
// dialect models, outermost first. Unsupported levels are dropped silently;
// the declaration-time Validate guarantees the drop rule is consistent.
func (d *Dialect) segments(r Ref) []string {
	parts := make([]string, 0, 3)
	if d.HasLevel(LevelDatabase) && r.Database != "" {
		parts = append(parts, r.Database)
	}
	if d.HasLevel(LevelSchema) && r.Schema != "" {
		parts = append(parts, r.Schema)
	}
	if r.Table != "" {
		parts = append(parts, r.Table)
	}
	return parts
}

// QuoteIdent quotes a single identifier segment, doubling any embedded
// quote characters.
func (d *Dialect) QuoteIdent(name string) string {
	escaped := strings.ReplaceAll(name, d.Quote, d.Quote+d.Quote)
	return d.Quote + escaped + d.Quote
}

// FullName renders a dot-joined, individually quoted reference suitable for
// inclusion in SQL text. Empty or unsupported levels are omitted; no empty
// quoted pairs are ever emitted. Pure function.
func (d *Dialect) FullName(r Ref) string {
	parts := d.segments(r)
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// Identifier renders a plain, unquoted dot-joined logical name for
// cataloguing and display, with the same level-omission rule as FullName.
func (d *Dialect) Identifier(r Ref) string {
	return strings.Join(d.segments(r), ".")
}
