// Package connector provides the uniform database-connector contract for
// dbconnect: the Connector interface every engine implementation satisfies,
// the namespace and identifier resolution rules, the normalized result
// model, and the connector registry.
//
// Concrete engine implementations live in pkg/connectors/ subdirectories and
// register themselves in their init() functions.
package connector

import "context"

// Scope narrows an introspection call to one database and, for engines that
// model one, one schema. Empty fields fall back to the connector's active
// context.
type Scope struct {
	Database string
	Schema   string
}

// Column describes one table column with the type normalized to the common
// lower-cased vocabulary (any 64-bit integer variant contains "int64", any
// textual type contains "string"). Nullable and PrimaryKey are always set,
// regardless of how the engine reports them.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// TableDDL describes one table or view together with its defining DDL text.
// SchemaName is the empty string for engines with no schema level.
type TableDDL struct {
	TableName    string
	DatabaseName string
	SchemaName   string
	TableType    string
	Definition   string
	Identifier   string
}

// Table type tags used in TableDDL.
const (
	TableTypeTable            = "table"
	TableTypeView             = "view"
	TableTypeMaterializedView = "materialized_view"
)

// TableSample holds up to the requested number of rows from one table, in
// engine-returned order.
type TableSample struct {
	TableName string
	Rows      []map[string]any
}

// ConnStatus is the structured outcome of a connection test. A reachable but
// misconfigured target yields Success=false with a diagnostic message rather
// than an error.
type ConnStatus struct {
	Success bool
	Message string
}

// Connector is the uniform interface over heterogeneous SQL engines.
//
// A Connector instance owns exactly one underlying session, established
// lazily on first use. Instances are not safe for concurrent use; callers
// serialize access or use one Connector per unit of work. Close must not be
// invoked while another call is in flight.
type Connector interface {
	// Type returns the engine tag (e.g. "clickhouse", "redshift"), used only
	// for external reporting, never for internal branching.
	Type() string

	// Dialect returns the engine's declared quoting and namespace model.
	Dialect() *Dialect

	// TestConnection opens the session if needed and reports the outcome.
	TestConnection(ctx context.Context) ConnStatus

	// Close releases the underlying session. Idempotent; a second call is a
	// no-op.
	Close() error

	// SwitchContext changes the active default database and/or schema for
	// subsequent unqualified calls on this instance only. Empty arguments
	// leave the corresponding level unchanged.
	SwitchContext(database, schema string)

	// FullName renders a quoted, SQL-safe reference using this engine's
	// dialect.
	FullName(r Ref) string

	// Identifier renders an unquoted logical reference using this engine's
	// dialect.
	Identifier(r Ref) string

	// GetDatabases lists databases. With includeSys false, engine built-in
	// databases are filtered out. Returns an empty slice when nothing is
	// visible.
	GetDatabases(ctx context.Context, includeSys bool) ([]string, error)

	// GetTables lists base tables in the scope.
	GetTables(ctx context.Context, scope Scope) ([]string, error)

	// GetViews lists views in the scope.
	GetViews(ctx context.Context, scope Scope) ([]string, error)

	// GetTablesWithDDL returns the named tables with their defining DDL.
	// Tables that do not exist are omitted rather than failing the call;
	// with no names given, all tables in scope are returned.
	GetTablesWithDDL(ctx context.Context, scope Scope, tables []string) ([]TableDDL, error)

	// GetViewsWithDDL returns all views in scope with their definitions.
	GetViewsWithDDL(ctx context.Context, scope Scope) ([]TableDDL, error)

	// GetSchema returns the columns of one table in engine-reported order.
	GetSchema(ctx context.Context, scope Scope, table string) ([]Column, error)

	// GetSampleRows returns up to topN rows per named table, omitting tables
	// that do not exist.
	GetSampleRows(ctx context.Context, scope Scope, tables []string, topN int) ([]TableSample, error)

	// Execute runs a generic statement (typically SELECT) and returns the
	// payload in the requested encoding. All-or-nothing per statement; a
	// partial failure is never returned as a truncated success.
	Execute(ctx context.Context, q Query, format Format) (*Result, error)

	// ExecuteDDL runs a DDL statement. RowCount is RowCountUnknown unless
	// the engine reports one.
	ExecuteDDL(ctx context.Context, sql string) (*Result, error)

	// ExecuteInsert runs an INSERT and reports the affected row count.
	ExecuteInsert(ctx context.Context, sql string) (*Result, error)

	// ExecuteUpdate runs an UPDATE and reports the affected row count.
	ExecuteUpdate(ctx context.Context, sql string) (*Result, error)

	// ExecuteDelete runs a DELETE and reports the affected row count.
	ExecuteDelete(ctx context.Context, sql string) (*Result, error)
}

// SchemaNamespaced is the capability contract for engines that model a
// schema level between database and table. Connectors without the capability
// simply do not expose the call.
type SchemaNamespaced interface {
	// GetSchemas lists schemas in the active database. With includeSys
	// false, engine built-in schemas are filtered out.
	GetSchemas(ctx context.Context, includeSys bool) ([]string, error)
}

// MaterializedViewCapable is the capability contract for engines that
// support materialized views.
type MaterializedViewCapable interface {
	// GetMaterializedViews lists materialized views in the scope.
	GetMaterializedViews(ctx context.Context, scope Scope) ([]string, error)

	// GetMaterializedViewsWithDDL returns materialized views in scope with
	// their defining queries.
	GetMaterializedViewsWithDDL(ctx context.Context, scope Scope) ([]TableDDL, error)
}

// SupportsSchemas reports whether the connector declares the schema
// namespace capability.
func SupportsSchemas(c Connector) bool {
	_, ok := c.(SchemaNamespaced)
	return ok
}

// SupportsMaterializedViews reports whether the connector declares the
// materialized view capability.
func SupportsMaterializedViews(c Connector) bool {
	_, ok := c.(MaterializedViewCapable)
	return ok
}
