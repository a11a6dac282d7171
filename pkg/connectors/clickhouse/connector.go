package clickhouse

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/leapstack-labs/dbconnect/pkg/connector"
)

// dialect declares ClickHouse's namespace model: a single database level
// above table (no schemas), backtick quoting.
var dialect = &connector.Dialect{
	Name:   "clickhouse",
	Quote:  "`",
	Levels: []connector.Level{connector.LevelDatabase},
	SystemDatabases: map[string]bool{
		"default":            true,
		"system":             true,
		"INFORMATION_SCHEMA": true,
		"information_schema": true,
	},
}

// defaults are the engine-specific values for fields the caller left unset.
var defaults = connector.Defaults{
	Port:           9000,
	SSL:            false,
	TimeoutSeconds: 30,
	Database:       "default",
}

// Connector implements connector.Connector for ClickHouse over the native
// protocol (clickhouse-go).
//
// Error mode: execution failures are returned as typed errors
// (*connector.QueryError, *connector.TimeoutError); Execute never returns a
// Result with Success=false.
type Connector struct {
	connector.Base
}

// New creates a ClickHouse connector. The session is established lazily on
// first use. The logger may be nil.
func New(cfg connector.Config, logger *slog.Logger) (*Connector, error) {
	cfg = cfg.WithDefaults(defaults)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Connector{
		Base: connector.NewBase(cfg, dialect, logger, openSession),
	}, nil
}

// openSession dials the native protocol and pings the target.
func openSession(ctx context.Context, cfg connector.Config) (*sql.DB, error) {
	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.Timeout(),
	}
	if cfg.UseSSL() {
		opts.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	db := clickhouse.OpenDB(opts)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &connector.ConnectionError{Host: cfg.Host, Err: err}
	}
	return db, nil
}

// Type returns the engine tag.
func (c *Connector) Type() string { return "clickhouse" }

// Dialect returns the declared quoting and namespace model.
func (c *Connector) Dialect() *connector.Dialect { return dialect }

// FullName renders a backtick-quoted reference, e.g. `mydb`.`mytable`.
func (c *Connector) FullName(r connector.Ref) string { return dialect.FullName(r) }

// Identifier renders an unquoted logical reference, e.g. mydb.mytable.
func (c *Connector) Identifier(r connector.Ref) string { return dialect.Identifier(r) }

// GetDatabases lists databases from system.databases.
func (c *Connector) GetDatabases(ctx context.Context, includeSys bool) ([]string, error) {
	_, rows, err := c.QueryMaps(ctx, "SELECT name FROM system.databases ORDER BY name")
	if err != nil {
		return []string{}, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name, _ := row["name"].(string)
		if !includeSys && dialect.SystemDatabases[name] {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// GetTables lists base tables in the scope from system.tables.
func (c *Connector) GetTables(ctx context.Context, scope connector.Scope) ([]string, error) {
	return c.listObjects(ctx, scope, "engine NOT IN ('View', 'MaterializedView')")
}

// GetViews lists views in the scope.
func (c *Connector) GetViews(ctx context.Context, scope connector.Scope) ([]string, error) {
	return c.listObjects(ctx, scope, "engine = 'View'")
}

// GetMaterializedViews lists materialized views in the scope.
func (c *Connector) GetMaterializedViews(ctx context.Context, scope connector.Scope) ([]string, error) {
	return c.listObjects(ctx, scope, "engine = 'MaterializedView'")
}

func (c *Connector) listObjects(ctx context.Context, scope connector.Scope, engineCond string) ([]string, error) {
	scope = c.ScopeOrActive(scope)
	query := fmt.Sprintf("SELECT name FROM system.tables WHERE database = ? AND %s ORDER BY name", engineCond)
	_, rows, err := c.QueryMaps(ctx, query, scope.Database)
	if err != nil {
		return []string{}, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetTablesWithDDL returns the named tables with their CREATE statements
// from system.tables. Unknown names are omitted; with no names given, all
// tables in scope are returned.
func (c *Connector) GetTablesWithDDL(ctx context.Context, scope connector.Scope, tables []string) ([]connector.TableDDL, error) {
	return c.objectsWithDDL(ctx, scope, "engine NOT IN ('View', 'MaterializedView')", connector.TableTypeTable, tables)
}

// GetViewsWithDDL returns all views in scope with their defining queries.
func (c *Connector) GetViewsWithDDL(ctx context.Context, scope connector.Scope) ([]connector.TableDDL, error) {
	return c.objectsWithDDL(ctx, scope, "engine = 'View'", connector.TableTypeView, nil)
}

// GetMaterializedViewsWithDDL returns materialized views in scope with
// their defining queries.
func (c *Connector) GetMaterializedViewsWithDDL(ctx context.Context, scope connector.Scope) ([]connector.TableDDL, error) {
	return c.objectsWithDDL(ctx, scope, "engine = 'MaterializedView'", connector.TableTypeMaterializedView, nil)
}

func (c *Connector) objectsWithDDL(ctx context.Context, scope connector.Scope, engineCond, tableType string, only []string) ([]connector.TableDDL, error) {
	scope = c.ScopeOrActive(scope)
	query := fmt.Sprintf("SELECT name, create_table_query FROM system.tables WHERE database = ? AND %s ORDER BY name", engineCond)
	_, rows, err := c.QueryMaps(ctx, query, scope.Database)
	if err != nil {
		return []connector.TableDDL{}, err
	}

	var wanted map[string]bool
	if len(only) > 0 {
		wanted = make(map[string]bool, len(only))
		for _, t := range only {
			wanted[t] = true
		}
	}

	out := make([]connector.TableDDL, 0, len(rows))
	for _, row := range rows {
		name, _ := row["name"].(string)
		if wanted != nil && !wanted[name] {
			continue
		}
		definition, _ := row["create_table_query"].(string)
		out = append(out, connector.TableDDL{
			TableName:    name,
			DatabaseName: scope.Database,
			SchemaName:   "",
			TableType:    tableType,
			Definition:   definition,
			Identifier:   dialect.Identifier(connector.Ref{Database: scope.Database, Table: name}),
		})
	}
	return out, nil
}

// GetSchema returns the columns of one table in engine-reported order, with
// types normalized to the common vocabulary and Nullable(...) unwrapped.
func (c *Connector) GetSchema(ctx context.Context, scope connector.Scope, table string) ([]connector.Column, error) {
	scope = c.ScopeOrActive(scope)
	query := "SELECT name, type, is_in_primary_key FROM system.columns WHERE database = ? AND table = ? ORDER BY position"
	_, rows, err := c.QueryMaps(ctx, query, scope.Database, table)
	if err != nil {
		return []connector.Column{}, err
	}

	cols := make([]connector.Column, 0, len(rows))
	for _, row := range rows {
		name, _ := row["name"].(string)
		rawType, _ := row["type"].(string)
		typ, nullable := normalizeType(rawType)
		cols = append(cols, connector.Column{
			Name:       name,
			Type:       typ,
			Nullable:   nullable,
			PrimaryKey: toBool(row["is_in_primary_key"]),
		})
	}
	return cols, nil
}

// GetSampleRows returns up to topN rows per named table, skipping tables
// that do not exist.
func (c *Connector) GetSampleRows(ctx context.Context, scope connector.Scope, tables []string, topN int) ([]connector.TableSample, error) {
	return c.SampleRows(ctx, scope, tables, topN)
}

// Execute runs a generic statement and encodes the result in the requested
// format. Failures are returned as typed errors.
func (c *Connector) Execute(ctx context.Context, q connector.Query, format connector.Format) (*connector.Result, error) {
	return c.RunQuery(ctx, q.SQL, format)
}

// ExecuteDDL runs a DDL statement. ClickHouse does not report row counts
// for DDL, so RowCount is always RowCountUnknown.
func (c *Connector) ExecuteDDL(ctx context.Context, ddl string) (*connector.Result, error) {
	if _, err := c.ExecAffected(ctx, ddl); err != nil {
		return nil, err
	}
	res := &connector.Result{Success: true, Format: connector.FormatList, RowCount: connector.RowCountUnknown}
	return res, nil
}

// ExecuteInsert runs an INSERT; the row count is the driver-reported number
// of written rows.
func (c *Connector) ExecuteInsert(ctx context.Context, stmt string) (*connector.Result, error) {
	return c.execDML(ctx, stmt)
}

// ExecuteUpdate runs an UPDATE (a lightweight mutation on ClickHouse).
func (c *Connector) ExecuteUpdate(ctx context.Context, stmt string) (*connector.Result, error) {
	return c.execDML(ctx, stmt)
}

// ExecuteDelete runs a DELETE (a lightweight mutation on ClickHouse).
func (c *Connector) ExecuteDelete(ctx context.Context, stmt string) (*connector.Result, error) {
	return c.execDML(ctx, stmt)
}

func (c *Connector) execDML(ctx context.Context, stmt string) (*connector.Result, error) {
	affected, err := c.ExecAffected(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return &connector.Result{Success: true, Format: connector.FormatList, RowCount: affected}, nil
}

// toBool normalizes the UInt8 flags ClickHouse system tables report.
func toBool(v any) bool {
	switch n := v.(type) {
	case bool:
		return n
	case int64:
		return n != 0
	case uint64:
		return n != 0
	case uint8:
		return n != 0
	case string:
		return n == "1" || n == "true"
	default:
		return false
	}
}

// Interface compliance, including declared capabilities.
var (
	_ connector.Connector               = (*Connector)(nil)
	_ connector.MaterializedViewCapable = (*Connector)(nil)
)
