package redshift

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // Redshift speaks the postgres wire protocol
	"github.com/leapstack-labs/dbconnect/pkg/connector"
)

// dialect declares Redshift's namespace model: database and schema levels
// above table, double-quote quoting.
var dialect = &connector.Dialect{
	Name:   "redshift",
	Quote:  `"`,
	Levels: []connector.Level{connector.LevelDatabase, connector.LevelSchema},
	SystemDatabases: map[string]bool{
		"template0":    true,
		"template1":    true,
		"padb_harvest": true,
	},
	SystemSchemas: map[string]bool{
		"information_schema": true,
		"pg_catalog":         true,
		"pg_internal":        true,
		"catalog_history":    true,
	},
}

// defaults are the engine-specific values for fields the caller left unset.
// TLS is on by default for a cloud warehouse.
var defaults = connector.Defaults{
	Port:           5439,
	SSL:            true,
	TimeoutSeconds: 60,
	Database:       "dev",
	Schema:         "public",
}

// Connector implements connector.Connector for Amazon Redshift over the
// postgres wire protocol (pgx stdlib driver).
//
// Error mode: execution verbs report query-level failures as a Result with
// Success=false and Error populated, never as a returned error. Introspection
// calls return typed errors as usual.
type Connector struct {
	connector.Base
}

// New creates a Redshift connector. The session is established lazily on
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

// openSession opens a database/sql handle through pgx and pings the target.
func openSession(ctx context.Context, cfg connector.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return nil, &connector.ConnectionError{Host: cfg.Host, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &connector.ConnectionError{Host: cfg.Host, Err: err}
	}
	return db, nil
}

// buildDSN constructs a key=value connection string. The password is passed
// to the driver here and nowhere else.
func buildDSN(cfg connector.Config) string {
	sslmode := "disable"
	if cfg.UseSSL() {
		sslmode = "require"
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s connect_timeout=%d",
		cfg.Host, cfg.Port, cfg.Database, sslmode, cfg.TimeoutSeconds)
	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return dsn
}

// Type returns the engine tag.
func (c *Connector) Type() string { return "redshift" }

// Dialect returns the declared quoting and namespace model.
func (c *Connector) Dialect() *connector.Dialect { return dialect }

// FullName renders a double-quoted reference, e.g. "mydb"."myschema"."mytable".
func (c *Connector) FullName(r connector.Ref) string { return dialect.FullName(r) }

// Identifier renders an unquoted logical reference.
func (c *Connector) Identifier(r connector.Ref) string { return dialect.Identifier(r) }

// GetDatabases lists databases from pg_database.
func (c *Connector) GetDatabases(ctx context.Context, includeSys bool) ([]string, error) {
	query := "SELECT datname FROM pg_database WHERE datistemplate = false ORDER BY datname"
	_, rows, err := c.QueryMaps(ctx, query)
	if err != nil {
		return []string{}, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name, _ := row["datname"].(string)
		if !includeSys && dialect.SystemDatabases[name] {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// GetSchemas lists schemas in the active database from pg_namespace.
func (c *Connector) GetSchemas(ctx context.Context, includeSys bool) ([]string, error) {
	_, rows, err := c.QueryMaps(ctx, "SELECT nspname FROM pg_namespace ORDER BY nspname")
	if err != nil {
		return []string{}, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		name, _ := row["nspname"].(string)
		if !includeSys && (dialect.SystemSchemas[name] || strings.HasPrefix(name, "pg_")) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// GetTables lists base tables in the scope.
func (c *Connector) GetTables(ctx context.Context, scope connector.Scope) ([]string, error) {
	scope = c.ScopeOrActive(scope)
	query := "SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name"
	return c.listNames(ctx, query, "table_name", scope.Schema)
}

// GetViews lists views in the scope.
func (c *Connector) GetViews(ctx context.Context, scope connector.Scope) ([]string, error) {
	scope = c.ScopeOrActive(scope)
	query := "SELECT table_name FROM information_schema.views WHERE table_schema = $1 ORDER BY table_name"
	return c.listNames(ctx, query, "table_name", scope.Schema)
}

// GetMaterializedViews lists materialized views in the scope from
// stv_mv_info.
func (c *Connector) GetMaterializedViews(ctx context.Context, scope connector.Scope) ([]string, error) {
	scope = c.ScopeOrActive(scope)
	query := "SELECT name FROM stv_mv_info WHERE schema = $1 ORDER BY name"
	return c.listNames(ctx, query, "name", scope.Schema)
}

func (c *Connector) listNames(ctx context.Context, query, col string, args ...any) ([]string, error) {
	_, rows, err := c.QueryMaps(ctx, query, args...)
	if err != nil {
		return []string{}, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row[col].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// GetTablesWithDDL returns the named tables with a CREATE TABLE statement
// synthesized from catalog metadata (Redshift has no SHOW CREATE TABLE).
// Unknown names are omitted; with no names given, all tables in scope are
// returned.
func (c *Connector) GetTablesWithDDL(ctx context.Context, scope connector.Scope, tables []string) ([]connector.TableDDL, error) {
	scope = c.ScopeOrActive(scope)
	if len(tables) == 0 {
		all, err := c.GetTables(ctx, scope)
		if err != nil {
			return []connector.TableDDL{}, err
		}
		tables = all
	}

	out := make([]connector.TableDDL, 0, len(tables))
	for _, tbl := range tables {
		cols, err := c.tableColumns(ctx, scope, tbl)
		if err != nil {
			return []connector.TableDDL{}, err
		}
		if len(cols) == 0 {
			continue
		}
		full := dialect.FullName(connector.Ref{Schema: scope.Schema, Table: tbl})
		out = append(out, connector.TableDDL{
			TableName:    tbl,
			DatabaseName: scope.Database,
			SchemaName:   scope.Schema,
			TableType:    connector.TableTypeTable,
			Definition:   synthesizeDDL(full, cols),
			Identifier:   dialect.Identifier(connector.Ref{Database: scope.Database, Schema: scope.Schema, Table: tbl}),
		})
	}
	return out, nil
}

// GetViewsWithDDL returns all views in scope with their definitions from
// pg_views.
func (c *Connector) GetViewsWithDDL(ctx context.Context, scope connector.Scope) ([]connector.TableDDL, error) {
	scope = c.ScopeOrActive(scope)
	query := "SELECT viewname, definition FROM pg_views WHERE schemaname = $1 ORDER BY viewname"
	_, rows, err := c.QueryMaps(ctx, query, scope.Schema)
	if err != nil {
		return []connector.TableDDL{}, err
	}
	out := make([]connector.TableDDL, 0, len(rows))
	for _, row := range rows {
		name, _ := row["viewname"].(string)
		definition, _ := row["definition"].(string)
		out = append(out, c.makeDDL(scope, name, connector.TableTypeView, definition))
	}
	return out, nil
}

// GetMaterializedViewsWithDDL returns materialized views in scope with
// their defining queries, resolved through pg_views.
func (c *Connector) GetMaterializedViewsWithDDL(ctx context.Context, scope connector.Scope) ([]connector.TableDDL, error) {
	scope = c.ScopeOrActive(scope)
	names, err := c.GetMaterializedViews(ctx, scope)
	if err != nil {
		return []connector.TableDDL{}, err
	}

	query := "SELECT viewname, definition FROM pg_views WHERE schemaname = $1"
	_, rows, err := c.QueryMaps(ctx, query, scope.Schema)
	if err != nil {
		return []connector.TableDDL{}, err
	}
	definitions := make(map[string]string, len(rows))
	for _, row := range rows {
		name, _ := row["viewname"].(string)
		definition, _ := row["definition"].(string)
		definitions[name] = definition
	}

	out := make([]connector.TableDDL, 0, len(names))
	for _, name := range names {
		out = append(out, c.makeDDL(scope, name, connector.TableTypeMaterializedView, definitions[name]))
	}
	return out, nil
}

func (c *Connector) makeDDL(scope connector.Scope, name, tableType, definition string) connector.TableDDL {
	return connector.TableDDL{
		TableName:    name,
		DatabaseName: scope.Database,
		SchemaName:   scope.Schema,
		TableType:    tableType,
		Definition:   definition,
		Identifier:   dialect.Identifier(connector.Ref{Database: scope.Database, Schema: scope.Schema, Table: name}),
	}
}

// rawColumn is a catalog row before type normalization.
type rawColumn struct {
	name       string
	dataType   string
	nullable   bool
	primaryKey bool
}

// tableColumns reads column metadata and primary-key membership for one
// table. Returns an empty slice when the table does not exist.
func (c *Connector) tableColumns(ctx context.Context, scope connector.Scope, table string) ([]rawColumn, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`
	_, rows, err := c.QueryMaps(ctx, query, scope.Schema, table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	pkQuery := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1 AND tc.table_name = $2`
	_, pkRows, err := c.QueryMaps(ctx, pkQuery, scope.Schema, table)
	if err != nil {
		return nil, err
	}
	pk := make(map[string]bool, len(pkRows))
	for _, row := range pkRows {
		if name, ok := row["column_name"].(string); ok {
			pk[name] = true
		}
	}

	cols := make([]rawColumn, 0, len(rows))
	for _, row := range rows {
		name, _ := row["column_name"].(string)
		dataType, _ := row["data_type"].(string)
		isNullable, _ := row["is_nullable"].(string)
		cols = append(cols, rawColumn{
			name:       name,
			dataType:   dataType,
			nullable:   isNullable == "YES",
			primaryKey: pk[name],
		})
	}
	return cols, nil
}

// GetSchema returns the columns of one table in engine-reported order, with
// types normalized to the common vocabulary.
func (c *Connector) GetSchema(ctx context.Context, scope connector.Scope, table string) ([]connector.Column, error) {
	scope = c.ScopeOrActive(scope)
	raw, err := c.tableColumns(ctx, scope, table)
	if err != nil {
		return []connector.Column{}, err
	}
	cols := make([]connector.Column, 0, len(raw))
	for _, rc := range raw {
		cols = append(cols, connector.Column{
			Name:       rc.name,
			Type:       normalizeType(rc.dataType),
			Nullable:   rc.nullable,
			PrimaryKey: rc.primaryKey,
		})
	}
	return cols, nil
}

// GetSampleRows returns up to topN rows per named table, skipping tables
// that do not exist.
func (c *Connector) GetSampleRows(ctx context.Context, scope connector.Scope, tables []string, topN int) ([]connector.TableSample, error) {
	return c.SampleRows(ctx, scope, tables, topN)
}

// Execute runs a generic statement. Query-level failures come back as a
// Result with Success=false and Error populated (warehouse mode), never as a
// returned error.
func (c *Connector) Execute(ctx context.Context, q connector.Query, format connector.Format) (*connector.Result, error) {
	res, err := c.RunQuery(ctx, q.SQL, format)
	if err != nil {
		return connector.FailureResult(format, err), nil
	}
	return res, nil
}

// ExecuteDDL runs a DDL statement. RowCount is RowCountUnknown; Redshift
// does not report counts for DDL.
func (c *Connector) ExecuteDDL(ctx context.Context, ddl string) (*connector.Result, error) {
	if _, err := c.ExecAffected(ctx, ddl); err != nil {
		return connector.FailureResult(connector.FormatList, err), nil
	}
	return &connector.Result{Success: true, Format: connector.FormatList, RowCount: connector.RowCountUnknown}, nil
}

// ExecuteInsert runs an INSERT and reports the affected row count.
func (c *Connector) ExecuteInsert(ctx context.Context, stmt string) (*connector.Result, error) {
	return c.execDML(ctx, stmt)
}

// ExecuteUpdate runs an UPDATE and reports the affected row count.
func (c *Connector) ExecuteUpdate(ctx context.Context, stmt string) (*connector.Result, error) {
	return c.execDML(ctx, stmt)
}

// ExecuteDelete runs a DELETE and reports the affected row count.
func (c *Connector) ExecuteDelete(ctx context.Context, stmt string) (*connector.Result, error) {
	return c.execDML(ctx, stmt)
}

func (c *Connector) execDML(ctx context.Context, stmt string) (*connector.Result, error) {
	affected, err := c.ExecAffected(ctx, stmt)
	if err != nil {
		return connector.FailureResult(connector.FormatList, err), nil
	}
	return &connector.Result{Success: true, Format: connector.FormatList, RowCount: affected}, nil
}

// Interface compliance, including declared capabilities.
var (
	_ connector.Connector               = (*Connector)(nil)
	_ connector.SchemaNamespaced        = (*Connector)(nil)
	_ connector.MaterializedViewCapable = (*Connector)(nil)
)
