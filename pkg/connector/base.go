package connector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// OpenFunc establishes the underlying engine session. Implementations ping
// the target before returning so failures surface at open time.
type OpenFunc func(ctx context.Context, cfg Config) (*sql.DB, error)

// Base provides the database/sql plumbing shared by connector
// implementations: lazy session establishment, per-call timeouts, generic
// row scanning, DML row counting, and sampling. Embed it in concrete
// connectors.
//
// Base is not safe for concurrent use; the owning Connector documents the
// same precondition.
type Base struct {
	DB     *sql.DB
	Cfg    Config
	Dial   *Dialect
	Logger *slog.Logger

	// ID identifies this connector instance in logs.
	ID string

	// Open establishes the session on first use.
	Open OpenFunc

	// ActiveDatabase and ActiveSchema are the current defaults for
	// unqualified calls, seeded from Cfg and changed by SwitchContext.
	// Cfg itself stays immutable.
	ActiveDatabase string
	ActiveSchema   string
}

// NewBase seeds a Base from a validated config. The logger may be nil.
func NewBase(cfg Config, d *Dialect, logger *slog.Logger, open OpenFunc) Base {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	return Base{
		Cfg:            cfg,
		Dial:           d,
		Logger:         logger.With(slog.String("connector_id", id)),
		ID:             id,
		Open:           open,
		ActiveDatabase: cfg.Database,
		ActiveSchema:   cfg.Schema,
	}
}

// ensure opens the underlying session on first use.
func (b *Base) ensure(ctx context.Context) (*sql.DB, error) {
	if b.DB != nil {
		return b.DB, nil
	}
	b.Logger.Debug("opening session",
		slog.String("engine", b.Dial.Name),
		slog.String("host", b.Cfg.Host))
	db, err := b.Open(ctx, b.Cfg)
	if err != nil {
		return nil, err
	}
	b.DB = db
	return db, nil
}

// Close releases the underlying session. Safe to call multiple times; calls
// after the first are no-ops.
func (b *Base) Close() error {
	if b.DB == nil {
		return nil
	}
	b.Logger.Debug("closing session", slog.String("engine", b.Dial.Name))
	db := b.DB
	b.DB = nil
	return db.Close()
}

// IsConnected reports whether the underlying session is established.
func (b *Base) IsConnected() bool {
	return b.DB != nil
}

// SwitchContext changes the active default database and/or schema for this
// instance. Empty arguments leave the corresponding level unchanged.
func (b *Base) SwitchContext(database, schema string) {
	if database != "" {
		b.ActiveDatabase = database
	}
	if schema != "" {
		b.ActiveSchema = schema
	}
}

// ScopeOrActive fills empty scope levels from the active context.
func (b *Base) ScopeOrActive(s Scope) Scope {
	if s.Database == "" {
		s.Database = b.ActiveDatabase
	}
	if s.Schema == "" {
		s.Schema = b.ActiveSchema
	}
	return s
}

// TestConnection opens the session if needed and reports a structured
// outcome. It never returns an error for a reachable but misconfigured
// target.
func (b *Base) TestConnection(ctx context.Context) ConnStatus {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	db, err := b.ensure(ctx)
	if err != nil {
		return ConnStatus{Success: false, Message: err.Error()}
	}
	if err := db.PingContext(ctx); err != nil {
		return ConnStatus{Success: false, Message: fmt.Sprintf("ping to %s failed: %v", b.Cfg.Host, err)}
	}
	return ConnStatus{
		Success: true,
		Message: fmt.Sprintf("connected to %s at %s:%d", b.Dial.Name, b.Cfg.Host, b.Cfg.Port),
	}
}

// withTimeout bounds a call by the configured timeout.
func (b *Base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t := b.Cfg.Timeout(); t > 0 {
		return context.WithTimeout(ctx, t)
	}
	return ctx, func() {}
}

// QueryMaps runs a query and scans every row into a field-name-to-value
// map, returning the engine-reported column order alongside. Byte slices
// are converted to strings so textual encodings stay readable.
func (b *Base) QueryMaps(ctx context.Context, sqlStr string, args ...any) ([]string, []map[string]any, error) {
	db, err := b.ensure(ctx)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, nil, classifyError(err, sqlStr, b.Cfg.Timeout())
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, classifyError(err, sqlStr, b.Cfg.Timeout())
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, classifyError(err, sqlStr, b.Cfg.Timeout())
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if bs, ok := values[i].([]byte); ok {
				row[col] = string(bs)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, classifyError(err, sqlStr, b.Cfg.Timeout())
	}
	return cols, out, nil
}

// RunQuery executes a query and encodes the rows in the requested format.
func (b *Base) RunQuery(ctx context.Context, sqlStr string, format Format) (*Result, error) {
	cols, rows, err := b.QueryMaps(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	return encodeRows(cols, rows, format)
}

// ExecAffected executes a statement that returns no rows and reports the
// affected row count, or RowCountUnknown when the driver cannot report one.
func (b *Base) ExecAffected(ctx context.Context, sqlStr string) (int64, error) {
	db, err := b.ensure(ctx)
	if err != nil {
		return RowCountUnknown, err
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	res, err := db.ExecContext(ctx, sqlStr)
	if err != nil {
		return RowCountUnknown, classifyError(err, sqlStr, b.Cfg.Timeout())
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return RowCountUnknown, nil
	}
	return affected, nil
}

// SampleRows returns up to topN rows per named table in engine order.
// Tables that cannot be queried (typically because they do not exist) are
// omitted rather than failing the whole call.
func (b *Base) SampleRows(ctx context.Context, scope Scope, tables []string, topN int) ([]TableSample, error) {
	scope = b.ScopeOrActive(scope)
	samples := make([]TableSample, 0, len(tables))
	for _, tbl := range tables {
		full := b.Dial.FullName(Ref{Database: scope.Database, Schema: scope.Schema, Table: tbl})
		query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", full, topN)
		_, rows, err := b.QueryMaps(ctx, query)
		if err != nil {
			b.Logger.Debug("skipping sample for unreadable table",
				slog.String("table", tbl), slog.String("error", err.Error()))
			continue
		}
		samples = append(samples, TableSample{TableName: tbl, Rows: rows})
	}
	return samples, nil
}
