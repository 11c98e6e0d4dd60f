package datesniff

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/nao1215/datesniff/domain/model"
)

// SQLiteFrame is a Frame over one table of a SQLite database. Nothing is
// cached: every call queries the database, and Values streams rows as the
// evaluator consumes them.
//
// The database handle is usually opened with the modernc.org/sqlite driver:
//
//	db, err := sql.Open("sqlite", "app.db")
type SQLiteFrame struct {
	db    *sql.DB
	table string
}

// NewSQLiteFrame creates a frame over table in db.
func NewSQLiteFrame(db *sql.DB, table string) *SQLiteFrame {
	return &SQLiteFrame{db: db, table: table}
}

// SQLiteFrames returns a frame for every user table in db, ordered by name.
func SQLiteFrames(ctx context.Context, db *sql.DB) ([]*SQLiteFrame, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var frames []*SQLiteFrame
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		frames = append(frames, NewSQLiteFrame(db, name))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return frames, nil
}

// Name returns the table name.
func (f *SQLiteFrame) Name() string {
	return f.table
}

// sqliteColumn is one row of pragma_table_info
type sqliteColumn struct {
	name     string
	declType string
}

// tableInfo reads the column names and declared types of the table
func (f *SQLiteFrame) tableInfo(ctx context.Context) ([]sqliteColumn, error) {
	rows, err := f.db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?)", f.table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table info for %s: %w", f.table, err)
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var c sqliteColumn
		if err := rows.Scan(&c.name, &c.declType); err != nil {
			return nil, fmt.Errorf("failed to scan table info for %s: %w", f.table, err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table info for %s: %w", f.table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, f.table)
	}
	return columns, nil
}

// Columns returns the column names in declaration order.
func (f *SQLiteFrame) Columns(ctx context.Context) ([]string, error) {
	info, err := f.tableInfo(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(info))
	for i, c := range info {
		names[i] = c.name
	}
	return names, nil
}

// DType maps the declared column type to a dtype by SQLite affinity.
func (f *SQLiteFrame) DType(ctx context.Context, column string) (model.DType, error) {
	info, err := f.tableInfo(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range info {
		if c.name == column {
			return dtypeFromDeclType(c.declType), nil
		}
	}
	return "", fmt.Errorf("%w: %s.%s", model.ErrColumnNotFound, f.table, column)
}

// Values yields the non-NULL values of column in table scan order.
func (f *SQLiteFrame) Values(ctx context.Context, column string) iter.Seq2[model.Value, error] {
	return func(yield func(model.Value, error) bool) {
		query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL",
			quoteIdentifier(column), quoteIdentifier(f.table), quoteIdentifier(column))
		rows, err := f.db.QueryContext(ctx, query)
		if err != nil {
			yield(model.Null(), fmt.Errorf("failed to query %s.%s: %w", f.table, column, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var v any
			if err := rows.Scan(&v); err != nil {
				yield(model.Null(), fmt.Errorf("failed to scan %s.%s: %w", f.table, column, err))
				return
			}
			if !yield(model.NewValue(v), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Null(), fmt.Errorf("failed to read %s.%s: %w", f.table, column, err))
		}
	}
}

// dtypeFromDeclType applies the SQLite column affinity rules to a declared
// type, then narrows NUMERIC-affinity names that carry a bool or date meaning.
func dtypeFromDeclType(declType string) model.DType {
	t := strings.ToUpper(declType)
	switch {
	case strings.Contains(t, "INT"):
		return model.DTypeInt64
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return model.DTypeObject
	case t == "", strings.Contains(t, "BLOB"):
		return model.DTypeObject
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return model.DTypeFloat64
	case strings.Contains(t, "BOOL"):
		return model.DTypeBool
	case strings.Contains(t, "DATE"), strings.Contains(t, "TIME"):
		return model.DTypeDatetime
	default:
		return model.DTypeObject
	}
}

// quoteIdentifier quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
