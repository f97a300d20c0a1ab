package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sheetq/internal/queryir"
	"github.com/roach88/sheetq/internal/querysql"
)

// DBConn is a connection backed by a private in-memory SQLite database.
type DBConn struct {
	db *sql.DB
	wb *Workbook

	mu     sync.Mutex
	tables map[string][]string // Table.Key() -> column names
}

// Open creates an in-memory database over a workbook.
//
// The pool is pinned to a single connection: every connection to
// ":memory:" is a separate database, so a second one would not see the
// tables already loaded.
func Open(ctx context.Context, wb *Workbook) (*DBConn, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DBConn{
		db:     db,
		wb:     wb,
		tables: make(map[string][]string),
	}, nil
}

// Execute loads the statement's table if needed and runs the statement.
func (c *DBConn) Execute(ctx context.Context, st querysql.Statement) (Cursor, error) {
	if _, err := c.ensureTable(ctx, st.Table); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, st.SQL, st.Params...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("read columns: %w", err)
	}
	return &rowsCursor{rows: rows, cols: cols}, nil
}

// Columns returns the column names of a worksheet view, loading it if needed.
func (c *DBConn) Columns(ctx context.Context, t queryir.Table) ([]string, error) {
	cols, err := c.ensureTable(ctx, t)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), cols...), nil
}

// Sheets returns the worksheet names in workbook order.
func (c *DBConn) Sheets() []string {
	return c.wb.Names()
}

// Close closes the database. Loaded tables are discarded.
func (c *DBConn) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// ensureTable creates the SQLite table for a worksheet view on first use.
func (c *DBConn) ensureTable(ctx context.Context, t queryir.Table) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := t.Key()
	if cols, ok := c.tables[key]; ok {
		return cols, nil
	}

	sheet, ok := c.wb.Sheet(t.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, t.Name)
	}

	cols, records, err := layout(t, view(sheet.Rows, t.Range))
	if err != nil {
		return nil, err
	}
	if err := c.createTable(ctx, key, cols, records); err != nil {
		return nil, fmt.Errorf("load worksheet %s: %w", t.Name, err)
	}

	c.tables[key] = cols
	return cols, nil
}

// createTable creates an untyped table and inserts the records in one
// transaction. Columns carry no declared type so each value keeps the
// storage class inferValue chose.
func (c *DBConn) createTable(ctx context.Context, key string, cols []string, records [][]string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = querysql.QuoteIdent(col)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", querysql.QuoteIdent(key), strings.Join(quoted, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	if len(records) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", querysql.QuoteIdent(key), placeholders)
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		args := make([]any, len(cols))
		for i, record := range records {
			for j := range args {
				args[j] = inferValue(record[j])
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert row %d: %w", i+1, err)
			}
		}
	}

	return tx.Commit()
}

// rowsCursor adapts *sql.Rows to Cursor.
type rowsCursor struct {
	rows *sql.Rows
	cols []string
	vals []any
	err  error
}

func (c *rowsCursor) Columns() []string {
	return c.cols
}

func (c *rowsCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}

	vals := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = fmt.Errorf("scan row: %w", err)
		return false
	}
	for i, v := range vals {
		if b, ok := v.([]byte); ok {
			vals[i] = string(b)
		}
	}
	c.vals = vals
	return true
}

func (c *rowsCursor) Values() []any {
	return c.vals
}

func (c *rowsCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *rowsCursor) Close() error {
	return c.rows.Close()
}
