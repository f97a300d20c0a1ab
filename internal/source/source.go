// Package source provides the tabular data sources queries run against.
//
// A Source opens connections; a connection exposes every worksheet of a
// workbook as a SQL table. Tables are materialized lazily into an
// in-memory SQLite database the first time a query names them, one table
// per worksheet view (sheet name, cell range, header mode).
package source

import (
	"context"
	"errors"
	"strings"

	"github.com/roach88/sheetq/internal/queryir"
	"github.com/roach88/sheetq/internal/querysql"
)

// ErrTableNotFound is wrapped by errors reporting a worksheet the
// workbook does not contain. The wrapping error text names the worksheet.
var ErrTableNotFound = errors.New("no such table")

// Source opens connections to a workbook.
type Source interface {
	Connect(ctx context.Context) (Conn, error)
}

// Conn is an open connection to a workbook.
// A Conn is safe for use by one query at a time.
type Conn interface {
	// Execute runs a translated statement and returns a forward-only cursor.
	Execute(ctx context.Context, st querysql.Statement) (Cursor, error)

	// Columns returns the column names of a worksheet view in order.
	Columns(ctx context.Context, t queryir.Table) ([]string, error)

	// Sheets returns the worksheet names in workbook order.
	Sheets() []string

	Close() error
}

// Cursor iterates over result rows.
//
// Values returns the current row; its elements are nil, int64, float64
// or string. The slice is owned by the caller.
type Cursor interface {
	Columns() []string
	Next() bool
	Values() []any
	Err() error
	Close() error
}

// Sheet is a worksheet as a grid of cell text. Rows[0] is spreadsheet
// row 1 and Rows[i][0] is column A; rows may be ragged.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an ordered set of worksheets.
type Workbook struct {
	sheets []Sheet
}

// NewWorkbook creates a workbook from sheets in order.
func NewWorkbook(sheets ...Sheet) *Workbook {
	return &Workbook{sheets: sheets}
}

// Sheet finds a worksheet by name. An exact match wins; otherwise names
// are compared case-insensitively, as spreadsheet applications do.
func (w *Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range w.sheets {
		if s.Name == name {
			return s, true
		}
	}
	for _, s := range w.sheets {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Sheet{}, false
}

// Names returns the worksheet names in workbook order.
func (w *Workbook) Names() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// StaticSource serves an in-memory workbook.
type StaticSource struct {
	wb *Workbook
}

// Static creates a Source over in-memory worksheets.
func Static(sheets ...Sheet) *StaticSource {
	return &StaticSource{wb: NewWorkbook(sheets...)}
}

// Connect opens a fresh in-memory database over the workbook.
func (s *StaticSource) Connect(ctx context.Context) (Conn, error) {
	conn, err := Open(ctx, s.wb)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// FileSource reads a workbook file on every Connect.
type FileSource struct {
	Path string
}

// File creates a Source for a .xlsx, .xlsm, .csv or .parquet file.
func File(path string) *FileSource {
	return &FileSource{Path: path}
}

// Connect loads the file and opens an in-memory database over it.
func (f *FileSource) Connect(ctx context.Context) (Conn, error) {
	wb, err := LoadFile(f.Path)
	if err != nil {
		return nil, err
	}
	conn, err := Open(ctx, wb)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
