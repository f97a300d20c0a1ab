package materialize

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/roach88/sheetq/internal/mapping"
)

// Cell is one value of a dynamic row.
type Cell struct {
	Column string
	Value  any // nil, int64, float64 or string
}

// IsNull reports whether the cell is empty.
func (c Cell) IsNull() bool {
	return c.Value == nil
}

// String returns the cell as text; an empty cell is "".
func (c Cell) String() string {
	return text(c.Value)
}

// Int converts the cell to int64.
func (c Cell) Int() (int64, error) {
	v, err := Coerce(c.Value, KindInt)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// Float converts the cell to float64.
func (c Cell) Float() (float64, error) {
	v, err := Coerce(c.Value, KindFloat)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

// Bool converts the cell to bool.
func (c Cell) Bool() (bool, error) {
	v, err := Coerce(c.Value, KindBool)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Time converts the cell to time.Time, reading numbers as serial dates.
func (c Cell) Time() (time.Time, error) {
	v, err := Coerce(c.Value, KindTime)
	if err != nil {
		return time.Time{}, err
	}
	return v.(time.Time), nil
}

// Decimal converts the cell to decimal.Decimal.
func (c Cell) Decimal() (decimal.Decimal, error) {
	v, err := Coerce(c.Value, KindDecimal)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return v.(decimal.Decimal), nil
}

// Row is a dynamic record: cells addressable by position and, when the
// worksheet has a header row, by column name ignoring case.
type Row struct {
	cells  []Cell
	layout *RowLayout
}

// Len returns the number of cells.
func (r Row) Len() int {
	return len(r.cells)
}

// At returns the cell at a 0-based position. It panics when i is out of
// range, like a slice index.
func (r Row) At(i int) Cell {
	return r.cells[i]
}

// Get returns the cell under a header name. It always fails on rows of a
// worksheet read without headers.
func (r Row) Get(name string) (Cell, bool) {
	if r.layout == nil || !r.layout.headers {
		return Cell{}, false
	}
	i, ok := r.layout.index[r.layout.fold.String(name)]
	if !ok {
		return Cell{}, false
	}
	return r.cells[i], true
}

// Cells returns the cells in column order.
func (r Row) Cells() []Cell {
	return r.cells
}

// Columns returns the column names in order.
func (r Row) Columns() []string {
	if r.layout == nil {
		return nil
	}
	return r.layout.columns
}

// Values returns the raw values in column order.
func (r Row) Values() []any {
	values := make([]any, len(r.cells))
	for i, c := range r.cells {
		values[i] = c.Value
	}
	return values
}

// RowLayout builds Rows sharing one column index.
type RowLayout struct {
	columns []string
	index   map[string]int
	headers bool
	trim    mapping.TrimPolicy
	fold    cases.Caser
}

// NewRowLayout creates a layout for cursor columns. headers reports
// whether the columns came from a header row; trim applies to string
// cells.
func NewRowLayout(columns []string, headers bool, trim mapping.TrimPolicy) *RowLayout {
	return &RowLayout{
		columns: columns,
		index:   foldIndex(columns),
		headers: headers,
		trim:    trim,
		fold:    cases.Fold(),
	}
}

// Row builds a record from one row of values.
func (l *RowLayout) Row(values []any) Row {
	cells := make([]Cell, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			v = l.trim.Apply(s)
		}
		var col string
		if i < len(l.columns) {
			col = l.columns[i]
		}
		cells[i] = Cell{Column: col, Value: v}
	}
	return Row{cells: cells, layout: l}
}
