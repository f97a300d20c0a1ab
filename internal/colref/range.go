package colref

import (
	"fmt"

	"github.com/roach88/sheetq/internal/qerr"
)

// Range is an inclusive cell range. Either end may be absent; the zero Range
// covers the whole sheet.
//
// INVARIANT: when both ends are present, Start's column index <= End's.
// Only NewRange constructs non-zero Ranges, so a Range value always holds it.
type Range struct {
	start    Address
	end      Address
	hasStart bool
	hasEnd   bool
}

// NewRange validates and builds a range from two cell addresses. An empty
// string leaves that end open. Malformed addresses fail with
// InvalidRangeFormat; a start column after the end column fails with
// ArgumentRangeViolation.
func NewRange(start, end string) (Range, error) {
	var r Range
	if start != "" {
		a, err := ParseAddress(start)
		if err != nil {
			return Range{}, err
		}
		if err := CheckLetters(a.Column); err != nil {
			return Range{}, err
		}
		r.start, r.hasStart = a, true
	}
	if end != "" {
		a, err := ParseAddress(end)
		if err != nil {
			return Range{}, err
		}
		if err := CheckLetters(a.Column); err != nil {
			return Range{}, err
		}
		r.end, r.hasEnd = a, true
	}
	if r.hasStart && r.hasEnd && r.start.ColumnIndex() > r.end.ColumnIndex() {
		return Range{}, qerr.New(qerr.ErrCodeArgumentRangeViolation,
			"range start column %s follows end column %s", r.start.Column, r.end.Column)
	}
	return r, nil
}

// MustRange is NewRange for literals known to be valid. It panics on error.
func MustRange(start, end string) Range {
	r, err := NewRange(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

// IsZero reports whether neither end is set.
func (r Range) IsZero() bool {
	return !r.hasStart && !r.hasEnd
}

// Start returns the start address and whether it is set.
func (r Range) Start() (Address, bool) {
	return r.start, r.hasStart
}

// End returns the end address and whether it is set.
func (r Range) End() (Address, bool) {
	return r.end, r.hasEnd
}

// StartColumn returns the 1-based index of the first column in the range.
// An open start means column A.
func (r Range) StartColumn() int {
	if r.hasStart {
		return r.start.ColumnIndex()
	}
	return 1
}

// EndColumn returns the 1-based index of the last column in the range, or
// 0 when the end is open.
func (r Range) EndColumn() int {
	if r.hasEnd {
		return r.end.ColumnIndex()
	}
	return 0
}

// StartRow returns the first row of the range (1 when open).
func (r Range) StartRow() int {
	if r.hasStart {
		return r.start.Row
	}
	return 1
}

// EndRow returns the last row of the range, or 0 when open.
func (r Range) EndRow() int {
	if r.hasEnd {
		return r.end.Row
	}
	return 0
}

// ContainsColumn reports whether a 1-based column index lies in the range.
func (r Range) ContainsColumn(index int) bool {
	if index < r.StartColumn() {
		return false
	}
	if r.hasEnd && index > r.end.ColumnIndex() {
		return false
	}
	return true
}

// String renders the range as "B1:F100"; open ends are left empty.
func (r Range) String() string {
	if r.IsZero() {
		return ""
	}
	var s, e string
	if r.hasStart {
		s = r.start.String()
	}
	if r.hasEnd {
		e = r.end.String()
	}
	return fmt.Sprintf("%s:%s", s, e)
}
