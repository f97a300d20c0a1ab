package source

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sheetq/internal/colref"
	"github.com/roach88/sheetq/internal/queryir"
)

// view cuts the cells of a worksheet view out of the sheet grid. Every
// returned row has the same width; missing cells are "".
func view(rows [][]string, rng colref.Range) [][]string {
	start := rng.StartRow() - 1
	end := len(rows)
	if r := rng.EndRow(); r > 0 && r < end {
		end = r
	}
	if start >= end {
		return nil
	}
	rows = rows[start:end]

	first := rng.StartColumn() - 1
	width := 0
	if last := rng.EndColumn(); last > 0 {
		width = last - first
	} else {
		for _, row := range rows {
			width = max(width, len(row)-first)
		}
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		for j := range cells {
			if first+j < len(row) {
				cells[j] = row[first+j]
			}
		}
		out[i] = cells
	}
	return out
}

// layout splits a view into column names and data records.
//
// With a header row, names come from the first row: NFC-normalized and
// trimmed, blank headers named F<n>. Names must be unique ignoring case.
// Without one, every row is data and the columns are F1..Fn. A view with
// no cells has the single column F1.
func layout(t queryir.Table, grid [][]string) ([]string, [][]string, error) {
	width := 0
	if len(grid) > 0 {
		width = len(grid[0])
	}
	if width == 0 {
		return []string{"F1"}, nil, nil
	}

	names := make([]string, width)
	records := grid
	if t.NoHeader {
		for i := range names {
			names[i] = positionalName(i)
		}
	} else {
		fold := cases.Fold()
		seen := make(map[string]bool, width)
		for i, cell := range grid[0] {
			name := norm.NFC.String(strings.TrimSpace(cell))
			if name == "" {
				name = positionalName(i)
			}
			key := fold.String(name)
			if seen[key] {
				return nil, nil, fmt.Errorf("worksheet %s: duplicate column name %q", t.Name, name)
			}
			seen[key] = true
			names[i] = name
		}
		records = grid[1:]
	}
	return names, records, nil
}

// positionalName names the i-th (0-based) column of a view without headers.
func positionalName(i int) string {
	return "F" + strconv.Itoa(i+1)
}

var decimalText = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// inferValue converts cell text to the value stored in SQLite:
// "" is NULL, canonical integers are INTEGER, other decimal numbers are
// REAL and everything else is TEXT. Numbers with leading zeros or a plus
// sign stay TEXT so identifiers such as "007" survive.
func inferValue(text string) any {
	if text == "" {
		return nil
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil && strconv.FormatInt(i, 10) == text {
		return i
	}
	if decimalText.MatchString(text) && !leadingZero(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	return text
}

// leadingZero reports whether the integer part of a number has a
// redundant leading zero, as in "007" or "-01.5".
func leadingZero(text string) bool {
	text = strings.TrimPrefix(text, "-")
	return len(text) > 1 && text[0] == '0' && text[1] >= '0' && text[1] <= '9'
}
