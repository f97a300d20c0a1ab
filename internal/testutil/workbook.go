// Package testutil writes workbook fixtures for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Grid is a worksheet fixture. Rows[0] is written to row 1 starting at
// column A; cells keep their Go types, so numbers and times are stored
// as numeric cells.
type Grid struct {
	Name string
	Rows [][]any
}

// WriteXLSX writes grids as worksheets of a new workbook under a fresh
// temp dir and returns its path. Worksheets keep the order given.
func WriteXLSX(t testing.TB, name string, grids ...Grid) string {
	t.Helper()
	require.NotEmpty(t, grids, "WriteXLSX needs at least one grid")

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), grids[0].Name))
	for i, g := range grids {
		if i > 0 {
			_, err := f.NewSheet(g.Name)
			require.NoError(t, err)
		}
		for r, row := range g.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(g.Name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteFile writes content to name under a fresh temp dir and returns
// its path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
