package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	path := WriteXLSX(t, "book.xlsx",
		Grid{Name: "People", Rows: [][]any{{"Name", "Age"}, {"Ann", 34}}},
		Grid{Name: "Empty"},
	)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"People", "Empty"}, f.GetSheetList())
	rows, err := f.GetRows("People")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Age"}, {"Ann", "34"}}, rows)
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "a.csv", "x\n1\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(data))
}
