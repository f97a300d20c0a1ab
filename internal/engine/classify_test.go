package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sheetq/internal/qerr"
	"github.com/roach88/sheetq/internal/queryir"
	"github.com/roach88/sheetq/internal/querysql"
	"github.com/roach88/sheetq/internal/source"
)

// fakeConn answers Columns from a fixed list.
type fakeConn struct {
	source.Conn
	cols []string
	err  error
}

func (c fakeConn) Columns(context.Context, queryir.Table) ([]string, error) {
	return c.cols, c.err
}

func TestClassify(t *testing.T) {
	people := fakeConn{cols: []string{"Name", "Age"}}
	st := querysql.Statement{
		Table:   queryir.Table{Name: "People"},
		Columns: []string{"name", "Salary"},
	}

	tests := []struct {
		name     string
		conn     fakeConn
		st       querysql.Statement
		err      error
		wantCode qerr.Code
	}{
		{
			name:     "table not found",
			conn:     people,
			st:       st,
			err:      fmt.Errorf("%w: People", source.ErrTableNotFound),
			wantCode: qerr.ErrCodeSourceNotFound,
		},
		{
			name:     "missing column",
			conn:     people,
			st:       st,
			err:      errors.New("no such column: Salary"),
			wantCode: qerr.ErrCodeUnknownColumnName,
		},
		{
			name:     "worksheet missing when listing columns",
			conn:     fakeConn{err: fmt.Errorf("%w: People", source.ErrTableNotFound)},
			st:       st,
			err:      errors.New(`no such table: "People"`),
			wantCode: qerr.ErrCodeSourceNotFound,
		},
		{
			name: "load failure naming the worksheet",
			conn: fakeConn{err: errors.New(`worksheet People: duplicate column name "name"`)},
			st:   st,
			err:  errors.New(`worksheet People: duplicate column name "name"`),
		},
		{
			name: "table name inside a column name",
			conn: people,
			st: querysql.Statement{
				Table:   queryir.Table{Name: "People"},
				Columns: []string{"PeopleCount"},
			},
			err:      errors.New("no such column: PeopleCount"),
			wantCode: qerr.ErrCodeUnknownColumnName,
		},
		{
			name: "unrelated failure",
			conn: people,
			st:   querysql.Statement{Table: queryir.Table{Name: "People"}, Columns: []string{"Age"}},
			err:  errors.New("disk I/O error"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(context.Background(), tt.conn, tt.st, tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.wantCode, qerr.CodeOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_UnknownColumnDetails(t *testing.T) {
	conn := fakeConn{cols: []string{"Name", "Age"}}
	st := querysql.Statement{
		Table:   queryir.Table{Name: "People"},
		Columns: []string{"Name", "Salary", "Dept"},
	}

	err := classify(context.Background(), conn, st, errors.New("no such column"))

	var qe *qerr.Error
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "Salary, Dept", qe.Column)
	assert.Equal(t, "Name, Age", qe.Details["valid"])
	assert.Contains(t, qe.Message, `"Salary"`)
}

func TestApplyLocal(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	out := applyLocal(in, []queryir.Operator{queryir.Reverse{}, queryir.Take{N: 2}})

	assert.Equal(t, []int{5, 4}, out)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, in, "input must not be reordered")
	assert.Empty(t, applyLocal(in, []queryir.Operator{queryir.Skip{N: 10}}))
	assert.Equal(t, in, applyLocal(in, []queryir.Operator{queryir.Take{N: 10}}))
}

func TestSelectElement(t *testing.T) {
	got, found, err := selectElement([]int{7, 8}, queryir.LastOrDefault{})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 8, got)

	got, found, err = selectElement([]int(nil), queryir.FirstOrDefault{})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, got)

	_, _, err = selectElement([]int{1, 2}, queryir.Single{})
	assert.True(t, qerr.Is(err, qerr.ErrCodeMultipleResults))
}
