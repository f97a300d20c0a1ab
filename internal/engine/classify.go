package engine

import (
	"context"
	"errors"

	"golang.org/x/text/cases"

	"github.com/roach88/sheetq/internal/qerr"
	"github.com/roach88/sheetq/internal/querysql"
	"github.com/roach88/sheetq/internal/source"
)

// classify maps a source failure onto the query error taxonomy.
//
// Order:
//  1. source.ErrTableNotFound from the query -> SourceNotFound
//  2. source.ErrTableNotFound when listing the worksheet columns -> SourceNotFound
//  3. a referenced column missing from the worksheet -> UnknownColumnName
//  4. otherwise the failure is returned unchanged
func classify(ctx context.Context, conn source.Conn, st querysql.Statement, err error) error {
	table := st.Table.Name
	if errors.Is(err, source.ErrTableNotFound) {
		return qerr.SourceNotFound(table, err)
	}

	cols, colErr := conn.Columns(ctx, st.Table)
	switch {
	case errors.Is(colErr, source.ErrTableNotFound):
		return qerr.SourceNotFound(table, err)
	case colErr != nil:
		return err
	}
	if unknown := missingColumns(st.Columns, cols); len(unknown) > 0 {
		return qerr.UnknownColumnName(unknown, cols, err)
	}
	return err
}

// missingColumns returns the referenced names absent from valid, compared
// ignoring case as SQLite does.
func missingColumns(referenced, valid []string) []string {
	fold := cases.Fold()
	known := make(map[string]bool, len(valid))
	for _, v := range valid {
		known[fold.String(v)] = true
	}

	var missing []string
	for _, r := range referenced {
		if !known[fold.String(r)] {
			missing = append(missing, r)
		}
	}
	return missing
}
