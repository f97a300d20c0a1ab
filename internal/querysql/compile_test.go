package querysql

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sheetq/internal/colref"
	"github.com/roach88/sheetq/internal/mapping"
	"github.com/roach88/sheetq/internal/qerr"
	"github.com/roach88/sheetq/internal/queryir"
)

// render formats a statement for golden comparison.
func render(st Statement) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "sql: %s\n", st.SQL)

	params := make([]string, len(st.Params))
	for i, p := range st.Params {
		params[i] = fmt.Sprintf("%#v", p)
	}
	fmt.Fprintf(&b, "params: [%s]\n", strings.Join(params, ", "))
	fmt.Fprintf(&b, "columns: [%s]\n", strings.Join(st.Columns, ", "))
	fmt.Fprintf(&b, "aggregate: %s\n", opName(st.Plan.Aggregate))

	local := make([]string, len(st.Plan.Local))
	for i, op := range st.Plan.Local {
		local[i] = op.Name()
	}
	fmt.Fprintf(&b, "local: [%s]\n", strings.Join(local, ", "))
	fmt.Fprintf(&b, "element: %s\n", opName(st.Plan.Element))
	return []byte(b.String())
}

func opName(op queryir.Operator) string {
	if op == nil {
		return "-"
	}
	return op.Name()
}

func TestTranslate_Golden(t *testing.T) {
	letters, err := mapping.NewConfig(mapping.Letter("Score", "C"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		cfg   *mapping.Config
		query queryir.Query
	}{
		{
			name: "filter_order_window",
			query: queryir.Query{
				From: queryir.Table{Name: "People"},
				Filter: queryir.AllOf(
					queryir.Gtv("Age", 30),
					queryir.Match{Kind: queryir.StartsWith, Member: "Name", Value: "A_"},
				),
				OrderBy:   []queryir.Ordering{{Member: "Name"}, {Member: "Age", Descending: true}},
				Operators: []queryir.Operator{queryir.Skip{N: 2}, queryir.Take{N: 5}, queryir.First{}},
			},
		},
		{
			name: "aggregate_sum",
			query: queryir.Query{
				From:      queryir.Table{Name: "People", Range: colref.MustRange("B1", "F100")},
				Filter:    queryir.Nev("Dept", nil),
				Operators: []queryir.Operator{queryir.Reverse{}, queryir.Sum{Member: "Salary"}},
			},
		},
		{
			name: "deferred_after_reverse",
			cfg:  letters,
			query: queryir.Query{
				From:   queryir.Table{Name: "People", NoHeader: true},
				Select: []string{"Score"},
				Operators: []queryir.Operator{
					queryir.Take{N: 10}, queryir.Reverse{}, queryir.Skip{N: 2}, queryir.Last{},
				},
			},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewTranslator(tt.cfg).Translate(tt.query)
			require.NoError(t, err)
			g.Assert(t, tt.name, render(st))
		})
	}
}

func TestTranslate_SQL(t *testing.T) {
	people := queryir.Table{Name: "People"}

	tests := []struct {
		name       string
		query      queryir.Query
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "bare table",
			query:   queryir.Query{From: people},
			wantSQL: `SELECT * FROM "People"`,
		},
		{
			name:    "projection",
			query:   queryir.Query{From: people, Select: []string{"Name", "Age"}},
			wantSQL: `SELECT "Name", "Age" FROM "People"`,
		},
		{
			name:    "is null",
			query:   queryir.Query{From: people, Filter: queryir.Eqv("Email", nil)},
			wantSQL: `SELECT * FROM "People" WHERE "Email" IS NULL`,
		},
		{
			name: "null on the left",
			query: queryir.Query{From: people, Filter: queryir.Compare{
				Op: queryir.Ne, Left: queryir.L(nil), Right: queryir.M("Email"),
			}},
			wantSQL: `SELECT * FROM "People" WHERE "Email" IS NOT NULL`,
		},
		{
			name: "or and not",
			query: queryir.Query{From: people, Filter: queryir.AnyOf(
				queryir.Eqv("Dept", "Sales"),
				queryir.Not{Expr: queryir.Lev("Age", 18)},
			)},
			wantSQL:    `SELECT * FROM "People" WHERE ("Dept" = ? OR NOT ("Age" <= ?))`,
			wantParams: []any{"Sales", int64(18)},
		},
		{
			name:    "empty and",
			query:   queryir.Query{From: people, Filter: queryir.AllOf()},
			wantSQL: `SELECT * FROM "People" WHERE 1 = 1`,
		},
		{
			name:    "empty or",
			query:   queryir.Query{From: people, Filter: queryir.AnyOf()},
			wantSQL: `SELECT * FROM "People" WHERE 1 = 0`,
		},
		{
			name:       "single term and",
			query:      queryir.Query{From: people, Filter: queryir.AllOf(queryir.Gev("Age", 21))},
			wantSQL:    `SELECT * FROM "People" WHERE "Age" >= ?`,
			wantParams: []any{int64(21)},
		},
		{
			name: "contains escapes wildcards",
			query: queryir.Query{From: people, Filter: queryir.Match{
				Kind: queryir.Contains, Member: "Name", Value: `50%\off`,
			}},
			wantSQL:    `SELECT * FROM "People" WHERE "Name" LIKE ? ESCAPE '\'`,
			wantParams: []any{`%50\%\\off%`},
		},
		{
			name: "ends with",
			query: queryir.Query{From: people, Filter: queryir.Match{
				Kind: queryir.EndsWith, Member: "Email", Value: "@example.com",
			}},
			wantSQL:    `SELECT * FROM "People" WHERE "Email" LIKE ? ESCAPE '\'`,
			wantParams: []any{"%@example.com"},
		},
		{
			name:       "take then skip folds",
			query:      queryir.Query{From: people, Operators: []queryir.Operator{queryir.Take{N: 5}, queryir.Skip{N: 2}}},
			wantSQL:    `SELECT * FROM "People" LIMIT ? OFFSET ?`,
			wantParams: []any{int64(3), int64(2)},
		},
		{
			name:       "skip past take clamps to zero",
			query:      queryir.Query{From: people, Operators: []queryir.Operator{queryir.Take{N: 2}, queryir.Skip{N: 5}}},
			wantSQL:    `SELECT * FROM "People" LIMIT ? OFFSET ?`,
			wantParams: []any{int64(0), int64(5)},
		},
		{
			name:       "take keeps the smaller",
			query:      queryir.Query{From: people, Operators: []queryir.Operator{queryir.Take{N: 3}, queryir.Take{N: 5}}},
			wantSQL:    `SELECT * FROM "People" LIMIT ? OFFSET ?`,
			wantParams: []any{int64(3), int64(0)},
		},
		{
			name:       "skip only is unbounded",
			query:      queryir.Query{From: people, Operators: []queryir.Operator{queryir.Skip{N: 4}}},
			wantSQL:    `SELECT * FROM "People" LIMIT ? OFFSET ?`,
			wantParams: []any{int64(-1), int64(4)},
		},
		{
			name:    "count",
			query:   queryir.Query{From: people, Operators: []queryir.Operator{queryir.Count{}}},
			wantSQL: `SELECT COUNT(*) AS "__aggregate" FROM (SELECT * FROM "People")`,
		},
		{
			name: "average over projection",
			query: queryir.Query{
				From:      people,
				Select:    []string{"Age"},
				Operators: []queryir.Operator{queryir.Average{}},
			},
			wantSQL: `SELECT AVG("Age") AS "__aggregate" FROM (SELECT * FROM "People")`,
		},
		{
			name: "min and max",
			query: queryir.Query{
				From:      people,
				Operators: []queryir.Operator{queryir.Skip{N: 1}, queryir.Max{Member: "Age"}},
			},
			wantSQL:    `SELECT MAX("Age") AS "__aggregate" FROM (SELECT * FROM "People" LIMIT ? OFFSET ?)`,
			wantParams: []any{int64(-1), int64(1)},
		},
		{
			name:    "quoted identifiers",
			query:   queryir.Query{From: queryir.Table{Name: `Q"1`}, Select: []string{`a"b`}},
			wantSQL: `SELECT "a""b" FROM "Q""1"`,
		},
	}

	tr := NewTranslator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := tr.Translate(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, st.SQL)
			assert.Equal(t, tt.wantParams, st.Params)
			assert.Equal(t, strings.Count(st.SQL, "?"), len(st.Params))
		})
	}
}

func TestTranslate_ValuesNeverInterpolated(t *testing.T) {
	q := queryir.Query{
		From:   queryir.Table{Name: "People"},
		Filter: queryir.Eqv("Name", "x' OR '1'='1"),
	}

	st, err := NewTranslator(nil).Translate(q)
	require.NoError(t, err)

	assert.NotContains(t, st.SQL, "OR '1'")
	assert.Equal(t, []any{"x' OR '1'='1"}, st.Params)
}

func TestTranslate_Deterministic(t *testing.T) {
	q := queryir.Query{
		From:      queryir.Table{Name: "People"},
		Filter:    queryir.AllOf(queryir.Gtv("Age", 1), queryir.Ltv("Age", 9), queryir.Eqv("Dept", "x")),
		OrderBy:   []queryir.Ordering{{Member: "Dept"}, {Member: "Age"}},
		Operators: []queryir.Operator{queryir.Take{N: 3}},
	}

	tr := NewTranslator(nil)
	first, err := tr.Translate(q)
	require.NoError(t, err)

	for range 10 {
		again, err := tr.Translate(q)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"Age", "Dept"}, first.Columns)
}

func TestTranslate_ExplicitHeaderMapping(t *testing.T) {
	cfg, err := mapping.NewConfig(mapping.Header("Email", "E-mail Address"))
	require.NoError(t, err)

	q := queryir.Query{
		From:    queryir.Table{Name: "People"},
		Filter:  queryir.Nev("Email", nil),
		OrderBy: []queryir.Ordering{{Member: "Email"}},
	}

	st, err := NewTranslator(cfg).Translate(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "People" WHERE "E-mail Address" IS NOT NULL ORDER BY "E-mail Address" ASC`, st.SQL)
	assert.Equal(t, []string{"E-mail Address"}, st.Columns)
}

func TestTranslate_Projected(t *testing.T) {
	people := queryir.Table{Name: "People"}
	tr := NewTranslator(nil)

	st, err := tr.Translate(queryir.Query{From: people, Select: []string{"Name"}})
	require.NoError(t, err)
	assert.True(t, st.Projected)

	st, err = tr.Translate(queryir.Query{From: people})
	require.NoError(t, err)
	assert.False(t, st.Projected)

	st, err = tr.Translate(queryir.Query{From: people, Select: []string{"Age"}, Operators: []queryir.Operator{queryir.Count{}}})
	require.NoError(t, err)
	assert.False(t, st.Projected)
}

func TestTranslate_LetterMappings(t *testing.T) {
	cfg, err := mapping.NewConfig(mapping.Letter("Score", "D"), mapping.Letter("Early", "A"))
	require.NoError(t, err)
	tr := NewTranslator(cfg)

	t.Run("header-less uses positional name", func(t *testing.T) {
		q := queryir.Query{
			From:   queryir.Table{Name: "S", Range: colref.MustRange("B2", "F9"), NoHeader: true},
			Filter: queryir.Gtv("Score", 5),
		}
		st, err := tr.Translate(q)
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "S$B2:F9$NOHDR" WHERE "F3" > ?`, st.SQL)
	})

	t.Run("header table filter is unsupported", func(t *testing.T) {
		q := queryir.Query{From: queryir.Table{Name: "S"}, Filter: queryir.Gtv("Score", 5)}
		_, err := tr.Translate(q)
		assert.True(t, qerr.Is(err, qerr.ErrCodeUnsupportedQuery))
	})

	t.Run("header table projection selects all", func(t *testing.T) {
		q := queryir.Query{From: queryir.Table{Name: "S"}, Select: []string{"Name", "Score"}}
		st, err := tr.Translate(q)
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM "S"`, st.SQL)
		assert.False(t, st.Projected)
	})

	t.Run("column before range start", func(t *testing.T) {
		q := queryir.Query{
			From:   queryir.Table{Name: "S", Range: colref.MustRange("B2", "F9"), NoHeader: true},
			Filter: queryir.Eqv("Early", 1),
		}
		_, err := tr.Translate(q)
		assert.True(t, qerr.Is(err, qerr.ErrCodeArgumentRangeViolation))
	})
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query queryir.Query
		code  qerr.Code
	}{
		{
			name:  "invalid query",
			query: queryir.Query{},
			code:  qerr.ErrCodeUnsupportedQuery,
		},
		{
			name: "aggregate after deferred take",
			query: queryir.Query{
				From:      queryir.Table{Name: "S"},
				Operators: []queryir.Operator{queryir.Reverse{}, queryir.Take{N: 2}, queryir.Count{}},
			},
			code: qerr.ErrCodeUnsupportedQuery,
		},
		{
			name: "unsupported literal",
			query: queryir.Query{
				From:   queryir.Table{Name: "S"},
				Filter: queryir.Eqv("A", struct{}{}),
			},
			code: qerr.ErrCodeUnsupportedQuery,
		},
		{
			name: "nested comparison operand",
			query: queryir.Query{
				From: queryir.Table{Name: "S"},
				Filter: queryir.Compare{
					Op: queryir.Eq, Left: queryir.M("A"), Right: queryir.Eqv("B", 1),
				},
			},
			code: qerr.ErrCodeUnsupportedQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTranslator(nil).Translate(tt.query)
			require.Error(t, err)
			assert.Equal(t, tt.code, qerr.CodeOf(err))
		})
	}
}

func TestTranslate_ReverseBeforeAggregateIsDropped(t *testing.T) {
	q := queryir.Query{
		From:      queryir.Table{Name: "S"},
		Operators: []queryir.Operator{queryir.Reverse{}, queryir.LongCount{}},
	}

	st, err := NewTranslator(nil).Translate(q)
	require.NoError(t, err)
	assert.True(t, st.Plan.Scalar())
	assert.Empty(t, st.Plan.Local)
}

func TestToParam(t *testing.T) {
	ts := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"int", 7, int64(7)},
		{"int32", int32(-2), int64(-2)},
		{"uint8", uint8(200), int64(200)},
		{"float32", float32(1.5), float64(1.5)},
		{"bool", true, int64(1)},
		{"bytes", []byte("ab"), "ab"},
		{"time", ts, 45292.5},
		{"decimal", decimal.RequireFromString("12.25"), 12.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toParam(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := toParam(uint64(1 << 63))
	assert.Error(t, err)
}

func TestSerialDate(t *testing.T) {
	assert.InDelta(t, 1.0, SerialDate(time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)), 1e-9)
	assert.InDelta(t, 61.0, SerialDate(time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC)), 1e-9)

	// The wall clock is used regardless of location
	est := time.FixedZone("EST", -5*3600)
	assert.InDelta(t, 45292.25, SerialDate(time.Date(2024, time.January, 1, 6, 0, 0, 0, est)), 1e-9)
}
