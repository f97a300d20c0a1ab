package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sheetq/internal/mapping"
	"github.com/roach88/sheetq/internal/qerr"
	"github.com/roach88/sheetq/internal/queryir"
)

// AggregateColumn is the synthetic column name of a pushed-down aggregate.
const AggregateColumn = "__aggregate"

// Statement is a translated query: SQL text with positional placeholders,
// the values bound to them, and the columns it references.
//
// INVARIANT: len(Params) equals the number of ? placeholders in SQL.
type Statement struct {
	SQL    string
	Params []any

	// Columns lists every column name referenced by the filter, projection,
	// ordering or aggregate, in first-seen order without duplicates. The
	// executor uses it to tell a bad column name from a bad worksheet.
	Columns []string

	// Table is the worksheet view the SQL reads (FROM quote(Table.Key())).
	Table queryir.Table

	// Projected is set when the SELECT list names the projected columns.
	// A projection that falls back to SELECT * leaves it false.
	Projected bool

	// Plan holds the operators that were not pushed into SQL.
	Plan Plan
}

// Plan describes the result shape and the local post-pass.
type Plan struct {
	// Aggregate is the pushed-down aggregate, or nil. When set the statement
	// yields a single row with the single column AggregateColumn.
	Aggregate queryir.Operator

	// Local lists sequence operators (Reverse, Skip, Take) applied after
	// materialization, in declaration order.
	Local []queryir.Operator

	// Element is the element selector (First, Last, Single, ...), or nil.
	Element queryir.Operator
}

// Scalar reports whether the statement produces a single aggregate value.
func (p Plan) Scalar() bool {
	return p.Aggregate != nil
}

// Translator compiles structured queries to parameterized SQLite SQL.
//
// CRITICAL: All values are parameterized (never interpolated).
// Ordering follows declaration order with no implicit tiebreaker; the
// source returns rows in worksheet order when no ordering is given.
type Translator struct {
	resolver *mapping.Resolver
}

// NewTranslator creates a Translator that resolves members through cfg.
// A nil cfg resolves every member to the column of the same name.
func NewTranslator(cfg *mapping.Config) *Translator {
	return &Translator{resolver: cfg.Resolver()}
}

// Resolver returns the resolver members are mapped with.
func (t *Translator) Resolver() *mapping.Resolver {
	return t.resolver
}

// Translate converts a query to a Statement. It is deterministic and has
// no side effects.
func (t *Translator) Translate(q queryir.Query) (Statement, error) {
	if err := queryir.Validate(q).Err(); err != nil {
		return Statement{}, err
	}

	c := &compilation{
		table:    q.From,
		resolver: t.resolver,
		seen:     make(map[string]bool),
	}

	plan, window, err := planOperators(q.Operators)
	if err != nil {
		return Statement{}, err
	}

	// Build SELECT clause
	selectClause := "*"
	if plan.Aggregate == nil && len(q.Select) > 0 {
		selectClause, err = c.compileProjection(q.Select)
		if err != nil {
			return Statement{}, err
		}
	}
	projected := selectClause != "*"

	// Build WHERE clause and collect parameters
	var whereClause string
	if q.Filter != nil {
		filterSQL, err := c.compileExpr(q.Filter)
		if err != nil {
			return Statement{}, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
	}

	// Build ORDER BY clause in declaration order
	var orderByClause string
	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			col, err := c.column(o.Member)
			if err != nil {
				return Statement{}, fmt.Errorf("compile ordering: %w", err)
			}
			dir := "ASC"
			if o.Descending {
				dir = "DESC"
			}
			parts = append(parts, QuoteIdent(col)+" "+dir)
		}
		orderByClause = " ORDER BY " + strings.Join(parts, ", ")
	}

	// Folded Skip/Take window
	var limitClause string
	if window.used {
		limitClause = " LIMIT ? OFFSET ?"
		c.params = append(c.params, int64(window.limit), int64(window.offset))
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s%s",
		selectClause,
		QuoteIdent(q.From.Key()),
		whereClause,
		orderByClause,
		limitClause)

	if plan.Aggregate != nil {
		sql, err = c.wrapAggregate(sql, plan.Aggregate, q.Select)
		if err != nil {
			return Statement{}, err
		}
	}

	return Statement{
		SQL:       sql,
		Params:    c.params,
		Columns:   c.columns,
		Table:     q.From,
		Projected: projected,
		Plan:      plan,
	}, nil
}

// window is the folded LIMIT/OFFSET of every pushed-down Skip and Take.
type window struct {
	offset int
	limit  int // -1 = unbounded
	used   bool
}

func (w *window) skip(n int) {
	w.used = true
	w.offset += n
	if w.limit >= 0 {
		w.limit = max(0, w.limit-n)
	}
}

func (w *window) take(n int) {
	w.used = true
	if w.limit < 0 || n < w.limit {
		w.limit = n
	}
}

// planOperators decides, per operator, whether it is pushed into SQL or
// deferred to the local post-pass.
//
// Rules:
//   - Aggregates are pushed down as a wrapping SELECT.
//   - Skip/Take are folded into one LIMIT/OFFSET until a local-only operator
//     (Reverse, Last, LastOrDefault) has been seen; after that they are
//     deferred so they apply to the reversed sequence.
//   - Reverse, Last and LastOrDefault are never pushed down.
//   - First, FirstOrDefault and Single leave the statement unchanged.
func planOperators(ops []queryir.Operator) (Plan, window, error) {
	var (
		plan     Plan
		w        = window{limit: -1}
		local    bool // a local-only operator has been seen
		deferred bool // a Skip/Take was deferred
	)

	for _, op := range ops {
		switch o := op.(type) {
		case queryir.Count, queryir.LongCount, queryir.Sum, queryir.Average, queryir.Min, queryir.Max:
			if deferred {
				return Plan{}, window{}, qerr.New(qerr.ErrCodeUnsupportedQuery,
					"%s cannot follow Skip/Take applied after Reverse", op.Name())
			}
			plan.Aggregate = op
			// Reverse does not change an aggregate
			plan.Local = nil
		case queryir.Reverse:
			local = true
			plan.Local = append(plan.Local, op)
		case queryir.Skip:
			if local {
				deferred = true
				plan.Local = append(plan.Local, op)
			} else {
				w.skip(o.N)
			}
		case queryir.Take:
			if local {
				deferred = true
				plan.Local = append(plan.Local, op)
			} else {
				w.take(o.N)
			}
		case queryir.Last, queryir.LastOrDefault:
			plan.Element = op
		case queryir.First, queryir.FirstOrDefault, queryir.Single:
			plan.Element = op
		default:
			return Plan{}, window{}, qerr.New(qerr.ErrCodeUnsupportedQuery, "unsupported operator type: %T", op)
		}
	}

	return plan, w, nil
}

// compilation carries per-translation state.
type compilation struct {
	table    queryir.Table
	resolver *mapping.Resolver
	params   []any
	columns  []string
	seen     map[string]bool
}

// reference records a column name in the statement's column set.
func (c *compilation) reference(col string) {
	if c.seen[col] {
		return
	}
	c.seen[col] = true
	c.columns = append(c.columns, col)
}

// column resolves a member to the native column name it reads.
func (c *compilation) column(member string) (string, error) {
	m := c.resolver.Resolve(member)
	if m.Kind == mapping.ByHeaderName {
		c.reference(m.Column)
		return m.Column, nil
	}

	// Letter mappings have a native name only on header-less worksheets,
	// whose columns are F1..Fn counted from the range start.
	if !c.table.NoHeader {
		return "", qerr.New(qerr.ErrCodeUnsupportedQuery,
			"property %q is mapped to column letter %s; letter-mapped properties can only be filtered or ordered on header-less worksheets",
			member, m.Column)
	}
	idx, err := mapping.EffectiveColumnIndex(m, c.table.Range)
	if err != nil {
		return "", err
	}
	col := fmt.Sprintf("F%d", idx+1)
	c.reference(col)
	return col, nil
}

// compileProjection builds the SELECT list. A letter-mapped member on a
// worksheet with headers has no native name, so the projection falls back
// to SELECT * and the materializer picks the column by position.
func (c *compilation) compileProjection(members []string) (string, error) {
	parts := make([]string, 0, len(members))
	for _, member := range members {
		m := c.resolver.Resolve(member)
		if m.Kind == mapping.ByColumnLetter && !c.table.NoHeader {
			return "*", nil
		}
		col, err := c.column(member)
		if err != nil {
			return "", err
		}
		parts = append(parts, QuoteIdent(col))
	}
	return strings.Join(parts, ", "), nil
}

// wrapAggregate wraps the row statement in a single-value aggregate.
func (c *compilation) wrapAggregate(inner string, op queryir.Operator, projection []string) (string, error) {
	var fn string
	switch op.(type) {
	case queryir.Count, queryir.LongCount:
		return fmt.Sprintf("SELECT COUNT(*) AS %s FROM (%s)", QuoteIdent(AggregateColumn), inner), nil
	case queryir.Sum:
		fn = "SUM"
	case queryir.Average:
		fn = "AVG"
	case queryir.Min:
		fn = "MIN"
	case queryir.Max:
		fn = "MAX"
	default:
		return "", qerr.New(qerr.ErrCodeUnsupportedQuery, "unsupported aggregate: %T", op)
	}

	member := queryir.AggregateMember(op)
	if member == "" && len(projection) == 1 {
		member = projection[0]
	}
	col, err := c.column(member)
	if err != nil {
		return "", fmt.Errorf("compile %s: %w", op.Name(), err)
	}
	return fmt.Sprintf("SELECT %s(%s) AS %s FROM (%s)", fn, QuoteIdent(col), QuoteIdent(AggregateColumn), inner), nil
}

// QuoteIdent quotes a SQL identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
