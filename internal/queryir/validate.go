package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/sheetq/internal/qerr"
)

// ValidationResult lists the structural problems found in a query.
type ValidationResult struct {
	// Problems is empty when the query is well formed.
	Problems []string
}

// Valid reports whether no problems were found.
func (r ValidationResult) Valid() bool {
	return len(r.Problems) == 0
}

// Err returns an UnsupportedQuery error joining every problem, or nil.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return qerr.New(qerr.ErrCodeUnsupportedQuery, "%s", strings.Join(r.Problems, "; "))
}

// Validate checks the structure of a query:
//  1. A worksheet name is required
//  2. Terminal operators (aggregates, element selectors) must come last
//  3. Skip and Take counts must not be negative
//  4. Sum/Average/Min/Max need a member, or a single-member projection
//  5. Predicate nodes must be non-nil and Compare must have both operands
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{}
	v.validateQuery(q)
	return ValidationResult{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if strings.TrimSpace(q.From.Name) == "" {
		v.addProblem("worksheet name is required")
	}

	for i, name := range q.Select {
		if name == "" {
			v.addProblem("projection %d has an empty member name", i)
		}
	}

	for i, o := range q.OrderBy {
		if o.Member == "" {
			v.addProblem("ordering %d has an empty member name", i)
		}
	}

	if q.Filter != nil {
		v.validateExpr(q.Filter)
	}

	for i, op := range q.Operators {
		if op == nil {
			v.addProblem("operator %d is nil", i)
			continue
		}
		if IsTerminal(op) && i != len(q.Operators)-1 {
			v.addProblem("%s must be the last operator", op.Name())
		}
		switch o := op.(type) {
		case Skip:
			if o.N < 0 {
				v.addProblem("Skip count must not be negative, got %d", o.N)
			}
		case Take:
			if o.N < 0 {
				v.addProblem("Take count must not be negative, got %d", o.N)
			}
		case Sum, Average, Min, Max:
			if AggregateMember(op) == "" && len(q.Select) != 1 {
				v.addProblem("%s needs a member or a single-member projection", op.Name())
			}
		}
	}
}

// validateExpr recursively validates a predicate node.
func (v *validator) validateExpr(e Expr) {
	switch expr := e.(type) {
	case nil:
		v.addProblem("nil expression in predicate")
	case Member:
		if expr.Name == "" {
			v.addProblem("member with empty name")
		}
	case *Member:
		if expr == nil {
			v.addProblem("nil expression in predicate")
			return
		}
		v.validateExpr(*expr)
	case Literal:
		// Any value; parameter conversion is checked during translation
	case *Literal:
		if expr == nil {
			v.addProblem("nil expression in predicate")
		}
	case Compare:
		if expr.Left == nil || expr.Right == nil {
			v.addProblem("comparison %s is missing an operand", expr.Op)
			return
		}
		v.validateExpr(expr.Left)
		v.validateExpr(expr.Right)
	case *Compare:
		if expr == nil {
			v.addProblem("nil expression in predicate")
			return
		}
		v.validateExpr(*expr)
	case And:
		for _, t := range expr.Terms {
			v.validateExpr(t)
		}
	case *And:
		if expr == nil {
			v.addProblem("nil expression in predicate")
			return
		}
		v.validateExpr(*expr)
	case Or:
		for _, t := range expr.Terms {
			v.validateExpr(t)
		}
	case *Or:
		if expr == nil {
			v.addProblem("nil expression in predicate")
			return
		}
		v.validateExpr(*expr)
	case Not:
		v.validateExpr(expr.Expr)
	case *Not:
		if expr == nil {
			v.addProblem("nil expression in predicate")
			return
		}
		v.validateExpr(*expr)
	case Match:
		if expr.Member == "" {
			v.addProblem("string match with empty member name")
		}
	case *Match:
		if expr == nil {
			v.addProblem("nil expression in predicate")
			return
		}
		v.validateExpr(*expr)
	default:
		v.addProblem("unknown expression type: %T", e)
	}
}
