package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sheetq/internal/qerr"
	"github.com/roach88/sheetq/internal/queryir"
)

// compileExpr compiles a predicate node to SQL, appending its values to
// the parameter list.
func (c *compilation) compileExpr(e queryir.Expr) (string, error) {
	switch expr := e.(type) {
	case queryir.Compare:
		return c.compileCompare(expr)
	case *queryir.Compare:
		return c.compileCompare(*expr)
	case queryir.And:
		return c.compileJunction(expr.Terms, " AND ", "1 = 1")
	case *queryir.And:
		return c.compileJunction(expr.Terms, " AND ", "1 = 1")
	case queryir.Or:
		return c.compileJunction(expr.Terms, " OR ", "1 = 0")
	case *queryir.Or:
		return c.compileJunction(expr.Terms, " OR ", "1 = 0")
	case queryir.Not:
		return c.compileNot(expr)
	case *queryir.Not:
		return c.compileNot(*expr)
	case queryir.Match:
		return c.compileMatch(expr)
	case *queryir.Match:
		return c.compileMatch(*expr)
	case queryir.Member, *queryir.Member:
		// A bare member is a truthiness test
		col, err := c.compileOperand(e)
		if err != nil {
			return "", err
		}
		return col + " <> 0", nil
	default:
		return "", qerr.New(qerr.ErrCodeUnsupportedQuery, "unsupported predicate type: %T", e)
	}
}

// compileJunction joins terms with op. An empty junction compiles to its
// identity; a single term is emitted without parentheses.
func (c *compilation) compileJunction(terms []queryir.Expr, op, empty string) (string, error) {
	if len(terms) == 0 {
		return empty, nil
	}

	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		sql, err := c.compileExpr(term)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

func (c *compilation) compileNot(not queryir.Not) (string, error) {
	inner, err := c.compileExpr(not.Expr)
	if err != nil {
		return "", err
	}
	return "NOT (" + inner + ")", nil
}

// compileCompare compiles a binary comparison. Equality against a nil
// literal becomes IS NULL / IS NOT NULL so it matches blank cells.
func (c *compilation) compileCompare(cmp queryir.Compare) (string, error) {
	if cmp.Op == queryir.Eq || cmp.Op == queryir.Ne {
		member, ok := nullTest(cmp)
		if ok {
			col, err := c.compileOperand(member)
			if err != nil {
				return "", err
			}
			if cmp.Op == queryir.Eq {
				return col + " IS NULL", nil
			}
			return col + " IS NOT NULL", nil
		}
	}

	left, err := c.compileOperand(cmp.Left)
	if err != nil {
		return "", err
	}
	right, err := c.compileOperand(cmp.Right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", left, cmp.Op, right), nil
}

// nullTest returns the member side of a comparison whose other side is a
// nil literal.
func nullTest(cmp queryir.Compare) (queryir.Expr, bool) {
	if isNilLiteral(cmp.Right) && isMember(cmp.Left) {
		return cmp.Left, true
	}
	if isNilLiteral(cmp.Left) && isMember(cmp.Right) {
		return cmp.Right, true
	}
	return nil, false
}

func isNilLiteral(e queryir.Expr) bool {
	switch lit := e.(type) {
	case queryir.Literal:
		return lit.Value == nil
	case *queryir.Literal:
		return lit.Value == nil
	}
	return false
}

func isMember(e queryir.Expr) bool {
	switch e.(type) {
	case queryir.Member, *queryir.Member:
		return true
	}
	return false
}

// compileOperand compiles a comparison operand: a member becomes a quoted
// column, a literal becomes a placeholder.
func (c *compilation) compileOperand(e queryir.Expr) (string, error) {
	switch op := e.(type) {
	case queryir.Member:
		col, err := c.column(op.Name)
		if err != nil {
			return "", err
		}
		return QuoteIdent(col), nil
	case *queryir.Member:
		return c.compileOperand(*op)
	case queryir.Literal:
		param, err := toParam(op.Value)
		if err != nil {
			return "", err
		}
		c.params = append(c.params, param)
		return "?", nil
	case *queryir.Literal:
		return c.compileOperand(*op)
	default:
		return "", qerr.New(qerr.ErrCodeUnsupportedQuery, "comparison operand must be a member or a literal, got %T", e)
	}
}

// compileMatch compiles a substring test to LIKE with an escaped pattern.
func (c *compilation) compileMatch(m queryir.Match) (string, error) {
	col, err := c.column(m.Member)
	if err != nil {
		return "", err
	}

	escaped := likeEscaper.Replace(m.Value)
	var pattern string
	switch m.Kind {
	case queryir.Contains:
		pattern = "%" + escaped + "%"
	case queryir.StartsWith:
		pattern = escaped + "%"
	case queryir.EndsWith:
		pattern = "%" + escaped
	default:
		return "", qerr.New(qerr.ErrCodeUnsupportedQuery, "unsupported match kind: %d", m.Kind)
	}

	c.params = append(c.params, pattern)
	return QuoteIdent(col) + ` LIKE ? ESCAPE '\'`, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
