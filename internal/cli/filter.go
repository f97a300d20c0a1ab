package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sheetq/internal/queryir"
)

// comparisonOps lists the filter operators, longest first so "<=" is
// matched before "<".
var comparisonOps = []struct {
	token string
	op    queryir.CompareOp
	match queryir.MatchKind
	like  bool
}{
	{token: "==", op: queryir.Eq},
	{token: "!=", op: queryir.Ne},
	{token: "<=", op: queryir.Le},
	{token: ">=", op: queryir.Ge},
	{token: "~=", match: queryir.Contains, like: true},
	{token: "^=", match: queryir.StartsWith, like: true},
	{token: "$=", match: queryir.EndsWith, like: true},
	{token: "<", op: queryir.Lt},
	{token: ">", op: queryir.Gt},
}

// ParseFilter parses a filter expression into a predicate.
//
// Supported forms:
//   - "Age >= 30" and the other comparisons ==, !=, <, <=, >, >=
//   - "Name ~= 'an'" (contains), "Name ^= 'A'" (starts with), "Name $= 'n'" (ends with)
//   - "a AND b OR c", where AND binds tighter than OR
//   - "Dept == null" and "Dept != null"
//
// Values are quoted strings, numbers, true/false, null, or bare words
// (taken as strings). An empty expression yields a nil predicate.
func ParseFilter(filter string) (queryir.Expr, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}

	orParts, err := splitKeyword(filter, "or")
	if err != nil {
		return nil, err
	}
	if len(orParts) > 1 {
		terms := make([]queryir.Expr, 0, len(orParts))
		for _, part := range orParts {
			term, err := parseConjunction(part)
			if err != nil {
				return nil, err
			}
			terms = append(terms, term)
		}
		return queryir.AnyOf(terms...), nil
	}
	return parseConjunction(filter)
}

func parseConjunction(expr string) (queryir.Expr, error) {
	andParts, err := splitKeyword(expr, "and")
	if err != nil {
		return nil, err
	}
	if len(andParts) == 1 {
		return parseComparison(andParts[0])
	}

	terms := make([]queryir.Expr, 0, len(andParts))
	for _, part := range andParts {
		term, err := parseComparison(part)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return queryir.AllOf(terms...), nil
}

// splitKeyword splits expr on a whitespace-delimited keyword (case
// insensitive), ignoring occurrences inside quoted strings.
func splitKeyword(expr, keyword string) ([]string, error) {
	var (
		parts []string
		start int
		quote byte
	)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case isSpace(c) && i+1+len(keyword) < len(expr) &&
			strings.EqualFold(expr[i+1:i+1+len(keyword)], keyword) &&
			isSpace(expr[i+1+len(keyword)]):
			parts = append(parts, strings.TrimSpace(expr[start:i]))
			i += len(keyword)
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string in filter: %s", expr)
	}
	parts = append(parts, strings.TrimSpace(expr[start:]))

	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty term around %s in filter: %s", strings.ToUpper(keyword), expr)
		}
	}
	return parts, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// parseComparison parses a single "member op value" term.
func parseComparison(expr string) (queryir.Expr, error) {
	expr = strings.TrimSpace(expr)

	for _, cand := range comparisonOps {
		idx := indexUnquoted(expr, cand.token)
		if idx < 0 {
			continue
		}
		member := strings.TrimSpace(expr[:idx])
		raw := strings.TrimSpace(expr[idx+len(cand.token):])
		if member == "" || raw == "" {
			return nil, fmt.Errorf("incomplete comparison: %s", expr)
		}
		member = unquote(member)

		if cand.like {
			return queryir.Match{Kind: cand.match, Member: member, Value: unquote(raw)}, nil
		}
		return queryir.Compare{Op: cand.op, Left: queryir.M(member), Right: queryir.L(parseValue(raw))}, nil
	}
	return nil, fmt.Errorf("unsupported expression (no comparison operator found): %s", expr)
}

// indexUnquoted returns the index of the first token outside quotes, or -1.
func indexUnquoted(s, token string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(s[i:], token):
			return i
		}
	}
	return -1
}

// parseValue converts a literal's text to a typed value.
func parseValue(raw string) any {
	if s := unquote(raw); s != raw {
		return s
	}
	switch strings.ToLower(raw) {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
