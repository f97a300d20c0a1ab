package queryir

import (
	"github.com/roach88/sheetq/internal/colref"
)

// Query is one structured query. Build it once and treat it as immutable.
//
// Semantics:
//
//	SELECT <Select> FROM <From> WHERE <Filter> ORDER BY <OrderBy>
//	then apply <Operators> in order
//
// Example:
//
//	Query{
//	  From:      Table{Name: "People"},
//	  Filter:    Gtv("Age", 30),
//	  OrderBy:   []Ordering{{Member: "Name"}},
//	  Operators: []Operator{Skip{N: 2}, First{}},
//	}
type Query struct {
	From      Table
	Filter    Expr       // nil = no filter
	Select    []string   // projected properties; empty = all columns
	OrderBy   []Ordering // declaration order, no implicit tiebreaker
	Operators []Operator // applied in order
}

// Table identifies the worksheet a query reads.
type Table struct {
	Name     string       // worksheet name
	Range    colref.Range // zero = whole sheet
	NoHeader bool         // first row is data; columns are named F1..Fn
}

// Key returns the native table name for this worksheet view, e.g.
// "People", "People$B1:F100" or "People$NOHDR".
func (t Table) Key() string {
	key := t.Name
	if !t.Range.IsZero() {
		key += "$" + t.Range.String()
	}
	if t.NoHeader {
		key += "$NOHDR"
	}
	return key
}

// Ordering sorts by one member.
type Ordering struct {
	Member     string
	Descending bool
}

// Expr is a node of the filter predicate tree.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Member references a target property.
type Member struct {
	Name string
}

func (Member) exprNode() {}

// Literal is a constant value. It is always bound as a parameter, never
// interpolated into the statement text. A nil Value compared with Eq or Ne
// becomes IS NULL / IS NOT NULL.
type Literal struct {
	Value any
}

func (Literal) exprNode() {}

// CompareOp is a binary comparison operator.
type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// String returns the SQL spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// Compare is a binary comparison between two expressions.
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (Compare) exprNode() {}

// And is true when every term is true. An empty And is always true.
type And struct {
	Terms []Expr
}

func (And) exprNode() {}

// Or is true when any term is true. An empty Or is always false.
type Or struct {
	Terms []Expr
}

func (Or) exprNode() {}

// Not negates its operand.
type Not struct {
	Expr Expr
}

func (Not) exprNode() {}

// MatchKind selects a string match.
type MatchKind int

const (
	Contains MatchKind = iota
	StartsWith
	EndsWith
)

// Match is a case-insensitive substring test on a member, translated to
// LIKE with the pattern bound as a parameter.
type Match struct {
	Kind   MatchKind
	Member string
	Value  string
}

func (Match) exprNode() {}

// M is shorthand for Member{Name: name}.
func M(name string) Member { return Member{Name: name} }

// L is shorthand for Literal{Value: v}.
func L(v any) Literal { return Literal{Value: v} }

// Eqv compares member == value.
func Eqv(member string, v any) Compare { return Compare{Op: Eq, Left: M(member), Right: L(v)} }

// Nev compares member != value.
func Nev(member string, v any) Compare { return Compare{Op: Ne, Left: M(member), Right: L(v)} }

// Ltv compares member < value.
func Ltv(member string, v any) Compare { return Compare{Op: Lt, Left: M(member), Right: L(v)} }

// Lev compares member <= value.
func Lev(member string, v any) Compare { return Compare{Op: Le, Left: M(member), Right: L(v)} }

// Gtv compares member > value.
func Gtv(member string, v any) Compare { return Compare{Op: Gt, Left: M(member), Right: L(v)} }

// Gev compares member >= value.
func Gev(member string, v any) Compare { return Compare{Op: Ge, Left: M(member), Right: L(v)} }

// AllOf builds an And.
func AllOf(terms ...Expr) And { return And{Terms: terms} }

// AnyOf builds an Or.
func AnyOf(terms ...Expr) Or { return Or{Terms: terms} }
