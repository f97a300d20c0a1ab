package queryir

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a result operator applied after filtering and ordering.
//
// This is a sealed interface - only types in this package implement it.
// The set is closed: aggregates (Count, LongCount, Sum, Average, Min, Max),
// element selectors (First, FirstOrDefault, Last, LastOrDefault, Single)
// and sequence shapers (Reverse, Skip, Take).
type Operator interface {
	operatorNode() // Marker method - seals interface to this package
	Name() string
}

// Count returns the number of rows as an int64.
type Count struct{}

// LongCount is Count; kept distinct so callers can express intent.
type LongCount struct{}

// Sum totals a member. An empty Member falls back to a single-member
// projection.
type Sum struct{ Member string }

// Average averages a member.
type Average struct{ Member string }

// Min returns the smallest value of a member.
type Min struct{ Member string }

// Max returns the largest value of a member.
type Max struct{ Member string }

// First returns the first element; an empty sequence is an error.
type First struct{}

// FirstOrDefault returns the first element or the zero value.
type FirstOrDefault struct{}

// Last returns the last element; an empty sequence is an error.
type Last struct{}

// LastOrDefault returns the last element or the zero value.
type LastOrDefault struct{}

// Single returns the only element; zero or several elements is an error.
type Single struct{}

// Reverse reverses the sequence.
type Reverse struct{}

// Skip drops the first N elements.
type Skip struct{ N int }

// Take keeps the first N elements.
type Take struct{ N int }

func (Count) operatorNode()          {}
func (LongCount) operatorNode()      {}
func (Sum) operatorNode()            {}
func (Average) operatorNode()        {}
func (Min) operatorNode()            {}
func (Max) operatorNode()            {}
func (First) operatorNode()          {}
func (FirstOrDefault) operatorNode() {}
func (Last) operatorNode()           {}
func (LastOrDefault) operatorNode()  {}
func (Single) operatorNode()         {}
func (Reverse) operatorNode()        {}
func (Skip) operatorNode()           {}
func (Take) operatorNode()           {}

func (Count) Name() string          { return "Count" }
func (LongCount) Name() string      { return "LongCount" }
func (Sum) Name() string            { return "Sum" }
func (Average) Name() string        { return "Average" }
func (Min) Name() string            { return "Min" }
func (Max) Name() string            { return "Max" }
func (First) Name() string          { return "First" }
func (FirstOrDefault) Name() string { return "FirstOrDefault" }
func (Last) Name() string           { return "Last" }
func (LastOrDefault) Name() string  { return "LastOrDefault" }
func (Single) Name() string         { return "Single" }
func (Reverse) Name() string        { return "Reverse" }
func (s Skip) Name() string         { return fmt.Sprintf("Skip(%d)", s.N) }
func (t Take) Name() string         { return fmt.Sprintf("Take(%d)", t.N) }

// IsAggregate reports whether op produces a single scalar value.
func IsAggregate(op Operator) bool {
	switch op.(type) {
	case Count, LongCount, Sum, Average, Min, Max:
		return true
	default:
		return false
	}
}

// IsElement reports whether op selects a single element of the sequence.
func IsElement(op Operator) bool {
	switch op.(type) {
	case First, FirstOrDefault, Last, LastOrDefault, Single:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether op ends the operator chain.
func IsTerminal(op Operator) bool {
	return IsAggregate(op) || IsElement(op)
}

// AggregateMember returns the member an aggregate reads, or "" for
// Count/LongCount and non-aggregates.
func AggregateMember(op Operator) string {
	switch o := op.(type) {
	case Sum:
		return o.Member
	case Average:
		return o.Member
	case Min:
		return o.Member
	case Max:
		return o.Member
	default:
		return ""
	}
}

// ParseOperator parses the textual form used by the command line:
// count, longcount, first, firstordefault, last, lastordefault, single,
// reverse, skip:N, take:N, sum:Member, average:Member, min:Member, max:Member.
func ParseOperator(text string) (Operator, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(text), ":")
	name = strings.ToLower(name)
	switch name {
	case "count":
		return Count{}, nil
	case "longcount":
		return LongCount{}, nil
	case "sum":
		return Sum{Member: arg}, nil
	case "average", "avg":
		return Average{Member: arg}, nil
	case "min":
		return Min{Member: arg}, nil
	case "max":
		return Max{Member: arg}, nil
	case "first":
		return First{}, nil
	case "firstordefault":
		return FirstOrDefault{}, nil
	case "last":
		return Last{}, nil
	case "lastordefault":
		return LastOrDefault{}, nil
	case "single":
		return Single{}, nil
	case "reverse":
		return Reverse{}, nil
	case "skip", "take":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("operator %q: expected %s:N", text, name)
		}
		if name == "skip" {
			return Skip{N: n}, nil
		}
		return Take{N: n}, nil
	default:
		return nil, fmt.Errorf("unknown operator %q", text)
	}
}
