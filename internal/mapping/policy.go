package mapping

import (
	"fmt"
	"strings"
	"unicode"
)

// StrictPolicy controls the one-to-one check between target properties and
// fetched columns.
type StrictPolicy int

const (
	StrictNone StrictPolicy = iota
	// StrictProperty requires every target property to have a source column.
	StrictProperty
	// StrictColumn requires every fetched column to have a target property.
	StrictColumn
	// StrictBoth applies both checks.
	StrictBoth
)

// ChecksProperties reports whether unmapped properties are rejected.
func (p StrictPolicy) ChecksProperties() bool {
	return p == StrictProperty || p == StrictBoth
}

// ChecksColumns reports whether unmapped columns are rejected.
func (p StrictPolicy) ChecksColumns() bool {
	return p == StrictColumn || p == StrictBoth
}

func (p StrictPolicy) String() string {
	switch p {
	case StrictNone:
		return "none"
	case StrictProperty:
		return "property"
	case StrictColumn:
		return "column"
	case StrictBoth:
		return "both"
	default:
		return fmt.Sprintf("StrictPolicy(%d)", int(p))
	}
}

// ParseStrictPolicy parses "none", "property", "column" or "both".
func ParseStrictPolicy(s string) (StrictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return StrictNone, nil
	case "property", "properties":
		return StrictProperty, nil
	case "column", "columns":
		return StrictColumn, nil
	case "both":
		return StrictBoth, nil
	default:
		return StrictNone, fmt.Errorf("invalid strict policy %q: must be none, property, column or both", s)
	}
}

// TrimPolicy controls whitespace trimming of textual cell values.
type TrimPolicy int

const (
	TrimNone TrimPolicy = iota
	TrimStart
	TrimEnd
	TrimBoth
)

// Apply trims s according to the policy.
func (p TrimPolicy) Apply(s string) string {
	switch p {
	case TrimStart:
		return strings.TrimLeftFunc(s, unicode.IsSpace)
	case TrimEnd:
		return strings.TrimRightFunc(s, unicode.IsSpace)
	case TrimBoth:
		return strings.TrimSpace(s)
	default:
		return s
	}
}

func (p TrimPolicy) String() string {
	switch p {
	case TrimNone:
		return "none"
	case TrimStart:
		return "start"
	case TrimEnd:
		return "end"
	case TrimBoth:
		return "both"
	default:
		return fmt.Sprintf("TrimPolicy(%d)", int(p))
	}
}

// ParseTrimPolicy parses "none", "start", "end" or "both".
func ParseTrimPolicy(s string) (TrimPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TrimNone, nil
	case "start":
		return TrimStart, nil
	case "end":
		return TrimEnd, nil
	case "both":
		return TrimBoth, nil
	default:
		return TrimNone, fmt.Errorf("invalid trim policy %q: must be none, start, end or both", s)
	}
}
