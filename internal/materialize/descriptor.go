// Package materialize converts result rows into caller values.
//
// Typed results are described by a Descriptor: an explicit list of
// settable fields, each with a value Kind. Every value read from the
// source is trimmed, optionally transformed, then coerced to the field's
// Kind before the setter runs. Dynamic results are returned as Row
// records addressable by position or header name.
package materialize

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the value type a field setter receives.
type Kind int

const (
	KindAny     Kind = iota // value as read, nil allowed
	KindString              // string
	KindInt                 // int64
	KindFloat               // float64
	KindBool                // bool
	KindTime                // time.Time
	KindDecimal             // decimal.Decimal
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindString:
		return "string"
	case KindInt:
		return "int64"
	case KindFloat:
		return "float64"
	case KindBool:
		return "bool"
	case KindTime:
		return "time.Time"
	case KindDecimal:
		return "decimal.Decimal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field is one settable property of T.
//
// Set receives a value of the Go type named by Kind; the zero value of
// that type when the cell is empty. Check, when set, vets the coerced
// value before Set; an error fails the row as a coercion failure.
type Field[T any] struct {
	Name  string
	Kind  Kind
	Set   func(*T, any)
	Check func(any) error
}

// Descriptor lists the settable properties of T.
type Descriptor[T any] struct {
	Fields []Field[T]
}

// Describe creates a descriptor from fields.
func Describe[T any](fields ...Field[T]) Descriptor[T] {
	return Descriptor[T]{Fields: fields}
}

// Names returns the property names in declaration order.
func (d Descriptor[T]) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// String declares a string property.
func String[T any](name string, set func(*T, string)) Field[T] {
	return Field[T]{Name: name, Kind: KindString, Set: func(t *T, v any) { set(t, v.(string)) }}
}

// Int declares an integer property.
func Int[T any](name string, set func(*T, int64)) Field[T] {
	return Field[T]{Name: name, Kind: KindInt, Set: func(t *T, v any) { set(t, v.(int64)) }}
}

// Float declares a floating-point property.
func Float[T any](name string, set func(*T, float64)) Field[T] {
	return Field[T]{Name: name, Kind: KindFloat, Set: func(t *T, v any) { set(t, v.(float64)) }}
}

// Bool declares a boolean property.
func Bool[T any](name string, set func(*T, bool)) Field[T] {
	return Field[T]{Name: name, Kind: KindBool, Set: func(t *T, v any) { set(t, v.(bool)) }}
}

// Time declares a date/time property. Numeric cells are read as Excel
// serial dates.
func Time[T any](name string, set func(*T, time.Time)) Field[T] {
	return Field[T]{Name: name, Kind: KindTime, Set: func(t *T, v any) { set(t, v.(time.Time)) }}
}

// Decimal declares an exact decimal property.
func Decimal[T any](name string, set func(*T, decimal.Decimal)) Field[T] {
	return Field[T]{Name: name, Kind: KindDecimal, Set: func(t *T, v any) { set(t, v.(decimal.Decimal)) }}
}

// Any declares a property that receives the value unconverted.
func Any[T any](name string, set func(*T, any)) Field[T] {
	return Field[T]{Name: name, Kind: KindAny, Set: set}
}
