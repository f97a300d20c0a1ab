package materialize

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/sheetq/internal/mapping"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// Reflect builds a descriptor for the exported fields of struct T.
//
// The `sheet` tag selects the column:
//
//	Name  string `sheet:"Full Name"` // header "Full Name"
//	Score int    `sheet:"col:D"`     // column letter D
//	Notes string `sheet:"-"`         // skipped
//
// Untagged fields map to the header of the same name. The returned
// mappings cover the tagged fields and belong in the query's mapping
// Config.
func Reflect[T any]() (Descriptor[T], []mapping.ColumnMapping, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return Descriptor[T]{}, nil, fmt.Errorf("materialize: %s is not a struct", typ)
	}

	var (
		desc     Descriptor[T]
		mappings []mapping.ColumnMapping
	)
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}

		tag := sf.Tag.Get("sheet")
		if tag == "-" {
			continue
		}
		switch {
		case strings.HasPrefix(tag, "col:"):
			mappings = append(mappings, mapping.Letter(sf.Name, strings.TrimPrefix(tag, "col:")))
		case tag != "" && tag != sf.Name:
			mappings = append(mappings, mapping.Header(sf.Name, tag))
		}

		kind, err := kindOf(sf.Type)
		if err != nil {
			return Descriptor[T]{}, nil, fmt.Errorf("materialize: field %s: %w", sf.Name, err)
		}
		desc.Fields = append(desc.Fields, Field[T]{
			Name:  sf.Name,
			Kind:  kind,
			Set:   fieldSetter[T](i, sf.Type),
			Check: rangeCheck(sf.Type),
		})
	}
	return desc, mappings, nil
}

func kindOf(t reflect.Type) (Kind, error) {
	switch t {
	case timeType:
		return KindTime, nil
	case decimalType:
		return KindDecimal, nil
	}

	switch t.Kind() {
	case reflect.String:
		return KindString, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt, nil
	case reflect.Float32, reflect.Float64:
		return KindFloat, nil
	case reflect.Bool:
		return KindBool, nil
	case reflect.Interface:
		return KindAny, nil
	default:
		return 0, fmt.Errorf("unsupported type %s", t)
	}
}

// fieldSetter assigns a coerced value to field i, converting between
// numeric widths.
func fieldSetter[T any](i int, t reflect.Type) func(*T, any) {
	return func(dst *T, v any) {
		field := reflect.ValueOf(dst).Elem().Field(i)
		if v == nil {
			field.Set(reflect.Zero(t))
			return
		}
		field.Set(reflect.ValueOf(v).Convert(t))
	}
}

// rangeCheck rejects coerced numbers that do not fit the field's type,
// or nil when every value of the coerced kind fits.
func rangeCheck(t reflect.Type) func(any) error {
	zero := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return func(v any) error {
			if n, ok := v.(int64); ok && zero.OverflowInt(n) {
				return fmt.Errorf("%d overflows %s", n, t)
			}
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(v any) error {
			n, ok := v.(int64)
			if !ok {
				return nil
			}
			if n < 0 {
				return fmt.Errorf("%d is negative for %s", n, t)
			}
			if zero.OverflowUint(uint64(n)) {
				return fmt.Errorf("%d overflows %s", n, t)
			}
			return nil
		}
	case reflect.Float32:
		return func(v any) error {
			if f, ok := v.(float64); ok && zero.OverflowFloat(f) {
				return fmt.Errorf("%g overflows %s", f, t)
			}
			return nil
		}
	}
	return nil
}
