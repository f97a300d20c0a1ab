package materialize

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// Coerce converts a source value to the Go type of kind. nil yields the
// zero value of that type.
func Coerce(v any, kind Kind) (any, error) {
	if v == nil {
		return zero(kind), nil
	}

	switch kind {
	case KindAny:
		return v, nil
	case KindString:
		return cast.ToStringE(v)
	case KindInt:
		return toInt(v)
	case KindFloat:
		if s, ok := v.(string); ok {
			return strconv.ParseFloat(s, 64)
		}
		return cast.ToFloat64E(v)
	case KindBool:
		return cast.ToBoolE(v)
	case KindTime:
		return toTime(v)
	case KindDecimal:
		return toDecimal(v)
	default:
		return nil, fmt.Errorf("unknown kind %s", kind)
	}
}

func zero(kind Kind) any {
	switch kind {
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	case KindTime:
		return time.Time{}
	case KindDecimal:
		return decimal.Zero
	default:
		return nil
	}
}

// toInt accepts integral numbers only; strings are parsed strictly, so
// surrounding whitespace is an error unless trimmed first.
func toInt(v any) (int64, error) {
	switch val := v.(type) {
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("unable to cast %q to int64", val)
		}
		v = f
	}
	if f, ok := v.(float64); ok && f != math.Trunc(f) {
		return 0, fmt.Errorf("%v has a fractional part", f)
	}
	return cast.ToInt64E(v)
}

// toTime reads numbers as Excel serial dates (1900 date system) and
// strings in any layout cast understands.
func toTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case int64:
		return excelize.ExcelDateToTime(float64(val), false)
	case float64:
		return excelize.ExcelDateToTime(val, false)
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return excelize.ExcelDateToTime(f, false)
		}
		return cast.ToTimeE(val)
	default:
		return cast.ToTimeE(v)
	}
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case string:
		return decimal.NewFromString(val)
	case int64:
		return decimal.NewFromInt(val), nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unable to cast %#v of type %T to decimal", v, v)
	}
}

// text renders a source value as the cell text a transform receives.
// nil is "".
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return cast.ToString(v)
	}
}
