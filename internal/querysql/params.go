package querysql

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/sheetq/internal/qerr"
)

// excelEpoch is day zero of the 1900 date system, accounting for the
// phantom 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// toParam converts a literal to a Go native type for a SQL parameter.
// Integers widen to int64, floats to float64, bools to 0/1, times to an
// Excel serial date and decimals to their nearest float64.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return uintParam(uint64(val))
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return uintParam(val)
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case time.Time:
		return SerialDate(val), nil
	case decimal.Decimal:
		return val.InexactFloat64(), nil
	case *decimal.Decimal:
		if val == nil {
			return nil, nil
		}
		return val.InexactFloat64(), nil
	default:
		return nil, qerr.New(qerr.ErrCodeUnsupportedQuery, "unsupported literal type for SQL parameter: %T", v)
	}
}

func uintParam(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, qerr.New(qerr.ErrCodeUnsupportedQuery, "literal %d overflows int64", v)
	}
	return int64(v), nil
}

// SerialDate returns t as an Excel serial date: days since 1899-12-30 with
// the time of day as the fraction. The wall clock of t is used as is.
func SerialDate(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return float64(wall.Sub(excelEpoch)) / float64(24*time.Hour)
}
