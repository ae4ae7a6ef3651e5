package lang

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Normalize converts a raw scalar value into its canonical string form for
// emission:
//
//   - integers render in decimal with no separators
//   - floats render in the shortest round-trippable form, dropping a zero
//     fractional part entirely (3.0 becomes "3")
//   - booleans render as "true" or "false"
//   - nil renders as "null"
//   - strings pass through unchanged
//
// All property values, entity names, and parent references pass through
// here exactly once; expressions always operate on the original typed
// value, never on its normalized form.
func Normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x))
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatFloat renders the shortest decimal representation that parses back
// to the same value. Precision -1 already drops a zero fractional part.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Number is a scalar numeric value that remembers whether it originated
// from an integral source. It is the currency of the range operation.
type Number struct {
	Float   float64
	IsInt   bool
	Integer int64
}

// Value returns the number as int64 or float64 depending on provenance.
func (n Number) Value() any {
	if n.IsInt {
		return n.Integer
	}

	return n.Float
}

// ToNumber coerces a raw scalar into a [Number]. Integers, floats, and
// numeric strings are accepted; everything else fails with [ErrNotNumeric].
func ToNumber(v any) (Number, error) {
	switch x := v.(type) {
	case int:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case int8:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case int16:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case int32:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case int64:
		return Number{Float: float64(x), IsInt: true, Integer: x}, nil
	case uint:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case uint8:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case uint16:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case uint32:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case uint64:
		return Number{Float: float64(x), IsInt: true, Integer: int64(x)}, nil
	case float32:
		return Number{Float: float64(x)}, nil
	case float64:
		return Number{Float: x}, nil
	case string:
		s := strings.TrimSpace(x)

		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Number{Float: float64(i), IsInt: true, Integer: i}, nil
		}

		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Number{Float: f}, nil
		}

		return Number{}, ErrNotNumeric.With(slog.String("value", x))
	default:
		return Number{}, ErrNotNumeric.With(slog.Any("value", v))
	}
}

// runtime value helpers used by the evaluator.

// toInt64 widens any Go integer kind to int64.
// The second result reports whether v was an integer kind.
func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	default:
		return 0, false
	}
}

// toFloat64 widens any Go numeric kind to float64.
// The second result reports whether v was numeric at all.
func toFloat64(v any) (float64, bool) {
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}

	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// isFloat reports whether v is a floating-point kind.
func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}

// intPow computes base**exp for non-negative integer exponents without
// losing precision to float conversion.
func intPow(base, exp int64) int64 {
	result := int64(1)

	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}

		base *= base
		exp >>= 1
	}

	return result
}

// typeName reports a Python-flavored type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "str"
	case bool:
		return "bool"
	case float32, float64:
		return "float"
	default:
		if _, ok := toInt64(v); ok {
			return "int"
		}

		return fmt.Sprintf("%T", v)
	}
}
