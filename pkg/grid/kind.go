package grid

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
)

// Kind is the primitive kind of a column value. A column locks onto the kind
// of the first non-null value it stores; every later non-null value in that
// column must have the same kind.
type Kind int

// Column value kinds.
const (
	// KindUnknown marks a column that has only seen null so far.
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindBool
	KindBigInt
	KindArray
	KindObject
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindBigInt:
		return "bigint"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// normalizeValue maps an arbitrary input value to its stored representation
// and kind. Numbers collapse to float64 so equality and ordering behave the
// same regardless of the Go type a caller happened to hold. Returns
// ErrNestedContainer for container values and ErrNotStorable for anything
// outside the closed kind set.
func normalizeValue(v any) (any, Kind, error) {
	switch val := v.(type) {
	case nil:
		return nil, KindUnknown, nil
	case string:
		return val, KindString, nil
	case bool:
		return val, KindBool, nil
	case float64:
		return val, KindNumber, nil
	case float32:
		return float64(val), KindNumber, nil
	case int:
		return float64(val), KindNumber, nil
	case int8:
		return float64(val), KindNumber, nil
	case int16:
		return float64(val), KindNumber, nil
	case int32:
		return float64(val), KindNumber, nil
	case int64:
		return float64(val), KindNumber, nil
	case uint:
		return float64(val), KindNumber, nil
	case uint8:
		return float64(val), KindNumber, nil
	case uint16:
		return float64(val), KindNumber, nil
	case uint32:
		return float64(val), KindNumber, nil
	case uint64:
		return float64(val), KindNumber, nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, KindUnknown, fmt.Errorf("%w: %q is not a number", ErrNotStorable, string(val))
		}
		return f, KindNumber, nil
	case *big.Int:
		if val == nil {
			return nil, KindUnknown, nil
		}
		return new(big.Int).Set(val), KindBigInt, nil
	case []any:
		return val, KindArray, nil
	case map[string]any:
		return val, KindObject, nil
	case *Table:
		return nil, KindUnknown, fmt.Errorf("%w: a Table cannot be a cell value", ErrNestedContainer)
	case *Record:
		return nil, KindUnknown, fmt.Errorf("%w: a Record cannot be a cell value", ErrNestedContainer)
	default:
		return nil, KindUnknown, fmt.Errorf("%w: %T", ErrNotStorable, v)
	}
}

// valuesEqual reports whether two stored (normalized) values are equal.
// Used by the equality-condition search.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *big.Int:
		bv, ok := b.(*big.Int)
		return ok && av.Cmp(bv) == 0
	default:
		// Arrays and objects compare structurally.
		return reflect.DeepEqual(a, b)
	}
}

// scalarString renders a string-convertible scalar the way the Record
// stores it. Returns false for values outside the scalar set.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case int:
		return strconv.Itoa(val), true
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), true
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), true
	case json.Number:
		return string(val), true
	case *big.Int:
		if val == nil {
			return "", false
		}
		return val.String(), true
	default:
		return "", false
	}
}
