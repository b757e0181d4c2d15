// Package deepcopy implements the structural clone routine used by the
// grid containers to enforce their copy-on-access ownership model.
//
// The algorithm walks plain maps and slices recursively, tracking already
// visited collections so self-referential structures terminate. Values that
// know how to copy themselves (see Cloner) are delegated to; anything else
// that is not a plain collection or primitive is handed to a caller-supplied
// conversion hook.
package deepcopy

import "reflect"

// Cloner is implemented by values that own their copy semantics. The clone
// walk calls CloneValue instead of copying such values structurally, so
// internal invariants survive the copy.
type Cloner interface {
	CloneValue() any
}

// Convert transforms an opaque value encountered during a clone. It must be
// idempotent and side-effect free: the walk may invoke it any number of
// times for the same value. The default is identity.
type Convert func(v any) any

// visit identifies a collection already copied in the current walk.
// Keyed the same way reflect.DeepEqual tracks visited nodes.
type visit struct {
	ptr  uintptr
	kind reflect.Kind
}

// Clone returns an independent copy of v using the identity conversion for
// opaque values. It never fails; unknown types degrade to pass-through.
func Clone(v any) any {
	return CloneWith(v, nil)
}

// CloneWith returns an independent copy of v, passing opaque values through
// convert. A nil convert means identity.
func CloneWith(v any, convert Convert) any {
	return cloneValue(v, convert, make(map[visit]any))
}

func cloneValue(v any, convert Convert, seen map[visit]any) any {
	if v == nil {
		return nil
	}

	if c, ok := v.(Cloner); ok {
		return c.CloneValue()
	}

	switch val := v.(type) {
	case map[string]any:
		key := visit{reflect.ValueOf(val).Pointer(), reflect.Map}
		if dup, ok := seen[key]; ok {
			return dup
		}
		out := make(map[string]any, len(val))
		seen[key] = out
		for k, elem := range val {
			out[k] = cloneValue(elem, convert, seen)
		}
		return out

	case []any:
		key := visit{reflect.ValueOf(val).Pointer(), reflect.Slice}
		if dup, ok := seen[key]; ok {
			return dup
		}
		out := make([]any, len(val))
		seen[key] = out
		for i, elem := range val {
			out[i] = cloneValue(elem, convert, seen)
		}
		return out
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		// Primitives are immutable; share them.
		return v
	}

	if convert != nil {
		return convert(v)
	}
	return v
}
