package interpreter

import (
	"sort"
)

// FromNative converts a Go value crossing the host boundary into a script
// value. Maps become objects with sorted keys; unknown types are wrapped as
// host objects.
func FromNative(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Value:
		return val
	case bool:
		return Bool{Value: val}
	case float64:
		return Number{Value: val}
	case float32:
		return Number{Value: float64(val)}
	case int:
		return Number{Value: float64(val)}
	case int64:
		return Number{Value: float64(val)}
	case string:
		return String{Value: val}
	case []any:
		elems := make([]Value, len(val))
		for i, e := range val {
			elems[i] = FromNative(e)
		}
		return NewArray(elems)
	case []float64:
		elems := make([]Value, len(val))
		for i, e := range val {
			elems[i] = Number{Value: e}
		}
		return NewArray(elems)
	case []string:
		elems := make([]Value, len(val))
		for i, e := range val {
			elems[i] = String{Value: e}
		}
		return NewArray(elems)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromNative(val[k]))
		}
		return obj
	}
	return &HostObject{Target: v}
}

// ToNative converts a script value into plain Go data: nil, bool, float64,
// string, []any and map[string]any. Host objects unwrap to their target;
// functions and classes have no native form and become nil.
// Containers nested deeper than maxNativeDepth become nil, which also ends
// cycles.
func ToNative(v Value) any {
	return toNative(v, 0)
}

const maxNativeDepth = 32

func toNative(v Value, depth int) any {
	switch val := v.(type) {
	case nil, Undefined, Null:
		return nil
	case Bool:
		return val.Value
	case Number:
		return val.Value
	case String:
		return val.Value
	case *Array:
		if depth >= maxNativeDepth {
			return nil
		}
		out := make([]any, len(val.Elements))
		for i, e := range val.Elements {
			out[i] = toNative(e, depth+1)
		}
		return out
	case *Object:
		if depth >= maxNativeDepth {
			return nil
		}
		return objectToNative(val, depth)
	case *Instance:
		if depth >= maxNativeDepth {
			return nil
		}
		return objectToNative(val.Props, depth)
	case *HostObject:
		return val.Target
	}
	return nil
}

func objectToNative(o *Object, depth int) map[string]any {
	out := make(map[string]any, o.Len())
	for _, p := range o.Pairs {
		out[p.Key] = toNative(p.Value, depth+1)
	}
	return out
}
