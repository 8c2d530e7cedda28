package interpreter

import "github.com/axarion/axscript/pkg/types"

// maxInferDepth bounds how far InferType looks into nested arrays.
const maxInferDepth = 8

// InferType maps a runtime value to its static type. Arrays get an element
// type only when every element agrees; arrays nested deeper than
// maxInferDepth are any[].
func InferType(v Value) types.TypeInfo {
	return inferType(v, 0)
}

func inferType(v Value, depth int) types.TypeInfo {
	switch val := v.(type) {
	case nil, Undefined:
		return types.Undefined()
	case Null:
		return types.Null()
	case Bool:
		return types.Boolean()
	case Number:
		return types.Number()
	case String:
		return types.String()
	case *Array:
		if len(val.Elements) == 0 {
			return types.TypeInfo{Kind: types.KindArray}
		}
		if depth >= maxInferDepth {
			return types.ArrayOf(types.Any())
		}
		elem := inferType(val.Elements[0], depth+1)
		for _, e := range val.Elements[1:] {
			t := inferType(e, depth+1)
			if t.Kind != elem.Kind || t.ClassName != elem.ClassName {
				return types.ArrayOf(types.Any())
			}
		}
		return types.ArrayOf(elem)
	case *Instance:
		return types.Class(val.Class.Name)
	case *Function, *BoundMethod, *Builtin:
		return types.Function()
	case *Object, *HostObject:
		return types.Object()
	}
	return types.Any()
}

// conforms reports whether v satisfies an annotation. Instances of a
// subclass satisfy their superclass's annotation.
func conforms(v Value, want types.TypeInfo) bool {
	switch want.Kind {
	case types.KindClass:
		inst, ok := v.(*Instance)
		return ok && inst.Class.IsA(want.ClassName)
	case types.KindArray:
		arr, ok := v.(*Array)
		if !ok {
			return false
		}
		if want.Elem == nil {
			return true
		}
		for _, e := range arr.Elements {
			if !conforms(e, *want.Elem) {
				return false
			}
		}
		return true
	}
	return InferType(v).IsCompatibleWith(want)
}
