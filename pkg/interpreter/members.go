package interpreter

import (
	"math"
	"unicode/utf8"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/capabilities"
	"github.com/axarion/axscript/pkg/diagnostics"
)

func (in *interp) getMember(obj Value, name string, span ast.Span) (Value, error) {
	switch o := obj.(type) {
	case nil, Undefined, Null:
		return Undefined{}, nil

	case *Array:
		if name == "length" {
			return Number{Value: float64(len(o.Elements))}, nil
		}
		return in.prototypeMember("array", o, name), nil

	case String:
		if name == "length" {
			return Number{Value: float64(utf8.RuneCountInString(o.Value))}, nil
		}
		return in.prototypeMember("string", o, name), nil

	case *Object:
		if v, ok := o.Get(name); ok {
			return v, nil
		}
		return Undefined{}, nil

	case *Instance:
		if v, ok := o.Props.Get(name); ok {
			return v, nil
		}
		if m, ok := o.Class.FindMethod(name); ok {
			return &BoundMethod{Receiver: o, Method: m}, nil
		}
		return nil, newError(diagnostics.EProperty, span, "Undefined property '%s' on instance of %s", name, o.Class.Name)

	case *HostObject:
		return in.hostGet(o, name, span)
	}
	return nil, newError(diagnostics.EProperty, span, "Cannot read property '%s' of %s", name, TypeName(obj))
}

// prototypeMember returns the named array or string method bound to recv,
// or undefined.
func (in *interp) prototypeMember(kind string, recv Value, name string) Value {
	proto := in.opts.Prototypes[kind]
	if proto == nil {
		return Undefined{}
	}
	fn, ok := proto.Get(name)
	if !ok || !IsCallable(fn) {
		return Undefined{}
	}
	return NewBuiltin(name, func(c *Call, args []Value) (Value, error) {
		return c.Invoke(fn, append([]Value{recv}, args...)...)
	})
}

func (in *interp) setMember(obj Value, name string, val Value, span ast.Span) error {
	switch o := obj.(type) {
	case *Instance:
		o.Props.Set(name, val)
		return nil
	case *Object:
		if name == "length" {
			return nil
		}
		o.Set(name, val)
		return nil
	case *Array, String:
		if name == "length" {
			return nil
		}
	case *HostObject:
		return in.hostSet(o, name, val, span)
	}
	return newError(diagnostics.EProperty, span, "Cannot set property '%s' on %s", name, TypeName(obj))
}

func (in *interp) getIndex(obj, idx Value, span ast.Span) (Value, error) {
	switch o := obj.(type) {
	case nil, Undefined, Null:
		return Undefined{}, nil

	case *Array:
		i, ok := arrayIndex(idx)
		if !ok || i < 0 || i >= len(o.Elements) {
			return Undefined{}, nil
		}
		return o.Elements[i], nil

	case String:
		i, ok := arrayIndex(idx)
		runes := []rune(o.Value)
		if !ok || i < 0 || i >= len(runes) {
			return Undefined{}, nil
		}
		return String{Value: string(runes[i])}, nil

	case *Object:
		if v, ok := o.Get(ToDisplayString(idx)); ok {
			return v, nil
		}
		return Undefined{}, nil

	case *Instance, *HostObject:
		return in.getMember(obj, ToDisplayString(idx), span)
	}
	return nil, newError(diagnostics.EProperty, span, "Cannot index %s", TypeName(obj))
}

func (in *interp) setIndex(obj, idx, val Value, span ast.Span) error {
	switch o := obj.(type) {
	case *Array:
		n, ok := idx.(Number)
		if !ok || n.Value != math.Trunc(n.Value) || math.IsInf(n.Value, 0) {
			return newError(diagnostics.EProperty, span, "Invalid array index: %s", ToDisplayString(idx))
		}
		if n.Value < 0 || n.Value >= maxArrayLength {
			return newError(diagnostics.EProperty, span, "Array index out of range: %s", FormatNumber(n.Value))
		}
		i := int(n.Value)
		for len(o.Elements) <= i {
			o.Elements = append(o.Elements, Null{})
		}
		o.Elements[i] = val
		return nil

	case *Object:
		o.Set(ToDisplayString(idx), val)
		return nil

	case *Instance, *HostObject:
		return in.setMember(obj, ToDisplayString(idx), val, span)
	}
	return newError(diagnostics.EProperty, span, "Cannot set index on %s", TypeName(obj))
}

// maxArrayLength bounds how far an index assignment may grow an array.
const maxArrayLength = 1 << 24

// arrayIndex converts an integral number to an index.
func arrayIndex(v Value) (int, bool) {
	n, ok := v.(Number)
	if !ok || n.Value != math.Trunc(n.Value) || math.Abs(n.Value) >= maxArrayLength {
		return 0, false
	}
	return int(n.Value), true
}

func (in *interp) hostGet(h *HostObject, name string, span ast.Span) (Value, error) {
	props, ok := h.Target.(capabilities.Properties)
	if !ok {
		return Undefined{}, nil
	}
	if !in.opts.Policy.IsAllowed(capabilities.CapProperties) {
		return nil, newError(diagnostics.ECapDenied, span, "capability '%s' denied by policy", capabilities.CapProperties)
	}
	v, ok := props.GetProperty(name)
	if !ok {
		return Undefined{}, nil
	}
	return FromNative(v), nil
}

func (in *interp) hostSet(h *HostObject, name string, val Value, span ast.Span) error {
	props, ok := h.Target.(capabilities.Properties)
	if !ok {
		return newError(diagnostics.EProperty, span, "Cannot set property '%s' on host object", name)
	}
	if !in.opts.Policy.IsAllowed(capabilities.CapProperties) {
		return newError(diagnostics.ECapDenied, span, "capability '%s' denied by policy", capabilities.CapProperties)
	}
	props.SetProperty(name, ToNative(val))
	return nil
}
