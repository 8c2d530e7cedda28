// Package interpreter implements the AXScript tree-walking interpreter.
package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/axarion/axscript/pkg/ast"
)

// Value is the interface for all AXScript runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	value() // sealed marker
}

// Undefined is the value of missing things: unset variables, absent keys,
// functions without a return.
type Undefined struct{}

func (Undefined) value() {}

// Null represents an explicit null.
type Null struct{}

func (Null) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// Number represents a numeric value.
type Number struct {
	Value float64
}

func (Number) value() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) value() {}

// Array is a mutable list shared by reference.
type Array struct {
	Elements []Value
}

func (*Array) value() {}

// KeyValue is a key-value pair in an ordered object.
type KeyValue struct {
	Key   string
	Value Value
}

// Object is a mutable string-keyed map that preserves insertion order.
type Object struct {
	Pairs []KeyValue
	index map[string]int // lazy index for lookups
}

func (*Object) value() {}

// Function is a user-defined function or method closed over its defining scope.
type Function struct {
	Name       string
	Params     []*ast.Param
	ReturnType string
	Body       *ast.Block
	Closure    *Env
	Owner      *Class // set for methods
}

func (*Function) value() {}

// Class holds a shared, read-only method table and an optional superclass.
type Class struct {
	Name    string
	Super   *Class
	Methods map[string]*Function
}

func (*Class) value() {}

// Instance is an object created by `new`; it owns its own properties.
type Instance struct {
	Class *Class
	Props *Object
}

func (*Instance) value() {}

// BoundMethod is a method looked up through an instance, remembering its receiver.
type BoundMethod struct {
	Receiver Value
	Method   *Function
}

func (*BoundMethod) value() {}

// BuiltinFunc implements a native function.
type BuiltinFunc func(c *Call, args []Value) (Value, error)

// Builtin is a native function exposed to scripts.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

func (*Builtin) value() {}

// HostObject wraps a host context object so scripts can read and write its properties.
type HostObject struct {
	Target any
}

func (*HostObject) value() {}

// NewUndefined creates an undefined value.
func NewUndefined() Value {
	return Undefined{}
}

// NewNull creates a null value.
func NewNull() Value {
	return Null{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewArray creates an array value. The slice is not copied.
func NewArray(elems []Value) *Array {
	if elems == nil {
		elems = []Value{}
	}
	return &Array{Elements: elems}
}

// NewObject creates an object from ordered pairs. Later duplicates win.
func NewObject(pairs ...KeyValue) *Object {
	o := &Object{}
	for _, p := range pairs {
		o.Set(p.Key, p.Value)
	}
	return o
}

// NewBuiltin wraps a Go function as a script-callable value.
func NewBuiltin(name string, fn BuiltinFunc) *Builtin {
	return &Builtin{Name: name, Fn: fn}
}

func (o *Object) ensureIndex() {
	if o.index == nil || len(o.index) != len(o.Pairs) {
		o.index = make(map[string]int, len(o.Pairs))
		for i, p := range o.Pairs {
			o.index[p.Key] = i
		}
	}
}

// Get returns the value bound to key.
func (o *Object) Get(key string) (Value, bool) {
	o.ensureIndex()
	if i, ok := o.index[key]; ok {
		return o.Pairs[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set binds key, keeping its original position when it already exists.
func (o *Object) Set(key string, v Value) {
	o.ensureIndex()
	if i, ok := o.index[key]; ok {
		o.Pairs[i].Value = v
		return
	}
	o.Pairs = append(o.Pairs, KeyValue{Key: key, Value: v})
	o.index[key] = len(o.Pairs) - 1
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Pairs))
	for i, p := range o.Pairs {
		keys[i] = p.Key
	}
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.Pairs)
}

// FindMethod looks a method up along the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for k := c; k != nil; k = k.Super {
		if m, ok := k.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// IsA reports whether c is the named class or inherits from it.
func (c *Class) IsA(name string) bool {
	for k := c; k != nil; k = k.Super {
		if k.Name == name {
			return true
		}
	}
	return false
}

// Truthy implements AXScript truthiness: null, undefined, false, 0, NaN, ""
// and empty arrays are falsy; everything else, including empty objects, is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Undefined, Null:
		return false
	case Bool:
		return val.Value
	case Number:
		return val.Value != 0 && !math.IsNaN(val.Value)
	case String:
		return val.Value != ""
	case *Array:
		return len(val.Elements) > 0
	default:
		return true
	}
}

// TypeName returns the name typeof reports for v.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *Array:
		return "array"
	case *Function, *BoundMethod, *Builtin:
		return "function"
	case *Class:
		return "class"
	default:
		return "object"
	}
}

// IsCallable reports whether v can be invoked.
func IsCallable(v Value) bool {
	switch v.(type) {
	case *Function, *BoundMethod, *Builtin:
		return true
	}
	return false
}

// Arity returns the declared parameter count of a user function or bound
// method. Builtins accept any count and report false.
func Arity(v Value) (int, bool) {
	switch f := v.(type) {
	case *Function:
		return len(f.Params), true
	case *BoundMethod:
		return len(f.Method.Params), true
	}
	return 0, false
}

// FormatNumber renders integral values without a decimal point.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// ToDisplayString converts v to the string used by print and concatenation.
func ToDisplayString(v Value) string {
	return display(v, false, 0)
}

const maxDisplayDepth = 8

func display(v Value, nested bool, depth int) string {
	if depth > maxDisplayDepth {
		return "..."
	}
	switch val := v.(type) {
	case nil, Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		if val.Value {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(val.Value)
	case String:
		if nested {
			return strconv.Quote(val.Value)
		}
		return val.Value
	case *Array:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			parts[i] = display(e, true, depth+1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Object:
		return displayPairs(val, depth)
	case *Instance:
		return val.Class.Name + " " + displayPairs(val.Props, depth)
	case *Function:
		if val.Name == "" {
			return "<function>"
		}
		return fmt.Sprintf("<function %s>", val.Name)
	case *BoundMethod:
		return fmt.Sprintf("<method %s>", val.Method.Name)
	case *Builtin:
		return fmt.Sprintf("<builtin %s>", val.Name)
	case *Class:
		return fmt.Sprintf("<class %s>", val.Name)
	case *HostObject:
		if p, ok := val.Target.(interface{ GetProperty(string) (any, bool) }); ok {
			if name, ok := p.GetProperty("name"); ok {
				return fmt.Sprintf("<object %v>", name)
			}
		}
		return "<object>"
	}
	return "<unknown>"
}

func displayPairs(o *Object, depth int) string {
	if o.Len() == 0 {
		return "{}"
	}
	parts := make([]string, len(o.Pairs))
	for i, p := range o.Pairs {
		parts[i] = p.Key + ": " + display(p.Value, true, depth+1)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Equal compares two values. Primitives compare by value, reference types by
// identity. In loose mode null and undefined are equal to each other.
func Equal(a, b Value, strict bool) bool {
	switch av := a.(type) {
	case nil, Undefined:
		switch b.(type) {
		case nil, Undefined:
			return true
		case Null:
			return !strict
		}
		return false
	case Null:
		switch b.(type) {
		case Null:
			return true
		case nil, Undefined:
			return !strict
		}
		return false
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case *HostObject:
		bv, ok := b.(*HostObject)
		return ok && av.Target == bv.Target
	case *BoundMethod:
		bv, ok := b.(*BoundMethod)
		return ok && av.Method == bv.Method && Equal(av.Receiver, bv.Receiver, true)
	}
	return a == b
}
