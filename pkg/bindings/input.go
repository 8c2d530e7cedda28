package bindings

import (
	"github.com/axarion/axscript/pkg/capabilities"
	"github.com/axarion/axscript/pkg/interpreter"
)

// Axis names getMovement reads.
const (
	AxisHorizontal = "horizontal"
	AxisVertical   = "vertical"
)

func inputBindings() []Def {
	return []Def{
		{
			Name: "keyPressed", Mode: "read", Capability: capabilities.CapInput,
			Usage:   "keyPressed(key) → boolean",
			Default: falseValue,
			Execute: keyQuery(capabilities.Input.KeyPressed),
		},
		{
			Name: "keyJustPressed", Mode: "read", Capability: capabilities.CapInput,
			Usage:   "keyJustPressed(key) → boolean",
			Default: falseValue,
			Execute: keyQuery(capabilities.Input.KeyJustPressed),
		},
		{
			Name: "mouseClicked", Mode: "read", Capability: capabilities.CapInput,
			Usage:   "mouseClicked(button = 0) → boolean",
			Default: falseValue,
			Execute: buttonQuery(capabilities.Input.MouseClicked),
		},
		{
			Name: "mousePressed", Mode: "read", Capability: capabilities.CapInput,
			Usage:   "mousePressed(button = 0) → boolean",
			Default: falseValue,
			Execute: buttonQuery(capabilities.Input.MousePressed),
		},
		{
			Name: "getMousePos", Mode: "read", Capability: capabilities.CapInput,
			Usage:   "getMousePos() → {x, y}",
			Default: zeroVec,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				return vec(target.(capabilities.Input).MousePosition()), nil
			},
		},
		{
			Name: "getAxis", Mode: "read", Capability: capabilities.CapInput,
			Usage:   "getAxis(name) → number in [-1, 1]",
			Default: zero,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				name, err := text(c, args, 0)
				if err != nil {
					return nil, err
				}
				return interpreter.Number{Value: target.(capabilities.Input).Axis(name)}, nil
			},
		},
		{
			Name: "getMovement", Mode: "read", Capability: capabilities.CapInput,
			Usage:   "getMovement() → {x, y}",
			Default: zeroVec,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				in := target.(capabilities.Input)
				return vec(in.Axis(AxisHorizontal), in.Axis(AxisVertical)), nil
			},
		},
	}
}

func keyQuery(query func(capabilities.Input, string) bool) func(*interpreter.Call, any, []interpreter.Value) (interpreter.Value, error) {
	return func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
		key, err := text(c, args, 0)
		if err != nil {
			return nil, err
		}
		return interpreter.Bool{Value: query(target.(capabilities.Input), key)}, nil
	}
}

func buttonQuery(query func(capabilities.Input, int) bool) func(*interpreter.Call, any, []interpreter.Value) (interpreter.Value, error) {
	return func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
		button, err := optNumber(c, args, 0, 0)
		if err != nil {
			return nil, err
		}
		return interpreter.Bool{Value: query(target.(capabilities.Input), int(button))}, nil
	}
}

// Safe defaults. Each returns a fresh value so scripts cannot share state
// through them.
func null() interpreter.Value       { return interpreter.Null{} }
func undefined() interpreter.Value  { return interpreter.Undefined{} }
func falseValue() interpreter.Value { return interpreter.Bool{Value: false} }
func zero() interpreter.Value       { return interpreter.Number{Value: 0} }
func emptyArray() interpreter.Value { return interpreter.NewArray(nil) }
func zeroVec() interpreter.Value    { return vec(0, 0) }

func vec(x, y float64) interpreter.Value {
	return interpreter.NewObject(
		interpreter.KeyValue{Key: "x", Value: interpreter.Number{Value: x}},
		interpreter.KeyValue{Key: "y", Value: interpreter.Number{Value: y}},
	)
}

func number(c *interpreter.Call, args []interpreter.Value, i int) (float64, error) {
	if i >= len(args) {
		return 0, c.Errorf("%s() requires argument %d", c.Name, i+1)
	}
	n, ok := args[i].(interpreter.Number)
	if !ok {
		return 0, c.TypeErrorf("%s() argument %d must be a number, got %s", c.Name, i+1, interpreter.TypeName(args[i]))
	}
	return n.Value, nil
}

func optNumber(c *interpreter.Call, args []interpreter.Value, i int, def float64) (float64, error) {
	if i >= len(args) {
		return def, nil
	}
	if _, ok := args[i].(interpreter.Undefined); ok {
		return def, nil
	}
	return number(c, args, i)
}

func pair(c *interpreter.Call, args []interpreter.Value) (float64, float64, error) {
	a, err := number(c, args, 0)
	if err != nil {
		return 0, 0, err
	}
	b, err := number(c, args, 1)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func text(c *interpreter.Call, args []interpreter.Value, i int) (string, error) {
	if i >= len(args) {
		return "", c.Errorf("%s() requires argument %d", c.Name, i+1)
	}
	s, ok := args[i].(interpreter.String)
	if !ok {
		return "", c.TypeErrorf("%s() argument %d must be a string, got %s", c.Name, i+1, interpreter.TypeName(args[i]))
	}
	return s.Value, nil
}
