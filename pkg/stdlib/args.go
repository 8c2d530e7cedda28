package stdlib

import (
	"github.com/axarion/axscript/pkg/interpreter"
)

type (
	value = interpreter.Value
	call  = interpreter.Call
)

var (
	undefined value = interpreter.Undefined{}
	null      value = interpreter.Null{}
)

func num(f float64) value  { return interpreter.Number{Value: f} }
func str(s string) value   { return interpreter.String{Value: s} }
func boolean(b bool) value { return interpreter.Bool{Value: b} }

func arg(args []value, i int) value {
	if i < len(args) {
		return args[i]
	}
	return undefined
}

func needArgs(c *call, args []value, n int) error {
	if len(args) < n {
		if n == 1 {
			return c.Errorf("%s() requires 1 argument, got %d", c.Name, len(args))
		}
		return c.Errorf("%s() requires %d arguments, got %d", c.Name, n, len(args))
	}
	return nil
}

func argNumber(c *call, args []value, i int) (float64, error) {
	if err := needArgs(c, args, i+1); err != nil {
		return 0, err
	}
	n, ok := args[i].(interpreter.Number)
	if !ok {
		return 0, c.TypeErrorf("%s() argument %d must be a number, got %s", c.Name, i+1, interpreter.TypeName(args[i]))
	}
	return n.Value, nil
}

func optNumber(c *call, args []value, i int, def float64) (float64, error) {
	switch v := arg(args, i).(type) {
	case interpreter.Undefined:
		return def, nil
	case interpreter.Number:
		return v.Value, nil
	}
	return argNumber(c, args, i)
}

func argString(c *call, args []value, i int) (string, error) {
	if err := needArgs(c, args, i+1); err != nil {
		return "", err
	}
	s, ok := args[i].(interpreter.String)
	if !ok {
		return "", c.TypeErrorf("%s() argument %d must be a string, got %s", c.Name, i+1, interpreter.TypeName(args[i]))
	}
	return s.Value, nil
}

func optString(c *call, args []value, i int, def string) (string, error) {
	if _, ok := arg(args, i).(interpreter.Undefined); ok {
		return def, nil
	}
	return argString(c, args, i)
}

func argArray(c *call, args []value, i int) (*interpreter.Array, error) {
	if err := needArgs(c, args, i+1); err != nil {
		return nil, err
	}
	a, ok := args[i].(*interpreter.Array)
	if !ok {
		return nil, c.TypeErrorf("%s() argument %d must be an array, got %s", c.Name, i+1, interpreter.TypeName(args[i]))
	}
	return a, nil
}

func argCallable(c *call, args []value, i int) (value, error) {
	if err := needArgs(c, args, i+1); err != nil {
		return nil, err
	}
	if !interpreter.IsCallable(args[i]) {
		return nil, c.TypeErrorf("%s() argument %d must be a function, got %s", c.Name, i+1, interpreter.TypeName(args[i]))
	}
	return args[i], nil
}

// invoke calls fn with as many of args as it declares, so callbacks may
// take (item), (item, index) or (item, index, array).
func invoke(c *call, fn value, args ...value) (value, error) {
	if n, ok := interpreter.Arity(fn); ok && n < len(args) {
		args = args[:n]
	}
	return c.Invoke(fn, args...)
}

// clampIndex resolves a possibly negative relative index against length n.
func clampIndex(i float64, n int) int {
	idx := int(i)
	if idx < 0 {
		idx += n
		if idx < 0 {
			idx = 0
		}
	}
	if idx > n {
		idx = n
	}
	return idx
}
