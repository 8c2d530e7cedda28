package stdlib

import (
	"strings"

	"github.com/axarion/axscript/pkg/interpreter"
)

// JSONModule returns the exports of the JSON module.
func JSONModule() *interpreter.Object {
	return module([]member{
		{"parse", jsonParse},
		{"stringify", jsonStringify},
	})
}

// parse(text) → value; object keys keep their document order
func jsonParse(c *call, args []value) (value, error) {
	text, err := argString(c, args, 0)
	if err != nil {
		return nil, err
	}
	v, err := interpreter.ParseJSON([]byte(text))
	if err != nil {
		return nil, c.Errorf("JSON.parse: %v", err)
	}
	return v, nil
}

// stringify(v, indent?) → JSON text; indent is a space count or a string
func jsonStringify(c *call, args []value) (value, error) {
	if err := needArgs(c, args, 1); err != nil {
		return nil, err
	}
	indent := ""
	switch in := arg(args, 1).(type) {
	case interpreter.Undefined, interpreter.Null:
	case interpreter.Number:
		n := int(in.Value)
		if n > 10 {
			n = 10
		}
		if n > 0 {
			indent = strings.Repeat(" ", n)
		}
	case interpreter.String:
		indent = in.Value
	default:
		return nil, c.TypeErrorf("stringify() indent must be a number or string, got %s", interpreter.TypeName(in))
	}
	out, err := interpreter.ValueToJSON(args[0], indent)
	if err != nil {
		return nil, c.Errorf("JSON.stringify: %v", err)
	}
	return str(string(out)), nil
}
