package stdlib

import (
	"github.com/axarion/axscript/pkg/interpreter"
)

// predicate lifts a value test into a one-argument builtin that never fails.
func predicate(test func(v value) bool) interpreter.BuiltinFunc {
	return func(c *call, args []value) (value, error) {
		return boolean(test(arg(args, 0))), nil
	}
}

func isNumber(v value) bool {
	_, ok := v.(interpreter.Number)
	return ok
}

func isString(v value) bool {
	_, ok := v.(interpreter.String)
	return ok
}

func isBoolean(v value) bool {
	_, ok := v.(interpreter.Bool)
	return ok
}

func isArray(v value) bool {
	_, ok := v.(*interpreter.Array)
	return ok
}

// isObject is true for plain objects, class instances and host objects.
func isObject(v value) bool {
	switch v.(type) {
	case *interpreter.Object, *interpreter.Instance, *interpreter.HostObject:
		return true
	}
	return false
}

// isNull is true only for null; undefined is a different value.
func isNull(v value) bool {
	_, ok := v.(interpreter.Null)
	return ok
}
