package stdlib

import (
	"math"
	"math/rand"

	"github.com/axarion/axscript/pkg/interpreter"
)

type member struct {
	name string
	fn   interpreter.BuiltinFunc
}

// module builds an exports object from builtins, keeping their declared order.
func module(members []member, consts ...interpreter.KeyValue) *interpreter.Object {
	o := interpreter.NewObject(consts...)
	for _, m := range members {
		o.Set(m.name, interpreter.NewBuiltin(m.name, m.fn))
	}
	return o
}

// unary lifts a float function into a one-argument builtin.
func unary(f func(float64) float64) interpreter.BuiltinFunc {
	return func(c *call, args []value) (value, error) {
		x, err := argNumber(c, args, 0)
		if err != nil {
			return nil, err
		}
		return num(f(x)), nil
	}
}

// MathModule returns the exports of the Math module.
func MathModule() *interpreter.Object {
	return module([]member{
		{"sin", unary(math.Sin)},
		{"cos", unary(math.Cos)},
		{"tan", unary(math.Tan)},
		{"asin", unary(math.Asin)},
		{"acos", unary(math.Acos)},
		{"atan", unary(math.Atan)},
		{"atan2", mathAtan2},
		{"sqrt", mathSqrt},
		{"abs", unary(math.Abs)},
		{"floor", unary(math.Floor)},
		{"ceil", unary(math.Ceil)},
		{"round", unary(round)},
		{"pow", mathPow},
		{"log", unary(math.Log)},
		{"log10", unary(math.Log10)},
		{"exp", unary(math.Exp)},
		{"min", mathMin},
		{"max", mathMax},
		{"sign", unary(sign)},
		{"random", mathRandom},
		{"randint", mathRandint},
		{"choice", mathChoice},
	},
		interpreter.KeyValue{Key: "PI", Value: num(math.Pi)},
		interpreter.KeyValue{Key: "E", Value: num(math.E)},
	)
}

// round goes half up, so round(-2.5) is -2.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

// sqrt(x) → square root; negative input is an error rather than NaN
func mathSqrt(c *call, args []value) (value, error) {
	x, err := argNumber(c, args, 0)
	if err != nil {
		return nil, err
	}
	if x < 0 {
		return nil, c.Errorf("Cannot take square root of negative number")
	}
	return num(math.Sqrt(x)), nil
}

func mathAtan2(c *call, args []value) (value, error) {
	y, err := argNumber(c, args, 0)
	if err != nil {
		return nil, err
	}
	x, err := argNumber(c, args, 1)
	if err != nil {
		return nil, err
	}
	return num(math.Atan2(y, x)), nil
}

func mathPow(c *call, args []value) (value, error) {
	base, err := argNumber(c, args, 0)
	if err != nil {
		return nil, err
	}
	exp, err := argNumber(c, args, 1)
	if err != nil {
		return nil, err
	}
	return num(math.Pow(base, exp)), nil
}

// numbers collects variadic numeric arguments; a single array argument is spread.
func numbers(c *call, args []value) ([]float64, error) {
	if len(args) == 1 {
		if arr, ok := args[0].(*interpreter.Array); ok {
			args = arr.Elements
		}
	}
	if len(args) == 0 {
		return nil, c.Errorf("%s() requires at least one argument", c.Name)
	}
	out := make([]float64, len(args))
	for i := range args {
		n, err := argNumber(c, args, i)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// min(a, b, ...) → smallest number
func mathMin(c *call, args []value) (value, error) {
	ns, err := numbers(c, args)
	if err != nil {
		return nil, err
	}
	m := ns[0]
	for _, n := range ns[1:] {
		m = math.Min(m, n)
	}
	return num(m), nil
}

// max(a, b, ...) → largest number
func mathMax(c *call, args []value) (value, error) {
	ns, err := numbers(c, args)
	if err != nil {
		return nil, err
	}
	m := ns[0]
	for _, n := range ns[1:] {
		m = math.Max(m, n)
	}
	return num(m), nil
}

// random() → [0, 1)
func mathRandom(c *call, args []value) (value, error) {
	return num(rand.Float64()), nil
}

// randint(lo, hi) → integer in [lo, hi]
func mathRandint(c *call, args []value) (value, error) {
	lo, err := argNumber(c, args, 0)
	if err != nil {
		return nil, err
	}
	hi, err := argNumber(c, args, 1)
	if err != nil {
		return nil, err
	}
	a, b := int64(math.Ceil(lo)), int64(math.Floor(hi))
	if b < a {
		return nil, c.Errorf("randint() range is empty: %s..%s", interpreter.FormatNumber(lo), interpreter.FormatNumber(hi))
	}
	return num(float64(a + rand.Int63n(b-a+1))), nil
}

// choice(arr) → random element
func mathChoice(c *call, args []value) (value, error) {
	arr, err := argArray(c, args, 0)
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return nil, c.Errorf("choice() of empty array")
	}
	return arr.Elements[rand.Intn(len(arr.Elements))], nil
}
