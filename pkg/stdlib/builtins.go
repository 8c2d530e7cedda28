package stdlib

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/axarion/axscript/pkg/interpreter"
)

// RegisterDefaults adds all global builtins except the game-object bindings.
func RegisterDefaults(r *Registry) {
	r.Register("print", stdlibPrint)

	// Predicates
	r.Register("isNumber", predicate(isNumber))
	r.Register("isString", predicate(isString))
	r.Register("isBoolean", predicate(isBoolean))
	r.Register("isArray", predicate(isArray))
	r.Register("isObject", predicate(isObject))
	r.Register("isFunction", predicate(interpreter.IsCallable))
	r.Register("isNull", predicate(isNull))

	// Conversions
	r.Register("toString", stdlibToString)
	r.Register("toNumber", stdlibToNumber)
	r.Register("parseInt", stdlibParseInt)
	r.Register("parseFloat", stdlibParseFloat)
	r.Register("len", stdlibLen)

	// Records
	r.Register("keys", stdlibKeys)
	r.Register("values", stdlibValues)
	r.Register("entries", stdlibEntries)
	r.Register("merge", stdlibMerge)
	r.Register("range", stdlibRange)

	// Math
	r.Register("sin", unary(math.Sin))
	r.Register("cos", unary(math.Cos))
	r.Register("tan", unary(math.Tan))
	r.Register("sqrt", mathSqrt)
	r.Register("abs", unary(math.Abs))
	r.Register("floor", unary(math.Floor))
	r.Register("ceil", unary(math.Ceil))
	r.Register("round", unary(round))
	r.Register("pow", mathPow)
	r.Register("min", mathMin)
	r.Register("max", mathMax)
	r.Register("random", mathRandom)
	r.Register("time", stdlibTime)
	r.Register("distance", stdlibDistance)
	r.Register("clamp", stdlibClamp)
	r.Register("lerp", stdlibLerp)
}

// Defaults returns a registry populated by RegisterDefaults.
func Defaults() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// Globals returns the predefined global variables.
func Globals() map[string]interpreter.Value {
	return map[string]interpreter.Value{
		"PI": num(math.Pi),
		"E":  num(math.E),
	}
}

// print(...) → appends its arguments, space-separated, to the output
func stdlibPrint(c *call, args []value) (value, error) {
	c.Print(joinArgs(args))
	return undefined, nil
}

func stdlibToString(c *call, args []value) (value, error) {
	return str(interpreter.ToDisplayString(arg(args, 0))), nil
}

// toNumber(v) → number; strings that are not numeric give NaN
func stdlibToNumber(c *call, args []value) (value, error) {
	switch v := arg(args, 0).(type) {
	case interpreter.Number:
		return v, nil
	case interpreter.Bool:
		if v.Value {
			return num(1), nil
		}
		return num(0), nil
	case interpreter.Null:
		return num(0), nil
	case interpreter.String:
		s := strings.TrimSpace(v.Value)
		if s == "" {
			return num(0), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return num(math.NaN()), nil
		}
		return num(f), nil
	}
	return num(math.NaN()), nil
}

const maxNumericLen = 400

// numericPrefix returns the longest prefix of s accepted by valid.
func numericPrefix(s string, valid func(string) bool) string {
	if len(s) > maxNumericLen {
		s = s[:maxNumericLen]
	}
	for end := len(s); end > 0; end-- {
		if valid(s[:end]) {
			return s[:end]
		}
	}
	return ""
}

// parseInt(s, radix?) → integer parsed from the leading digits of s, or NaN
func stdlibParseInt(c *call, args []value) (value, error) {
	if err := needArgs(c, args, 1); err != nil {
		return nil, err
	}
	if n, ok := args[0].(interpreter.Number); ok {
		return num(math.Trunc(n.Value)), nil
	}
	radix, err := optNumber(c, args, 1, 10)
	if err != nil {
		return nil, err
	}
	if radix < 2 || radix > 36 {
		return num(math.NaN()), nil
	}
	s := strings.TrimSpace(interpreter.ToDisplayString(args[0]))
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if radix == 16 {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}
	digits := numericPrefix(s, func(p string) bool {
		_, err := strconv.ParseUint(p, int(radix), 64)
		return err == nil
	})
	if digits == "" {
		return num(math.NaN()), nil
	}
	n, _ := strconv.ParseUint(digits, int(radix), 64)
	return num(sign * float64(n)), nil
}

// parseFloat(s) → number parsed from the leading part of s, or NaN
func stdlibParseFloat(c *call, args []value) (value, error) {
	if err := needArgs(c, args, 1); err != nil {
		return nil, err
	}
	if n, ok := args[0].(interpreter.Number); ok {
		return n, nil
	}
	s := strings.TrimSpace(interpreter.ToDisplayString(args[0]))
	prefix := numericPrefix(s, func(p string) bool {
		if strings.ContainsAny(p, "xXpP_") || strings.EqualFold(p, "inf") || strings.EqualFold(p, "nan") {
			return false
		}
		_, err := strconv.ParseFloat(p, 64)
		return err == nil
	})
	if prefix == "" {
		return num(math.NaN()), nil
	}
	f, _ := strconv.ParseFloat(prefix, 64)
	return num(f), nil
}

// len(v) → length of an array, string (in characters) or object; 0 otherwise
func stdlibLen(c *call, args []value) (value, error) {
	switch v := arg(args, 0).(type) {
	case *interpreter.Array:
		return num(float64(len(v.Elements))), nil
	case interpreter.String:
		return num(float64(utf8.RuneCountInString(v.Value))), nil
	case *interpreter.Object:
		return num(float64(v.Len())), nil
	case *interpreter.Instance:
		return num(float64(v.Props.Len())), nil
	}
	return num(0), nil
}

const maxRange = 1000000

// range(from, to) → list of numbers in [from, to); range(n) counts from 0
func stdlibRange(c *call, args []value) (value, error) {
	from, err := argNumber(c, args, 0)
	if err != nil {
		return nil, err
	}
	to, err := optNumber(c, args, 1, math.NaN())
	if err != nil {
		return nil, err
	}
	if math.IsNaN(to) {
		from, to = 0, from
	}
	if to <= from {
		return interpreter.NewArray(nil), nil
	}
	count := math.Ceil(to - from)
	if count > maxRange {
		return nil, c.Errorf("range too large: %s items", interpreter.FormatNumber(count))
	}
	items := make([]value, 0, int(count))
	for i := from; i < to; i++ {
		items = append(items, num(i))
	}
	return interpreter.NewArray(items), nil
}

// time() → seconds since the Unix epoch, with sub-second precision
func stdlibTime(c *call, args []value) (value, error) {
	return num(float64(time.Now().UnixNano()) / 1e9), nil
}

// floats reads n required numeric arguments.
func floats(c *call, args []value, n int) ([]float64, error) {
	if err := needArgs(c, args, n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		f, err := argNumber(c, args, i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// distance(x1, y1, x2, y2) → euclidean distance
func stdlibDistance(c *call, args []value) (value, error) {
	f, err := floats(c, args, 4)
	if err != nil {
		return nil, err
	}
	return num(math.Hypot(f[2]-f[0], f[3]-f[1])), nil
}

// clamp(v, lo, hi) → v limited to [lo, hi]
func stdlibClamp(c *call, args []value) (value, error) {
	f, err := floats(c, args, 3)
	if err != nil {
		return nil, err
	}
	return num(math.Max(f[1], math.Min(f[2], f[0]))), nil
}

// lerp(a, b, t) → a + (b - a) * t
func stdlibLerp(c *call, args []value) (value, error) {
	f, err := floats(c, args, 3)
	if err != nil {
		return nil, err
	}
	return num(f[0] + (f[1]-f[0])*f[2]), nil
}
