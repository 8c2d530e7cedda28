package types

// FunctionType is a builtin's signature. Min is the number of required
// parameters; Variadic lets the last parameter type repeat.
type FunctionType struct {
	Params   []TypeInfo
	Min      int
	Variadic bool
	Return   TypeInfo
}

// AcceptsArity reports whether n arguments satisfy the signature.
func (f FunctionType) AcceptsArity(n int) bool {
	if n < f.Min {
		return false
	}
	return f.Variadic || n <= len(f.Params)
}

// ParamType returns the expected type of the i-th argument.
func (f FunctionType) ParamType(i int) TypeInfo {
	if i < len(f.Params) {
		return f.Params[i]
	}
	if f.Variadic && len(f.Params) > 0 {
		return f.Params[len(f.Params)-1]
	}
	return Any()
}

func fixed(ret TypeInfo, params ...TypeInfo) FunctionType {
	return FunctionType{Params: params, Min: len(params), Return: ret}
}

func optional(ret TypeInfo, min int, params ...TypeInfo) FunctionType {
	return FunctionType{Params: params, Min: min, Return: ret}
}

func variadic(ret TypeInfo, min int, param TypeInfo) FunctionType {
	return FunctionType{Params: []TypeInfo{param}, Min: min, Variadic: true, Return: ret}
}

var num = Number()

var builtinSignatures = map[string]FunctionType{
	// Output
	"print": variadic(Null(), 0, Any()),

	// Math
	"sin":      fixed(num, num),
	"cos":      fixed(num, num),
	"tan":      fixed(num, num),
	"sqrt":     fixed(num, num),
	"abs":      fixed(num, num),
	"floor":    fixed(num, num),
	"ceil":     fixed(num, num),
	"round":    fixed(num, num),
	"pow":      fixed(num, num, num),
	"min":      variadic(num, 1, num),
	"max":      variadic(num, 1, num),
	"random":   fixed(num),
	"time":     fixed(num),
	"distance": fixed(num, num, num, num, num),
	"clamp":    fixed(num, num, num, num),
	"lerp":     fixed(num, num, num, num),

	// Predicates and conversions
	"isNumber":   fixed(Boolean(), Any()),
	"isString":   fixed(Boolean(), Any()),
	"isBoolean":  fixed(Boolean(), Any()),
	"isArray":    fixed(Boolean(), Any()),
	"isObject":   fixed(Boolean(), Any()),
	"isFunction": fixed(Boolean(), Any()),
	"isNull":     fixed(Boolean(), Any()),
	"toString":   fixed(String(), Any()),
	"toNumber":   fixed(num, Any()),
	"parseInt":   optional(num, 1, String(), num),
	"parseFloat": fixed(num, String()),
	"len":        fixed(num, Any()),

	// Game object
	"move":             optional(Null(), 1, num, num),
	"rotate":           fixed(Null(), num),
	"setProperty":      fixed(Null(), String(), Any()),
	"getProperty":      fixed(Any(), String()),
	"getPosition":      fixed(Object()),
	"setPosition":      fixed(Null(), num, num),
	"getVelocity":      fixed(Object()),
	"setVelocity":      fixed(Null(), num, num),
	"jump":             optional(Null(), 0, num),
	"isOnGround":       fixed(Boolean()),
	"applyForce":       fixed(Null(), num, num),
	"hasTag":           fixed(Boolean(), String()),
	"findObjectsByTag": fixed(ArrayOf(Any()), String()),

	// Input
	"keyPressed":     fixed(Boolean(), String()),
	"keyJustPressed": fixed(Boolean(), String()),
	"mouseClicked":   optional(Boolean(), 0, num),
	"mousePressed":   optional(Boolean(), 0, num),
	"getMousePos":    fixed(Object()),
	"getAxis":        fixed(num, String()),
	"getMovement":    fixed(Object()),
}

// BuiltinSignature returns the catalogued signature of a global builtin.
func BuiltinSignature(name string) (FunctionType, bool) {
	sig, ok := builtinSignatures[name]
	return sig, ok
}
