package interpreter

import (
	"math"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
)

func binary(op ast.BinaryOp, left, right Value, span ast.Span) (Value, error) {
	switch op {
	case ast.OpEqEq:
		return Bool{Value: Equal(left, right, false)}, nil
	case ast.OpNeq:
		return Bool{Value: !Equal(left, right, false)}, nil
	case ast.OpStrictEq:
		return Bool{Value: Equal(left, right, true)}, nil
	case ast.OpStrictNeq:
		return Bool{Value: !Equal(left, right, true)}, nil
	case ast.OpAdd:
		return add(left, right, span)
	case ast.OpLt, ast.OpGt, ast.OpLtEq, ast.OpGtEq:
		return compare(op, left, right, span)
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		return nil, newError(diagnostics.EType, span, "Cannot apply '%s' to %s and %s", op, TypeName(left), TypeName(right))
	}
	switch op {
	case ast.OpSub:
		return Number{Value: l.Value - r.Value}, nil
	case ast.OpMul:
		return Number{Value: l.Value * r.Value}, nil
	case ast.OpDiv:
		if r.Value == 0 {
			return nil, newError(diagnostics.EDivZero, span, "Division by zero")
		}
		return Number{Value: l.Value / r.Value}, nil
	case ast.OpMod:
		if r.Value == 0 {
			return nil, newError(diagnostics.EDivZero, span, "Modulo by zero")
		}
		return Number{Value: floorMod(l.Value, r.Value)}, nil
	}
	return nil, newError(diagnostics.EInternal, span, "unknown operator %s", op)
}

// floorMod is modulo with the sign of the divisor.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func add(left, right Value, span ast.Span) (Value, error) {
	_, ls := left.(String)
	_, rs := right.(String)
	if ls || rs {
		return String{Value: ToDisplayString(left) + ToDisplayString(right)}, nil
	}
	switch l := left.(type) {
	case Number:
		if r, ok := right.(Number); ok {
			return Number{Value: l.Value + r.Value}, nil
		}
	case *Array:
		if r, ok := right.(*Array); ok {
			elems := make([]Value, 0, len(l.Elements)+len(r.Elements))
			elems = append(elems, l.Elements...)
			elems = append(elems, r.Elements...)
			return NewArray(elems), nil
		}
	}
	return nil, newError(diagnostics.EType, span, "Cannot apply '+' to %s and %s", TypeName(left), TypeName(right))
}

func compare(op ast.BinaryOp, left, right Value, span ast.Span) (Value, error) {
	var c int
	switch l := left.(type) {
	case Number:
		r, ok := right.(Number)
		if !ok {
			break
		}
		if math.IsNaN(l.Value) || math.IsNaN(r.Value) {
			return Bool{Value: false}, nil
		}
		c = cmp3(l.Value < r.Value, l.Value > r.Value)
		return Bool{Value: holds(op, c)}, nil
	case String:
		r, ok := right.(String)
		if !ok {
			break
		}
		c = cmp3(l.Value < r.Value, l.Value > r.Value)
		return Bool{Value: holds(op, c)}, nil
	}
	return nil, newError(diagnostics.EType, span, "Cannot compare %s and %s", TypeName(left), TypeName(right))
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func holds(op ast.BinaryOp, c int) bool {
	switch op {
	case ast.OpLt:
		return c < 0
	case ast.OpGt:
		return c > 0
	case ast.OpLtEq:
		return c <= 0
	}
	return c >= 0
}
