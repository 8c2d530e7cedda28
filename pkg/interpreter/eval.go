package interpreter

import (
	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
)

func (in *interp) eval(expr ast.Expr, env *Env) (Value, error) {
	switch e := expr.(type) {
	case nil:
		return Undefined{}, nil

	case *ast.NumberLiteral:
		return Number{Value: e.Value}, nil

	case *ast.StringLiteral:
		return String{Value: e.Value}, nil

	case *ast.BooleanLiteral:
		return Bool{Value: e.Value}, nil

	case *ast.NullLiteral:
		return Null{}, nil

	case *ast.UndefinedLiteral:
		return Undefined{}, nil

	case *ast.Identifier:
		if v, ok := in.lookup(e.Name, env); ok {
			return v, nil
		}
		return nil, newError(diagnostics.EUndefined, e.Span, "Undefined variable: %s", e.Name)

	case *ast.ThisExpression:
		if in.this == nil {
			return nil, newError(diagnostics.EThis, e.Span, "'this' is not available in this context")
		}
		return in.this, nil

	case *ast.SuperExpression:
		return nil, newError(diagnostics.EClass, e.Span, "'super' must be followed by a call or member access")

	case *ast.ArrayLiteral:
		elems := make([]Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := in.eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return NewArray(elems), nil

	case *ast.ObjectLiteral:
		obj := NewObject()
		for _, p := range e.Properties {
			v, err := in.eval(p.Value, env)
			if err != nil {
				return nil, err
			}
			obj.Set(p.Key, v)
		}
		return obj, nil

	case *ast.FunctionExpression:
		return in.makeFunction(e.Name, e.Params, e.ReturnType, e.Body, env, nil), nil

	case *ast.BinaryExpression:
		left, err := in.eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(e.Right, env)
		if err != nil {
			return nil, err
		}
		return binary(e.Op, left, right, e.Span)

	case *ast.LogicalExpression:
		left, err := in.eval(e.Left, env)
		if err != nil {
			return nil, err
		}
		if (e.Op == ast.OpAnd) != Truthy(left) {
			return left, nil
		}
		return in.eval(e.Right, env)

	case *ast.UnaryExpression:
		return in.evalUnary(e, env)

	case *ast.UpdateExpression:
		return in.evalUpdate(e, env)

	case *ast.Assignment:
		return in.evalAssignment(e, env)

	case *ast.ConditionalExpression:
		test, err := in.eval(e.Test, env)
		if err != nil {
			return nil, err
		}
		if Truthy(test) {
			return in.eval(e.Consequent, env)
		}
		return in.eval(e.Alternate, env)

	case *ast.CallExpression:
		return in.evalCall(e, env)

	case *ast.MemberExpression:
		if _, ok := e.Object.(*ast.SuperExpression); ok {
			return in.superMember(e.Property, e.Span)
		}
		obj, err := in.eval(e.Object, env)
		if err != nil {
			return nil, err
		}
		return in.getMember(obj, e.Property, e.Span)

	case *ast.IndexExpression:
		obj, err := in.eval(e.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := in.eval(e.Index, env)
		if err != nil {
			return nil, err
		}
		return in.getIndex(obj, idx, e.Span)

	case *ast.NewExpression:
		return in.evalNew(e, env)
	}
	span := expr.NodeSpan()
	return nil, newError(diagnostics.EInternal, span, "unsupported expression: %s", expr.Kind())
}

// lookup resolves an identifier: variables, then functions, then classes,
// then builtins as values.
func (in *interp) lookup(name string, env *Env) (Value, bool) {
	if v, ok := env.Lookup(name); ok {
		return v, true
	}
	if fn, ok := env.LookupFunction(name); ok {
		return fn, true
	}
	if c, ok := env.LookupClass(name); ok {
		return c, true
	}
	if b, ok := in.opts.Builtins[name]; ok {
		return b, true
	}
	return nil, false
}

func (in *interp) evalUnary(e *ast.UnaryExpression, env *Env) (Value, error) {
	if e.Op == ast.OpTypeof {
		if id, ok := e.Operand.(*ast.Identifier); ok {
			v, found := in.lookup(id.Name, env)
			if !found {
				return String{Value: "undefined"}, nil
			}
			return String{Value: TypeName(v)}, nil
		}
	}
	v, err := in.eval(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpNot:
		return Bool{Value: !Truthy(v)}, nil
	case ast.OpTypeof:
		return String{Value: TypeName(v)}, nil
	case ast.OpNeg:
		n, ok := v.(Number)
		if !ok {
			return nil, newError(diagnostics.EType, e.Span, "Cannot negate %s", TypeName(v))
		}
		return Number{Value: -n.Value}, nil
	}
	return nil, newError(diagnostics.EInternal, e.Span, "unknown unary operator %s", e.Op)
}

func (in *interp) evalUpdate(e *ast.UpdateExpression, env *Env) (Value, error) {
	delta := 1.0
	if e.Op == ast.OpDecrement {
		delta = -1
	}
	var before Value
	after, err := in.modify(e.Target, env, e.Span, true, func(old Value) (Value, error) {
		n, ok := old.(Number)
		if !ok {
			return nil, newError(diagnostics.EType, e.Span, "Invalid operand for '%s': %s", e.Op, TypeName(old))
		}
		before = n
		return Number{Value: n.Value + delta}, nil
	})
	if err != nil {
		return nil, err
	}
	if e.Prefix {
		return after, nil
	}
	return before, nil
}

func (in *interp) evalAssignment(e *ast.Assignment, env *Env) (Value, error) {
	op, compound := e.Op.Binary()
	return in.modify(e.Target, env, e.Span, compound, func(old Value) (Value, error) {
		val, err := in.eval(e.Value, env)
		if err != nil {
			return nil, err
		}
		if !compound {
			return val, nil
		}
		return binary(op, old, val, e.Span)
	})
}

// modify evaluates an assignment target, computes its new value from the old
// one (read only when needOld is set) and stores it. The target's object and
// index are evaluated once, before the right-hand side.
func (in *interp) modify(target ast.Expr, env *Env, span ast.Span, needOld bool, compute func(old Value) (Value, error)) (Value, error) {
	switch t := target.(type) {
	case *ast.Identifier:
		var old Value
		if needOld {
			v, err := env.Get(t.Name)
			if err != nil {
				return nil, newError(diagnostics.EUndefined, t.Span, "%s", err.Error())
			}
			old = v
		}
		val, err := compute(old)
		if err != nil {
			return nil, err
		}
		return val, in.setVariable(env, t.Name, val, t.Span)

	case *ast.MemberExpression:
		obj, err := in.eval(t.Object, env)
		if err != nil {
			return nil, err
		}
		var old Value
		if needOld {
			if old, err = in.getMember(obj, t.Property, t.Span); err != nil {
				return nil, err
			}
		}
		val, err := compute(old)
		if err != nil {
			return nil, err
		}
		return val, in.setMember(obj, t.Property, val, t.Span)

	case *ast.IndexExpression:
		obj, err := in.eval(t.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := in.eval(t.Index, env)
		if err != nil {
			return nil, err
		}
		var old Value
		if needOld {
			if old, err = in.getIndex(obj, idx, t.Span); err != nil {
				return nil, err
			}
		}
		val, err := compute(old)
		if err != nil {
			return nil, err
		}
		return val, in.setIndex(obj, idx, val, t.Span)
	}
	return nil, newError(diagnostics.EAssign, span, "Invalid assignment target")
}

// setVariable assigns through the scope chain. Outside strict mode an
// unknown name is defined in the innermost scope.
func (in *interp) setVariable(env *Env, name string, val Value, span ast.Span) error {
	if in.opts.Strict {
		if !env.Update(name, val) {
			return newError(diagnostics.EAssign, span, "Assignment to undeclared variable: %s", name)
		}
		return nil
	}
	env.Set(name, val)
	return nil
}
