package interpreter

import (
	"fmt"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/types"
)

func (in *interp) evalArgs(exprs []ast.Expr, env *Env) ([]Value, error) {
	args := make([]Value, len(exprs))
	for i, a := range exprs {
		v, err := in.eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// evalCall resolves the callee in order: member call, builtin, user
// function, then any variable holding a callable.
func (in *interp) evalCall(e *ast.CallExpression, env *Env) (Value, error) {
	switch callee := e.Callee.(type) {
	case *ast.SuperExpression:
		args, err := in.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return in.superCall(args, e.Span)

	case *ast.MemberExpression:
		if _, ok := callee.Object.(*ast.SuperExpression); ok {
			m, err := in.superMember(callee.Property, callee.Span)
			if err != nil {
				return nil, err
			}
			args, err := in.evalArgs(e.Args, env)
			if err != nil {
				return nil, err
			}
			return in.callValue(m, args, e.Span)
		}
		recv, err := in.eval(callee.Object, env)
		if err != nil {
			return nil, err
		}
		args, err := in.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		return in.callMethod(recv, callee.Property, args, e.Span)

	case *ast.Identifier:
		args, err := in.evalArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		name := callee.Name
		if b, ok := in.opts.Builtins[name]; ok {
			in.checkBuiltinCall(name, args, e.Span)
			return in.callBuiltin(b, args, e.Span)
		}
		if fn, ok := env.LookupFunction(name); ok {
			return in.callValue(fn, args, e.Span)
		}
		if v, ok := env.Lookup(name); ok {
			if !IsCallable(v) {
				return nil, newError(diagnostics.ENotCall, e.Span, "%s is not a function", name)
			}
			return in.callValue(v, args, e.Span)
		}
		if _, ok := env.LookupClass(name); ok {
			return nil, newError(diagnostics.EClass, e.Span, "Class constructor %s cannot be invoked without 'new'", name)
		}
		return nil, newError(diagnostics.EUndefined, e.Span, "Undefined function: %s", name)
	}

	fn, err := in.eval(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := in.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	return in.callValue(fn, args, e.Span)
}

func (in *interp) callMethod(recv Value, name string, args []Value, span ast.Span) (Value, error) {
	switch r := recv.(type) {
	case *Instance:
		if m, ok := r.Class.FindMethod(name); ok {
			return in.callFunction(m, args, span, r)
		}
		if v, ok := r.Props.Get(name); ok && IsCallable(v) {
			return in.callValue(v, args, span)
		}
		return nil, newError(diagnostics.EProperty, span, "Undefined method '%s' on instance of %s", name, r.Class.Name)

	case *Array, String:
		kind := "array"
		if _, ok := r.(String); ok {
			kind = "string"
		}
		if proto := in.opts.Prototypes[kind]; proto != nil {
			if fn, ok := proto.Get(name); ok && IsCallable(fn) {
				return in.callValue(fn, append([]Value{recv}, args...), span)
			}
		}
		return nil, newError(diagnostics.ENotCall, span, "%s has no method '%s'", TypeName(recv), name)

	case nil, Undefined, Null:
		return nil, newError(diagnostics.ENotCall, span, "Cannot call method '%s' of %s", name, TypeName(recv))
	}

	fn, err := in.getMember(recv, name, span)
	if err != nil {
		return nil, err
	}
	if !IsCallable(fn) {
		return nil, newError(diagnostics.ENotCall, span, "'%s' is not a function", name)
	}
	return in.callValue(fn, args, span)
}

func (in *interp) callValue(fn Value, args []Value, span ast.Span) (Value, error) {
	switch f := fn.(type) {
	case *Function:
		return in.callFunction(f, args, span, nil)
	case *BoundMethod:
		return in.callFunction(f.Method, args, span, f.Receiver)
	case *Builtin:
		return in.callBuiltin(f, args, span)
	case *Class:
		return nil, newError(diagnostics.EClass, span, "Class constructor %s cannot be invoked without 'new'", f.Name)
	}
	return nil, newError(diagnostics.ENotCall, span, "%s is not callable", TypeName(fn))
}

func (in *interp) callBuiltin(b *Builtin, args []Value, span ast.Span) (Value, error) {
	if err := in.checkDeadline(); err != nil {
		return nil, err
	}
	in.emitWithData(TraceBuiltinCall, &span, map[string]string{"name": b.Name})
	in.tracker.Calls++
	v, err := b.Fn(&Call{in: in, Name: b.Name, Span: span}, args)
	if err != nil {
		return nil, withSpan(err, span)
	}
	if v == nil {
		return Undefined{}, nil
	}
	return v, nil
}

// callFunction invokes a user function. A non-nil receiver is bound to
// `this` for the duration of the call and restored afterwards.
func (in *interp) callFunction(fn *Function, args []Value, span ast.Span, receiver Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, newError(diagnostics.EArity, span, "Expected %d arguments but got %d", len(fn.Params), len(args))
	}
	if in.depth >= in.maxDepth {
		return nil, newError(diagnostics.EStack, span, "Maximum call stack size exceeded")
	}
	if err := in.checkDeadline(); err != nil {
		return nil, err
	}

	env := fn.Closure.Child()
	for i, p := range fn.Params {
		env.Define(p.Name, args[i])
		if p.Type != "" {
			in.checkParam(fn, p, args[i], span)
		}
	}

	savedThis, savedFn := in.this, in.fn
	if receiver != nil {
		in.this = receiver
	}
	in.fn = fn
	in.depth++
	in.tracker.Calls++
	in.emitWithData(TraceFnCallStart, &span, map[string]string{"fn": fn.Name})
	defer func() {
		in.this, in.fn = savedThis, savedFn
		in.depth--
		in.emitWithData(TraceFnCallEnd, &span, map[string]string{"fn": fn.Name})
	}()

	sig, err := in.execStatements(fn.Body.Body, env)
	if err != nil {
		return nil, err
	}
	switch sig.kind {
	case sigBreak, sigContinue:
		return nil, newError(diagnostics.EControl, sig.span, "Illegal %s statement", sig.kind)
	case sigReturn:
		if fn.ReturnType != "" {
			if err := in.checkReturn(fn, sig.value, sig.span); err != nil {
				return nil, err
			}
		}
		return sig.value, nil
	}
	return Undefined{}, nil
}

func (in *interp) evalNew(e *ast.NewExpression, env *Env) (Value, error) {
	class, ok := in.resolveClass(e.ClassName, env)
	if !ok {
		return nil, newError(diagnostics.EClass, e.Span, "Undefined class: %s", e.ClassName)
	}
	args, err := in.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	return in.instantiate(class, args, e.Span)
}

func (in *interp) instantiate(class *Class, args []Value, span ast.Span) (Value, error) {
	inst := &Instance{Class: class, Props: NewObject()}
	ctor, ok := class.FindMethod("constructor")
	if !ok {
		if len(args) > 0 {
			return nil, newError(diagnostics.EArity, span, "Expected 0 arguments but got %d", len(args))
		}
		return inst, nil
	}
	if _, err := in.callFunction(ctor, args, span, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// superClass returns the parent of the class owning the running method.
func (in *interp) superClass(span ast.Span) (*Class, error) {
	if in.fn == nil || in.fn.Owner == nil {
		return nil, newError(diagnostics.EClass, span, "'super' is only valid inside a class method")
	}
	if in.fn.Owner.Super == nil {
		return nil, newError(diagnostics.EClass, span, "Class %s has no superclass", in.fn.Owner.Name)
	}
	return in.fn.Owner.Super, nil
}

func (in *interp) superCall(args []Value, span ast.Span) (Value, error) {
	super, err := in.superClass(span)
	if err != nil {
		return nil, err
	}
	ctor, ok := super.FindMethod("constructor")
	if !ok {
		if len(args) > 0 {
			return nil, newError(diagnostics.EArity, span, "Expected 0 arguments but got %d", len(args))
		}
		return Undefined{}, nil
	}
	if _, err := in.callFunction(ctor, args, span, in.this); err != nil {
		return nil, err
	}
	return Undefined{}, nil
}

func (in *interp) superMember(name string, span ast.Span) (Value, error) {
	super, err := in.superClass(span)
	if err != nil {
		return nil, err
	}
	m, ok := super.FindMethod(name)
	if !ok {
		return nil, newError(diagnostics.EProperty, span, "Undefined method '%s' on superclass %s", name, super.Name)
	}
	return &BoundMethod{Receiver: in.this, Method: m}, nil
}

func (in *interp) checkBuiltinCall(name string, args []Value, span ast.Span) {
	if _, ok := types.BuiltinSignature(name); !ok {
		return
	}
	argTypes := make([]types.TypeInfo, len(args))
	for i, a := range args {
		argTypes[i] = InferType(a)
	}
	in.checker.CheckCall(name, argTypes, span.StartLine)
}

func (in *interp) checkParam(fn *Function, p *ast.Param, arg Value, span ast.Span) {
	want, known := types.ParseAnnotation(p.Type)
	if known && !conforms(arg, want) {
		in.checker.Report(span.StartLine, "parameter '%s' of %s() expects %s, got %s",
			p.Name, displayName(fn), want, InferType(arg))
	}
}

func (in *interp) checkVariable(s *ast.VarDeclaration, val Value) {
	want, known := types.ParseAnnotation(s.Type)
	if known && !conforms(val, want) {
		in.checker.Report(s.Span.StartLine, "variable '%s' declared as %s but assigned %s", s.Name, want, InferType(val))
	}
}

func (in *interp) checkReturn(fn *Function, val Value, span ast.Span) error {
	want, known := types.ParseAnnotation(fn.ReturnType)
	if !known || conforms(val, want) {
		return nil
	}
	msg := fmt.Sprintf("%s() declared to return %s but returned %s", displayName(fn), want, InferType(val))
	in.checker.Report(span.StartLine, "%s", msg)
	return newError(diagnostics.EType, span, "%s", msg)
}

func displayName(fn *Function) string {
	switch {
	case fn.Owner != nil:
		return fn.Owner.Name + "." + fn.Name
	case fn.Name == "":
		return "<anonymous>"
	}
	return fn.Name
}
