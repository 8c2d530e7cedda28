package interpreter

import (
	"fmt"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
)

// execStatements runs stmts in env, stopping at the first signal or error.
// Function declarations are hoisted so they may be called before they appear.
func (in *interp) execStatements(stmts []ast.Stmt, env *Env) (signal, error) {
	in.hoist(stmts, env)
	for _, stmt := range stmts {
		sig, err := in.exec(stmt, env)
		if err != nil || sig.kind != sigNone {
			return sig, err
		}
	}
	return normal, nil
}

func (in *interp) hoist(stmts []ast.Stmt, env *Env) {
	for _, stmt := range stmts {
		if ex, ok := stmt.(*ast.ExportStatement); ok && ex.Declaration != nil {
			stmt = ex.Declaration
		}
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			env.DefineFunction(fd.Name, in.makeFunction(fd.Name, fd.Params, fd.ReturnType, fd.Body, env, nil))
		}
	}
}

func (in *interp) execBlock(b *ast.Block, env *Env) (signal, error) {
	return in.execStatements(b.Body, env.Child())
}

func (in *interp) exec(stmt ast.Stmt, env *Env) (signal, error) {
	span := stmt.NodeSpan()
	in.emit(TraceStmtStart, &span)
	defer in.emit(TraceStmtEnd, &span)

	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := in.eval(s.Expr, env)
		return normal, err

	case *ast.VarDeclaration:
		return normal, in.execVar(s, env)

	case *ast.FunctionDeclaration:
		if existing, ok := env.functions[s.Name].(*Function); ok && existing.Body == s.Body {
			return normal, nil
		}
		env.DefineFunction(s.Name, in.makeFunction(s.Name, s.Params, s.ReturnType, s.Body, env, nil))
		return normal, nil

	case *ast.ClassDeclaration:
		return normal, in.execClass(s, env)

	case *ast.Block:
		return in.execBlock(s, env)

	case *ast.IfStatement:
		test, err := in.eval(s.Test, env)
		if err != nil {
			return normal, err
		}
		if Truthy(test) {
			return in.exec(s.Consequent, env)
		}
		if s.Alternate != nil {
			return in.exec(s.Alternate, env)
		}
		return normal, nil

	case *ast.WhileStatement:
		return in.execWhile(s, env)

	case *ast.DoWhileStatement:
		return in.execDoWhile(s, env)

	case *ast.ForStatement:
		return in.execFor(s, env)

	case *ast.ForInStatement:
		return in.execForIn(s, env)

	case *ast.SwitchStatement:
		return in.execSwitch(s, env)

	case *ast.TryStatement:
		return in.execTry(s, env)

	case *ast.ThrowStatement:
		val, err := in.eval(s.Argument, env)
		if err != nil {
			return normal, err
		}
		in.emitWithData(TraceThrow, &span, map[string]string{"value": ToDisplayString(val)})
		return normal, &ThrowError{Value: val, Span: &span}

	case *ast.BreakStatement:
		return signal{kind: sigBreak, span: span}, nil

	case *ast.ContinueStatement:
		return signal{kind: sigContinue, span: span}, nil

	case *ast.ReturnStatement:
		var val Value = Undefined{}
		if s.Argument != nil {
			v, err := in.eval(s.Argument, env)
			if err != nil {
				return normal, err
			}
			val = v
		}
		return signal{kind: sigReturn, value: val, span: span}, nil

	case *ast.ImportStatement:
		return normal, in.execImport(s, env)

	case *ast.ExportStatement:
		return normal, in.execExport(s, env)
	}
	return normal, newError(diagnostics.EInternal, span, "unsupported statement: %s", stmt.Kind())
}

func (in *interp) execVar(s *ast.VarDeclaration, env *Env) error {
	var val Value = Undefined{}
	if s.Init != nil {
		v, err := in.eval(s.Init, env)
		if err != nil {
			return err
		}
		val = v
		if s.Type != "" {
			in.checkVariable(s, val)
		}
	}
	env.Define(s.Name, val)
	return nil
}

func (in *interp) execClass(s *ast.ClassDeclaration, env *Env) error {
	class := &Class{Name: s.Name, Methods: make(map[string]*Function, len(s.Methods))}
	if s.Superclass != "" {
		super, ok := in.resolveClass(s.Superclass, env)
		if !ok {
			return newError(diagnostics.EClass, s.Span, "Undefined class: %s", s.Superclass)
		}
		class.Super = super
	}
	for _, m := range s.Methods {
		class.Methods[m.Name] = in.makeFunction(m.Name, m.Params, m.ReturnType, m.Body, env, class)
	}
	env.DefineClass(s.Name, class)
	return nil
}

// loopControl folds a body's signal into the enclosing loop. It returns
// true when the loop must stop, with the signal to propagate.
func loopControl(sig signal) (bool, signal) {
	switch sig.kind {
	case sigBreak:
		return true, normal
	case sigReturn:
		return true, sig
	}
	return false, normal
}

func (in *interp) execWhile(s *ast.WhileStatement, env *Env) (signal, error) {
	in.emit(TraceLoopStart, &s.Span)
	defer in.emit(TraceLoopEnd, &s.Span)
	for {
		test, err := in.eval(s.Test, env)
		if err != nil {
			return normal, err
		}
		if !Truthy(test) {
			return normal, nil
		}
		if err := in.tick(); err != nil {
			return normal, err
		}
		sig, err := in.exec(s.Body, env)
		if err != nil {
			return normal, err
		}
		if stop, out := loopControl(sig); stop {
			return out, nil
		}
	}
}

func (in *interp) execDoWhile(s *ast.DoWhileStatement, env *Env) (signal, error) {
	in.emit(TraceLoopStart, &s.Span)
	defer in.emit(TraceLoopEnd, &s.Span)
	for {
		if err := in.tick(); err != nil {
			return normal, err
		}
		sig, err := in.exec(s.Body, env)
		if err != nil {
			return normal, err
		}
		if stop, out := loopControl(sig); stop {
			return out, nil
		}
		test, err := in.eval(s.Test, env)
		if err != nil {
			return normal, err
		}
		if !Truthy(test) {
			return normal, nil
		}
	}
}

func (in *interp) execFor(s *ast.ForStatement, env *Env) (signal, error) {
	in.emit(TraceLoopStart, &s.Span)
	defer in.emit(TraceLoopEnd, &s.Span)
	loopEnv := env.Child()
	if s.Init != nil {
		if _, err := in.exec(s.Init, loopEnv); err != nil {
			return normal, err
		}
	}
	for {
		if s.Test != nil {
			test, err := in.eval(s.Test, loopEnv)
			if err != nil {
				return normal, err
			}
			if !Truthy(test) {
				return normal, nil
			}
		}
		if err := in.tick(); err != nil {
			return normal, err
		}
		sig, err := in.exec(s.Body, loopEnv.Child())
		if err != nil {
			return normal, err
		}
		if stop, out := loopControl(sig); stop {
			return out, nil
		}
		if s.Update != nil {
			if _, err := in.eval(s.Update, loopEnv); err != nil {
				return normal, err
			}
		}
	}
}

func (in *interp) execForIn(s *ast.ForInStatement, env *Env) (signal, error) {
	iterable, err := in.eval(s.Iterable, env)
	if err != nil {
		return normal, err
	}
	items, err := iterationItems(iterable)
	if err != nil {
		return normal, newError(diagnostics.EIterate, s.Span, "%s", err.Error())
	}

	in.emit(TraceLoopStart, &s.Span)
	defer in.emit(TraceLoopEnd, &s.Span)
	loopEnv := env.Child()
	for _, item := range items {
		if err := in.tick(); err != nil {
			return normal, err
		}
		iterEnv := loopEnv.Child()
		if s.Declared {
			iterEnv.Define(s.Variable, item)
		} else if err := in.setVariable(loopEnv, s.Variable, item, s.Span); err != nil {
			return normal, err
		}
		sig, err := in.exec(s.Body, iterEnv)
		if err != nil {
			return normal, err
		}
		if stop, out := loopControl(sig); stop {
			return out, nil
		}
	}
	return normal, nil
}

// iterationItems snapshots what a for-in loop visits: array elements,
// object and instance keys, or string characters.
func iterationItems(v Value) ([]Value, error) {
	switch val := v.(type) {
	case *Array:
		items := make([]Value, len(val.Elements))
		copy(items, val.Elements)
		return items, nil
	case *Object:
		return keysOf(val), nil
	case *Instance:
		return keysOf(val.Props), nil
	case String:
		runes := []rune(val.Value)
		items := make([]Value, len(runes))
		for i, r := range runes {
			items[i] = String{Value: string(r)}
		}
		return items, nil
	}
	return nil, fmt.Errorf("Cannot iterate over %s", TypeName(v))
}

func keysOf(o *Object) []Value {
	keys := o.Keys()
	items := make([]Value, len(keys))
	for i, k := range keys {
		items[i] = String{Value: k}
	}
	return items
}

func (in *interp) execSwitch(s *ast.SwitchStatement, env *Env) (signal, error) {
	disc, err := in.eval(s.Discriminant, env)
	if err != nil {
		return normal, err
	}
	start := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			continue
		}
		test, err := in.eval(c.Test, env)
		if err != nil {
			return normal, err
		}
		if Equal(disc, test, true) {
			start = i
			break
		}
	}
	if start < 0 {
		for i, c := range s.Cases {
			if c.Test == nil {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return normal, nil
	}

	// Fall through from the matched clause until break or the end.
	caseEnv := env.Child()
	for _, c := range s.Cases[start:] {
		sig, err := in.execStatements(c.Body, caseEnv)
		if err != nil {
			return normal, err
		}
		switch sig.kind {
		case sigBreak:
			return normal, nil
		case sigContinue, sigReturn:
			return sig, nil
		}
	}
	return normal, nil
}

func (in *interp) execTry(s *ast.TryStatement, env *Env) (signal, error) {
	in.emit(TraceTryStart, &s.Span)
	defer in.emit(TraceTryEnd, &s.Span)

	sig, err := in.execBlock(s.Block, env)
	if err != nil && s.Handler != nil {
		if msg, ok := CatchMessage(err); ok {
			catchEnv := env.Child()
			if s.CatchParam != "" {
				catchEnv.Define(s.CatchParam, String{Value: msg})
			}
			sig, err = in.execStatements(s.Handler.Body, catchEnv)
		}
	}
	if s.Finalizer != nil {
		fsig, ferr := in.execBlock(s.Finalizer, env)
		if ferr != nil {
			return normal, ferr
		}
		if fsig.kind != sigNone {
			return fsig, nil
		}
	}
	return sig, err
}

func (in *interp) execImport(s *ast.ImportStatement, env *Env) error {
	if in.opts.Modules == nil {
		return newError(diagnostics.EModule, s.Span, "Module not found: %s", s.Module)
	}
	exports, err := in.opts.Modules.Resolve(in.ctx, s.Module)
	if err != nil {
		return withSpan(err, s.Span)
	}
	in.emitWithData(TraceImport, &s.Span, map[string]string{"module": s.Module})
	if len(s.Names) == 0 {
		alias := s.Alias
		if alias == "" {
			alias = s.Module
		}
		env.Define(alias, exports)
		return nil
	}
	for _, spec := range s.Names {
		val, ok := exports.Get(spec.Name)
		if !ok {
			return newError(diagnostics.EModule, spec.Span, "Module '%s' has no export '%s'", s.Module, spec.Name)
		}
		env.Define(spec.LocalName(), val)
	}
	return nil
}

func (in *interp) execExport(s *ast.ExportStatement, env *Env) error {
	if s.Declaration != nil {
		if _, err := in.exec(s.Declaration, env); err != nil {
			return err
		}
		var name string
		switch d := s.Declaration.(type) {
		case *ast.VarDeclaration:
			name = d.Name
		case *ast.FunctionDeclaration:
			name = d.Name
		case *ast.ClassDeclaration:
			name = d.Name
		}
		return in.exportName(name, env, s.Span)
	}
	for _, name := range s.Names {
		if err := in.exportName(name, env, s.Span); err != nil {
			return err
		}
	}
	return nil
}

func (in *interp) exportName(name string, env *Env, span ast.Span) error {
	if v, ok := env.Lookup(name); ok {
		in.exports.Set(name, v)
		return nil
	}
	if fn, ok := env.LookupFunction(name); ok {
		in.exports.Set(name, fn)
		return nil
	}
	if c, ok := env.LookupClass(name); ok {
		in.exports.Set(name, c)
		return nil
	}
	return newError(diagnostics.EModule, span, "Cannot export undefined name: %s", name)
}

func (in *interp) makeFunction(name string, params []*ast.Param, ret string, body *ast.Block, env *Env, owner *Class) *Function {
	return &Function{Name: name, Params: params, ReturnType: ret, Body: body, Closure: env, Owner: owner}
}

// resolveClass finds a class by name in the class namespace, falling back to
// a variable holding a class (an imported one, say).
func (in *interp) resolveClass(name string, env *Env) (*Class, bool) {
	if c, ok := env.LookupClass(name); ok {
		return c, true
	}
	if v, ok := env.Lookup(name); ok {
		if c, ok := v.(*Class); ok {
			return c, true
		}
	}
	return nil, false
}
