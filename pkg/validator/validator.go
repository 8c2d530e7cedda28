// Package validator implements the static checks run on AXScript programs
// before execution. Every finding is advisory; none stops a run.
package validator

import (
	"fmt"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/types"
)

type binding struct {
	kind string // var, let, const, param, function, class, import
	fn   *ast.FunctionDeclaration
}

type scope struct {
	bindings map[string]binding
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]binding), parent: parent}
}

func (s *scope) lookup(name string) (binding, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if b, ok := sc.bindings[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

func (s *scope) add(name string, b binding) {
	s.bindings[name] = b
}

// function is the function body being walked.
type function struct {
	name     string
	ret      types.TypeInfo
	checkRet bool
}

// flow tracks what break, continue and return may refer to.
type flow struct {
	loops    int
	switches int
	fn       *function
}

type validator struct {
	diags    []diagnostics.Diagnostic
	builtins map[string]bool
	classes  map[string]string // class name -> superclass
}

// Option configures Validate.
type Option func(*validator)

// WithBuiltins names the global builtins calls resolve to before user
// functions. Builtins with a catalogued signature are always known.
func WithBuiltins(names ...string) Option {
	return func(v *validator) {
		for _, n := range names {
			v.builtins[n] = true
		}
	}
}

// Validate walks program and returns its findings in source order.
func Validate(program *ast.Program, opts ...Option) []diagnostics.Diagnostic {
	v := &validator{
		builtins: make(map[string]bool),
		classes:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.collectClasses(program.Body)
	v.statements(program.Body, newScope(nil), flow{})
	return v.diags
}

func (v *validator) addDiag(code string, span ast.Span, format string, args ...interface{}) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, fmt.Sprintf(format, args...), &span, ""))
}

func (v *validator) isBuiltin(name string) bool {
	if v.builtins[name] {
		return true
	}
	_, ok := types.BuiltinSignature(name)
	return ok
}

func (v *validator) collectClasses(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ClassDeclaration:
			v.classes[s.Name] = s.Superclass
		case *ast.ExportStatement:
			if s.Declaration != nil {
				v.collectClasses([]ast.Stmt{s.Declaration})
			}
		case *ast.Block:
			v.collectClasses(s.Body)
		}
	}
}

func (v *validator) statements(stmts []ast.Stmt, sc *scope, f flow) {
	// Function declarations are visible before they appear, as at run time.
	for _, stmt := range stmts {
		if ex, ok := stmt.(*ast.ExportStatement); ok && ex.Declaration != nil {
			stmt = ex.Declaration
		}
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			sc.add(fd.Name, binding{kind: "function", fn: fd})
		}
	}
	for _, stmt := range stmts {
		v.stmt(stmt, sc, f)
	}
}

func (v *validator) stmt(stmt ast.Stmt, sc *scope, f flow) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		v.expr(s.Expr, sc, f)

	case *ast.VarDeclaration:
		if s.Init != nil {
			v.expr(s.Init, sc, f)
		}
		if s.Type != "" {
			want, ok := v.annotation(s.Type, s.Span)
			if ok && s.Init != nil {
				if got, lit := literalType(s.Init); lit && !v.compatible(got, want) {
					v.addDiag(diagnostics.WTypeAdvice, s.Span, "variable '%s' declared as %s but assigned %s", s.Name, want, got)
				}
			}
		}
		sc.add(s.Name, binding{kind: s.Keyword})

	case *ast.FunctionDeclaration:
		if v.isBuiltin(s.Name) {
			v.addDiag(diagnostics.WShadow, s.Span, "function '%s' is shadowed by the builtin of the same name", s.Name)
		}
		v.function(s.Name, s.Params, s.ReturnType, s.Body, s.Span, sc)

	case *ast.ClassDeclaration:
		sc.add(s.Name, binding{kind: "class"})
		for _, m := range s.Methods {
			v.function(s.Name+"."+m.Name, m.Params, m.ReturnType, m.Body, m.Span, sc)
		}

	case *ast.Block:
		v.statements(s.Body, newScope(sc), f)

	case *ast.IfStatement:
		v.expr(s.Test, sc, f)
		v.stmt(s.Consequent, sc, f)
		if s.Alternate != nil {
			v.stmt(s.Alternate, sc, f)
		}

	case *ast.WhileStatement:
		v.expr(s.Test, sc, f)
		f.loops++
		v.stmt(s.Body, sc, f)

	case *ast.DoWhileStatement:
		inner := f
		inner.loops++
		v.stmt(s.Body, sc, inner)
		v.expr(s.Test, sc, f)

	case *ast.ForStatement:
		loop := newScope(sc)
		if s.Init != nil {
			v.stmt(s.Init, loop, f)
		}
		if s.Test != nil {
			v.expr(s.Test, loop, f)
		}
		if s.Update != nil {
			v.expr(s.Update, loop, f)
		}
		f.loops++
		v.stmt(s.Body, newScope(loop), f)

	case *ast.ForInStatement:
		v.expr(s.Iterable, sc, f)
		loop := newScope(sc)
		if s.Declared {
			loop.add(s.Variable, binding{kind: "let"})
		} else {
			v.checkAssign(s.Variable, s.Span, sc)
		}
		f.loops++
		v.stmt(s.Body, loop, f)

	case *ast.SwitchStatement:
		v.expr(s.Discriminant, sc, f)
		body := newScope(sc)
		f.switches++
		for _, c := range s.Cases {
			if c.Test != nil {
				v.expr(c.Test, sc, f)
			}
			v.statements(c.Body, body, f)
		}

	case *ast.TryStatement:
		v.statements(s.Block.Body, newScope(sc), f)
		if s.Handler != nil {
			catch := newScope(sc)
			if s.CatchParam != "" {
				catch.add(s.CatchParam, binding{kind: "let"})
			}
			v.statements(s.Handler.Body, catch, f)
		}
		if s.Finalizer != nil {
			v.statements(s.Finalizer.Body, newScope(sc), f)
		}

	case *ast.ThrowStatement:
		v.expr(s.Argument, sc, f)

	case *ast.BreakStatement:
		if f.loops == 0 && f.switches == 0 {
			v.addDiag(diagnostics.EControl, s.Span, "'break' outside of a loop or switch")
		}

	case *ast.ContinueStatement:
		if f.loops == 0 {
			v.addDiag(diagnostics.EControl, s.Span, "'continue' outside of a loop")
		}

	case *ast.ReturnStatement:
		if s.Argument != nil {
			v.expr(s.Argument, sc, f)
		}
		v.checkReturn(s, f.fn)

	case *ast.ImportStatement:
		if len(s.Names) == 0 {
			alias := s.Alias
			if alias == "" {
				alias = s.Module
			}
			sc.add(alias, binding{kind: "import"})
		}
		for _, spec := range s.Names {
			sc.add(spec.LocalName(), binding{kind: "import"})
		}

	case *ast.ExportStatement:
		if s.Declaration != nil {
			v.stmt(s.Declaration, sc, f)
		}
	}
}

// function checks a function's signature and walks its body with fresh
// loop state: break and continue never cross a function boundary.
func (v *validator) function(name string, params []*ast.Param, ret string, body *ast.Block, span ast.Span, sc *scope) {
	inner := newScope(sc)
	seen := make(map[string]bool, len(params))
	display := name
	if display == "" {
		display = "<anonymous>"
	}
	for _, p := range params {
		if seen[p.Name] {
			v.addDiag(diagnostics.WDupParam, p.Span, "duplicate parameter '%s' in %s()", p.Name, display)
		}
		seen[p.Name] = true
		if p.Type != "" {
			v.annotation(p.Type, p.Span)
		}
		inner.add(p.Name, binding{kind: "param"})
	}
	fn := &function{name: display}
	if ret != "" {
		fn.ret, fn.checkRet = v.annotation(ret, span)
	}
	v.statements(body.Body, inner, flow{fn: fn})
}

func (v *validator) checkReturn(s *ast.ReturnStatement, fn *function) {
	if fn == nil || !fn.checkRet {
		return
	}
	got, lit := types.Undefined(), true
	if s.Argument != nil {
		got, lit = literalType(s.Argument)
	}
	if lit && !v.compatible(got, fn.ret) {
		v.addDiag(diagnostics.WTypeAdvice, s.Span, "%s() declared to return %s but returned %s", fn.name, fn.ret, got)
	}
}

func (v *validator) checkAssign(name string, span ast.Span, sc *scope) {
	if b, ok := sc.lookup(name); ok && b.kind == "const" {
		v.addDiag(diagnostics.WConst, span, "assignment to constant '%s'", name)
	}
}

func (v *validator) annotation(text string, span ast.Span) (types.TypeInfo, bool) {
	t, ok := types.ParseAnnotation(text)
	if !ok {
		v.addDiag(diagnostics.WAnnotation, span, "unknown type annotation '%s'", text)
	}
	return t, ok
}

func (v *validator) expr(expr ast.Expr, sc *scope, f flow) {
	switch e := expr.(type) {
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			v.expr(el, sc, f)
		}

	case *ast.ObjectLiteral:
		for _, p := range e.Properties {
			v.expr(p.Value, sc, f)
		}

	case *ast.FunctionExpression:
		v.function(e.Name, e.Params, e.ReturnType, e.Body, e.Span, sc)

	case *ast.BinaryExpression:
		v.expr(e.Left, sc, f)
		v.expr(e.Right, sc, f)

	case *ast.LogicalExpression:
		v.expr(e.Left, sc, f)
		v.expr(e.Right, sc, f)

	case *ast.UnaryExpression:
		v.expr(e.Operand, sc, f)

	case *ast.UpdateExpression:
		if id, ok := e.Target.(*ast.Identifier); ok {
			v.checkAssign(id.Name, e.Span, sc)
		}
		v.expr(e.Target, sc, f)

	case *ast.Assignment:
		if id, ok := e.Target.(*ast.Identifier); ok {
			v.checkAssign(id.Name, e.Span, sc)
		}
		v.expr(e.Target, sc, f)
		v.expr(e.Value, sc, f)

	case *ast.ConditionalExpression:
		v.expr(e.Test, sc, f)
		v.expr(e.Consequent, sc, f)
		v.expr(e.Alternate, sc, f)

	case *ast.CallExpression:
		v.expr(e.Callee, sc, f)
		for _, a := range e.Args {
			v.expr(a, sc, f)
		}
		if id, ok := e.Callee.(*ast.Identifier); ok {
			v.call(id.Name, e, sc)
		}

	case *ast.MemberExpression:
		v.expr(e.Object, sc, f)

	case *ast.IndexExpression:
		v.expr(e.Object, sc, f)
		v.expr(e.Index, sc, f)

	case *ast.NewExpression:
		for _, a := range e.Args {
			v.expr(a, sc, f)
		}
	}
}

// call checks a call by name the way it will resolve: builtins first, then
// declared functions.
func (v *validator) call(name string, e *ast.CallExpression, sc *scope) {
	args := make([]types.TypeInfo, len(e.Args))
	for i, a := range e.Args {
		if t, ok := literalType(a); ok {
			args[i] = t
		} else {
			args[i] = types.Any()
		}
	}
	if v.isBuiltin(name) {
		for _, msg := range types.CallFindings(name, args) {
			v.addDiag(diagnostics.WTypeAdvice, e.Span, "%s", msg)
		}
		return
	}
	b, ok := sc.lookup(name)
	if !ok || b.fn == nil {
		return
	}
	fd := b.fn
	if len(args) != len(fd.Params) {
		v.addDiag(diagnostics.EArity, e.Span, "%s() expects %s, got %d", name, plural(len(fd.Params), "argument"), len(args))
		return
	}
	for i, p := range fd.Params {
		want, known := types.ParseAnnotation(p.Type)
		if p.Type == "" || !known || args[i].Kind == types.KindAny {
			continue
		}
		if !v.compatible(args[i], want) {
			v.addDiag(diagnostics.WTypeAdvice, e.Span, "parameter '%s' of %s() expects %s, got %s", p.Name, name, want, args[i])
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// compatible mirrors the run-time check: a subclass instance satisfies its
// superclass annotation. Classes the validator cannot see are given the
// benefit of the doubt.
func (v *validator) compatible(got, want types.TypeInfo) bool {
	switch {
	case want.Kind == types.KindClass && got.Kind == types.KindClass:
		for name := got.ClassName; name != ""; {
			if name == want.ClassName {
				return true
			}
			super, known := v.classes[name]
			if !known {
				return true
			}
			name = super
		}
		return false
	case want.Kind == types.KindArray && got.Kind == types.KindArray:
		if want.Elem == nil || got.Elem == nil {
			return true
		}
		return v.compatible(*got.Elem, *want.Elem)
	}
	return got.IsCompatibleWith(want)
}

// literalType returns the type of an expression whose type is evident
// without running it.
func literalType(e ast.Expr) (types.TypeInfo, bool) {
	switch x := e.(type) {
	case *ast.NumberLiteral:
		return types.Number(), true
	case *ast.StringLiteral:
		return types.String(), true
	case *ast.BooleanLiteral:
		return types.Boolean(), true
	case *ast.NullLiteral:
		return types.Null(), true
	case *ast.UndefinedLiteral:
		return types.Undefined(), true
	case *ast.ObjectLiteral:
		return types.Object(), true
	case *ast.FunctionExpression:
		return types.Function(), true
	case *ast.NewExpression:
		return types.Class(x.ClassName), true
	case *ast.UnaryExpression:
		switch x.Op {
		case ast.OpNot:
			return types.Boolean(), true
		case ast.OpTypeof:
			return types.String(), true
		case ast.OpNeg:
			if _, ok := x.Operand.(*ast.NumberLiteral); ok {
				return types.Number(), true
			}
		}
	case *ast.ArrayLiteral:
		if len(x.Elements) == 0 {
			return types.TypeInfo{Kind: types.KindArray}, true
		}
		var elem types.TypeInfo
		for i, el := range x.Elements {
			t, ok := literalType(el)
			if !ok || (i > 0 && (t.Kind != elem.Kind || t.ClassName != elem.ClassName)) {
				return types.ArrayOf(types.Any()), true
			}
			elem = t
		}
		return types.ArrayOf(elem), true
	}
	return types.Any(), false
}
