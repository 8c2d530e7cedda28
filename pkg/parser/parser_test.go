package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/parser"
)

// ignoreSpans drops position info so trees can be compared structurally.
var ignoreSpans = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Span"
}, cmp.Ignore())

// helper: parse source and assert no diagnostics
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(source, "test.axs")
	require.Empty(t, diags, "unexpected diagnostics")
	require.NotNil(t, prog)
	return prog
}

// helper: parse source and return the diagnostics, asserting failure
func mustFail(t *testing.T, source string) []diagnostics.Diagnostic {
	t.Helper()
	prog, diags := parser.Parse(source, "test.axs")
	require.Nil(t, prog)
	require.NotEmpty(t, diags)
	return diags
}

// helper: extract the expression of a single expression statement
func singleExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := mustParse(t, source)
	require.Len(t, prog.Body, 1)
	es, ok := prog.Body[0].(*ast.ExpressionStatement)
	require.True(t, ok, "expected ExpressionStatement, got %T", prog.Body[0])
	return es.Expr
}

func num(v float64, raw string) *ast.NumberLiteral { return &ast.NumberLiteral{Value: v, Raw: raw} }
func ident(name string) *ast.Identifier         { return &ast.Identifier{Name: name} }

func assertTree(t *testing.T, want, got interface{}) {
	t.Helper()
	if diff := cmp.Diff(want, got, ignoreSpans); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestPrecedenceMultiplicationBindsTighter(t *testing.T) {
	got := singleExpr(t, "1 + 2 * 3;")
	assertTree(t, &ast.BinaryExpression{
		Op:   ast.OpAdd,
		Left: num(1, "1"),
		Right: &ast.BinaryExpression{
			Op: ast.OpMul, Left: num(2, "2"), Right: num(3, "3"),
		},
	}, got)
}

func TestPrecedenceLeftAssociative(t *testing.T) {
	got := singleExpr(t, "10 - 4 - 3;")
	assertTree(t, &ast.BinaryExpression{
		Op:    ast.OpSub,
		Left:  &ast.BinaryExpression{Op: ast.OpSub, Left: num(10, "10"), Right: num(4, "4")},
		Right: num(3, "3"),
	}, got)
}

func TestPrecedenceLogical(t *testing.T) {
	got := singleExpr(t, "a || b && c == d;")
	assertTree(t, &ast.LogicalExpression{
		Op:   ast.OpOr,
		Left: ident("a"),
		Right: &ast.LogicalExpression{
			Op:    ast.OpAnd,
			Left:  ident("b"),
			Right: &ast.BinaryExpression{Op: ast.OpEqEq, Left: ident("c"), Right: ident("d")},
		},
	}, got)
}

func TestPrecedenceRelationalOverEquality(t *testing.T) {
	got := singleExpr(t, "a < b == c > d;")
	assertTree(t, &ast.BinaryExpression{
		Op:    ast.OpEqEq,
		Left:  &ast.BinaryExpression{Op: ast.OpLt, Left: ident("a"), Right: ident("b")},
		Right: &ast.BinaryExpression{Op: ast.OpGt, Left: ident("c"), Right: ident("d")},
	}, got)
}

func TestAssignmentRightAssociative(t *testing.T) {
	got := singleExpr(t, "a = b += 2;")
	assertTree(t, &ast.Assignment{
		Op:     ast.OpAssign,
		Target: ident("a"),
		Value:  &ast.Assignment{Op: ast.OpAddAssign, Target: ident("b"), Value: num(2, "2")},
	}, got)
}

func TestUnaryAndPostfix(t *testing.T) {
	got := singleExpr(t, "-obj.items[i](x)++;")
	assertTree(t, &ast.UnaryExpression{
		Op: ast.OpNeg,
		Operand: &ast.UpdateExpression{
			Op: ast.OpIncrement,
			Target: &ast.CallExpression{
				Callee: &ast.IndexExpression{
					Object: &ast.MemberExpression{Object: ident("obj"), Property: "items"},
					Index:  ident("i"),
				},
				Args: []ast.Expr{ident("x")},
			},
		},
	}, got)
}

func TestPrefixUpdateAndTypeof(t *testing.T) {
	got := singleExpr(t, "typeof ++count;")
	assertTree(t, &ast.UnaryExpression{
		Op:      ast.OpTypeof,
		Operand: &ast.UpdateExpression{Op: ast.OpIncrement, Prefix: true, Target: ident("count")},
	}, got)
}

func TestConditional(t *testing.T) {
	got := singleExpr(t, `x > 5 ? "big" : "small";`)
	assertTree(t, &ast.ConditionalExpression{
		Test:       &ast.BinaryExpression{Op: ast.OpGt, Left: ident("x"), Right: num(5, "5")},
		Consequent: &ast.StringLiteral{Value: "big"},
		Alternate:  &ast.StringLiteral{Value: "small"},
	}, got)
}

func TestLiterals(t *testing.T) {
	got := singleExpr(t, `f([1, "two", true, null, undefined], {name: "John", "age": 30, default: 1});`)
	assertTree(t, &ast.CallExpression{
		Callee: ident("f"),
		Args: []ast.Expr{
			&ast.ArrayLiteral{Elements: []ast.Expr{
				num(1, "1"), &ast.StringLiteral{Value: "two"}, &ast.BooleanLiteral{Value: true},
				&ast.NullLiteral{}, &ast.UndefinedLiteral{},
			}},
			&ast.ObjectLiteral{Properties: []*ast.Property{
				{Key: "name", Value: &ast.StringLiteral{Value: "John"}},
				{Key: "age", Value: num(30, "30")},
				{Key: "default", Value: num(1, "1")},
			}},
		},
	}, got)
}

func TestVarDeclaration(t *testing.T) {
	prog := mustParse(t, "var x: number = 5; let y; const z = \"s\";")
	require.Len(t, prog.Body, 3)
	assertTree(t, &ast.VarDeclaration{Keyword: "var", Name: "x", Type: "number", Init: num(5, "5")}, prog.Body[0])
	assertTree(t, &ast.VarDeclaration{Keyword: "let", Name: "y"}, prog.Body[1])
	assertTree(t, &ast.VarDeclaration{Keyword: "const", Name: "z", Init: &ast.StringLiteral{Value: "s"}}, prog.Body[2])
}

func TestFunctionDeclarationWithAnnotations(t *testing.T) {
	prog := mustParse(t, "function add(a: number, b: number): number { return a + b; }")
	require.Len(t, prog.Body, 1)
	assertTree(t, &ast.FunctionDeclaration{
		Name: "add",
		Params: []*ast.Param{
			{Name: "a", Type: "number"},
			{Name: "b", Type: "number"},
		},
		ReturnType: "number",
		Body: &ast.Block{Body: []ast.Stmt{
			&ast.ReturnStatement{Argument: &ast.BinaryExpression{Op: ast.OpAdd, Left: ident("a"), Right: ident("b")}},
		}},
	}, prog.Body[0])
}

func TestArrayTypeAnnotation(t *testing.T) {
	prog := mustParse(t, "function f(xs: number[][]): string[] { return []; }")
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	assert.Equal(t, "number[][]", fn.Params[0].Type)
	assert.Equal(t, "string[]", fn.ReturnType)
}

func TestClassDeclaration(t *testing.T) {
	src := `
class Player extends Entity {
    constructor(name) { this.name = name; }
    function greet() { return "hi " + this.name; }
    move(dx: number) { super.move(dx); }
}`
	prog := mustParse(t, src)
	cls, ok := prog.Body[0].(*ast.ClassDeclaration)
	require.True(t, ok)
	assert.Equal(t, "Player", cls.Name)
	assert.Equal(t, "Entity", cls.Superclass)
	require.Len(t, cls.Methods, 3)
	assert.Equal(t, "constructor", cls.Methods[0].Name)
	assert.Equal(t, "greet", cls.Methods[1].Name)
	assert.Equal(t, "move", cls.Methods[2].Name)
	assert.Equal(t, "number", cls.Methods[2].Params[0].Type)
	assert.Equal(t, 3, cls.Methods[0].Span.StartLine)
}

func TestStatementKinds(t *testing.T) {
	tests := []struct {
		src  string
		kind string
	}{
		{"if (a) b(); else c();", "IfStatement"},
		{"while (x < 3) x++;", "WhileStatement"},
		{"do { x++; } while (x < 3);", "DoWhileStatement"},
		{"for (var i = 0; i < 3; i++) {}", "ForStatement"},
		{"for (;;) { break; }", "ForStatement"},
		{"for (var k in obj) {}", "ForInStatement"},
		{"for (k in obj) {}", "ForInStatement"},
		{"switch (x) { case 1: a(); default: b(); }", "SwitchStatement"},
		{"try { a(); } catch (e) { b(); } finally { c(); }", "TryStatement"},
		{"try { a(); } finally { c(); }", "TryStatement"},
		{"throw \"boom\";", "ThrowStatement"},
		{"{ var x = 1; }", "Block"},
		{"return;", "ReturnStatement"},
		{"import { sin, cos as c } from \"Math\";", "ImportStatement"},
		{"import Math;", "ImportStatement"},
		{"export function f() {}", "ExportStatement"},
		{"export { a, b };", "ExportStatement"},
		{"new Player(\"p\", 3);", "ExpressionStatement"},
		{"function () {};", "ExpressionStatement"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog := mustParse(t, tt.src)
			require.Len(t, prog.Body, 1)
			assert.Equal(t, tt.kind, prog.Body[0].Kind())
		})
	}
}

func TestForClauses(t *testing.T) {
	prog := mustParse(t, "for (var i = 0; i < 3; i++) { print(i); }")
	loop := prog.Body[0].(*ast.ForStatement)
	assert.IsType(t, &ast.VarDeclaration{}, loop.Init)
	assert.IsType(t, &ast.BinaryExpression{}, loop.Test)
	assert.IsType(t, &ast.UpdateExpression{}, loop.Update)

	prog = mustParse(t, "for (;;) {}")
	loop = prog.Body[0].(*ast.ForStatement)
	assert.Nil(t, loop.Init)
	assert.Nil(t, loop.Test)
	assert.Nil(t, loop.Update)
}

func TestForIn(t *testing.T) {
	prog := mustParse(t, "for (var item in items) print(item);")
	loop := prog.Body[0].(*ast.ForInStatement)
	assert.Equal(t, "item", loop.Variable)
	assert.True(t, loop.Declared)
	assert.Equal(t, "items", loop.Iterable.(*ast.Identifier).Name)
}

func TestSwitchClauses(t *testing.T) {
	prog := mustParse(t, `switch (v) { case "a": print("a"); case "b": print("b"); break; default: print("d"); }`)
	sw := prog.Body[0].(*ast.SwitchStatement)
	require.Len(t, sw.Cases, 3)
	assert.Len(t, sw.Cases[0].Body, 1)
	assert.Len(t, sw.Cases[1].Body, 2)
	assert.Nil(t, sw.Cases[2].Test)
}

func TestImportForms(t *testing.T) {
	prog := mustParse(t, `import { sin, PI as pi } from "Math"; import Utils as U; import * as J from JSON; import "String";`)
	require.Len(t, prog.Body, 4)

	named := prog.Body[0].(*ast.ImportStatement)
	assert.Equal(t, "Math", named.Module)
	require.Len(t, named.Names, 2)
	assert.Equal(t, "sin", named.Names[0].LocalName())
	assert.Equal(t, "pi", named.Names[1].LocalName())

	whole := prog.Body[1].(*ast.ImportStatement)
	assert.Equal(t, "Utils", whole.Module)
	assert.Equal(t, "U", whole.Alias)
	assert.Empty(t, whole.Names)

	star := prog.Body[2].(*ast.ImportStatement)
	assert.Equal(t, "JSON", star.Module)
	assert.Equal(t, "J", star.Alias)

	str := prog.Body[3].(*ast.ImportStatement)
	assert.Equal(t, "String", str.Alias)
}

func TestSemicolonLeniency(t *testing.T) {
	mustParse(t, "var x = 1")
	mustParse(t, "function f() { return 1 }")
	mustParse(t, "if (a) { b() }")
	mustParse(t, ";;var y = 2;;")
}

func TestMissingSemicolonIsError(t *testing.T) {
	diags := mustFail(t, "var x = 1 var y = 2;")
	assert.Contains(t, diags[0].Message, "Expected ';' after variable declaration")
	assert.Equal(t, 1, diags[0].Line())
}

func TestParseErrorsCarryLine(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"missing operand", "var a = 1;\n\nvar x = ;", 3, "Unexpected token ';'"},
		{"unclosed paren", "print((1 + 2);", 1, "Expected ')'"},
		{"bad for", "for (var i = 0 i < 3; i++) {}", 1, "after for-loop initializer"},
		{"try without handler", "try { a(); }\nprint(1);", 2, "Missing catch or finally"},
		{"const without init", "const k;", 1, "Missing initializer"},
		{"bare super", "super;", 1, "'super' must be followed"},
		{"unclosed block", "function f() {\n  var x = 1;\n", 3, "Expected '}'"},
		{"lex error", "var s = \"open;", 1, "unterminated string literal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := mustFail(t, tt.src)
			assert.Equal(t, tt.line, diags[0].Line())
			assert.Contains(t, diags[0].Message, tt.msg)
		})
	}
}

func TestRecoveryCollectsMultipleErrors(t *testing.T) {
	diags := mustFail(t, "var = 1;\nvar ok = 2;\nvar y = );\n")
	require.Len(t, diags, 2)
	assert.Equal(t, 1, diags[0].Line())
	assert.Equal(t, 3, diags[1].Line())
	for _, d := range diags {
		assert.Equal(t, diagnostics.EParse, d.Code)
	}
}

func TestInvalidAssignmentTargetParses(t *testing.T) {
	// Rejected when evaluated, not when parsed.
	got := singleExpr(t, "1 = 2;")
	assert.IsType(t, &ast.Assignment{}, got)
}

func TestParseExpression(t *testing.T) {
	expr, diags := parser.ParseExpression("a.b + 1", "expr")
	require.Empty(t, diags)
	assert.Equal(t, "BinaryExpression", expr.Kind())

	_, diags = parser.ParseExpression("a b", "expr")
	require.NotEmpty(t, diags)
}
