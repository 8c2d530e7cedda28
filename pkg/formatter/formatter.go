// Package formatter implements the AXScript source code formatter.
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/axarion/axscript/pkg/ast"
)

const (
	indent = "  "
	// maxInline is the widest array or object literal kept on one line.
	maxInline = 72
)

// Binding strength of each expression form (higher = tighter binding).
const (
	precAssign = iota + 1
	precConditional
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precPrimary
)

var binaryPrec = map[ast.BinaryOp]int{
	ast.OpEqEq: precEquality, ast.OpNeq: precEquality,
	ast.OpStrictEq: precEquality, ast.OpStrictNeq: precEquality,
	ast.OpGt: precRelational, ast.OpLt: precRelational,
	ast.OpGtEq: precRelational, ast.OpLtEq: precRelational,
	ast.OpAdd: precAdditive, ast.OpSub: precAdditive,
	ast.OpMul: precMultiplicative, ast.OpDiv: precMultiplicative, ast.OpMod: precMultiplicative,
}

func exprPrec(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.Assignment:
		return precAssign
	case *ast.ConditionalExpression:
		return precConditional
	case *ast.LogicalExpression:
		if expr.Op == ast.OpOr {
			return precOr
		}
		return precAnd
	case *ast.BinaryExpression:
		return binaryPrec[expr.Op]
	case *ast.UnaryExpression:
		return precUnary
	case *ast.UpdateExpression:
		if expr.Prefix {
			return precUnary
		}
		return precPostfix
	case *ast.CallExpression, *ast.MemberExpression, *ast.IndexExpression:
		return precPostfix
	}
	return precPrimary
}

// Format pretty-prints an AXScript program. Blank lines between top-level
// statements are kept (collapsed to one); comments are not part of the tree
// and are lost, see HasComments.
func Format(program *ast.Program) string {
	body := formatBody(program.Body, 0)
	if body == "" {
		return ""
	}
	return body + "\n"
}

// HasComments reports whether source contains `//` or `/* */` comments
// outside string literals.
func HasComments(source string) bool {
	var quote byte
	for i := 0; i < len(source); i++ {
		ch := source[i]
		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote, '\n':
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '/':
			if i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*') {
				return true
			}
		}
	}
	return false
}

func formatBody(stmts []ast.Stmt, depth int) string {
	lines := make([]string, 0, len(stmts))
	for i, s := range stmts {
		if i > 0 && s.NodeSpan().StartLine > stmts[i-1].NodeSpan().EndLine+1 {
			lines = append(lines, "")
		}
		lines = append(lines, formatStmt(s, depth))
	}
	return strings.Join(lines, "\n")
}

func formatBlock(b *ast.Block, depth int) string {
	if len(b.Body) == 0 {
		return "{}"
	}
	return "{\n" + formatBody(b.Body, depth+1) + "\n" + strings.Repeat(indent, depth) + "}"
}

// formatClause renders the body of if/while/for: blocks stay on the header
// line, single statements go indented on the next.
func formatClause(s ast.Stmt, depth int) string {
	if b, ok := s.(*ast.Block); ok {
		return " " + formatBlock(b, depth)
	}
	return "\n" + formatStmt(s, depth+1)
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.VarDeclaration:
		return prefix + formatVar(stmt, depth) + ";"
	case *ast.FunctionDeclaration:
		return prefix + "function " + stmt.Name + formatSignature(stmt.Params, stmt.ReturnType) + " " + formatBlock(stmt.Body, depth)
	case *ast.ClassDeclaration:
		return prefix + formatClass(stmt, depth)
	case *ast.Block:
		return prefix + formatBlock(stmt, depth)
	case *ast.ExpressionStatement:
		return prefix + formatExprStatement(stmt.Expr, depth) + ";"
	case *ast.IfStatement:
		return prefix + formatIf(stmt, depth)
	case *ast.WhileStatement:
		return prefix + "while (" + formatExpr(stmt.Test, depth) + ")" + formatClause(stmt.Body, depth)
	case *ast.DoWhileStatement:
		body := formatClause(stmt.Body, depth)
		if _, ok := stmt.Body.(*ast.Block); ok {
			body += " "
		} else {
			body += "\n" + prefix
		}
		return prefix + "do" + body + "while (" + formatExpr(stmt.Test, depth) + ");"
	case *ast.ForStatement:
		return prefix + "for (" + formatForHeader(stmt, depth) + ")" + formatClause(stmt.Body, depth)
	case *ast.ForInStatement:
		head := stmt.Variable
		if stmt.Declared {
			head = "var " + head
		}
		return prefix + "for (" + head + " in " + formatExpr(stmt.Iterable, depth) + ")" + formatClause(stmt.Body, depth)
	case *ast.SwitchStatement:
		return prefix + formatSwitch(stmt, depth)
	case *ast.TryStatement:
		out := prefix + "try " + formatBlock(stmt.Block, depth)
		if stmt.Handler != nil {
			out += " catch "
			if stmt.CatchParam != "" {
				out += "(" + stmt.CatchParam + ") "
			}
			out += formatBlock(stmt.Handler, depth)
		}
		if stmt.Finalizer != nil {
			out += " finally " + formatBlock(stmt.Finalizer, depth)
		}
		return out
	case *ast.ThrowStatement:
		return prefix + "throw " + formatExpr(stmt.Argument, depth) + ";"
	case *ast.BreakStatement:
		return prefix + "break;"
	case *ast.ContinueStatement:
		return prefix + "continue;"
	case *ast.ReturnStatement:
		if stmt.Argument == nil {
			return prefix + "return;"
		}
		return prefix + "return " + formatExpr(stmt.Argument, depth) + ";"
	case *ast.ImportStatement:
		return prefix + formatImport(stmt) + ";"
	case *ast.ExportStatement:
		if stmt.Declaration != nil {
			return prefix + "export " + strings.TrimPrefix(formatStmt(stmt.Declaration, depth), prefix)
		}
		return prefix + "export { " + strings.Join(stmt.Names, ", ") + " };"
	}
	return prefix + ";"
}

func formatVar(v *ast.VarDeclaration, depth int) string {
	out := v.Keyword + " " + v.Name
	if v.Type != "" {
		out += ": " + v.Type
	}
	if v.Init != nil {
		out += " = " + formatExpr(v.Init, depth)
	}
	return out
}

func formatSignature(params []*ast.Param, ret string) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
		if p.Type != "" {
			parts[i] += ": " + p.Type
		}
	}
	out := "(" + strings.Join(parts, ", ") + ")"
	if ret != "" {
		out += ": " + ret
	}
	return out
}

func formatClass(c *ast.ClassDeclaration, depth int) string {
	head := "class " + c.Name
	if c.Superclass != "" {
		head += " extends " + c.Superclass
	}
	if len(c.Methods) == 0 {
		return head + " {}"
	}
	inner := strings.Repeat(indent, depth+1)
	methods := make([]string, len(c.Methods))
	for i, m := range c.Methods {
		methods[i] = inner + m.Name + formatSignature(m.Params, m.ReturnType) + " " + formatBlock(m.Body, depth+1)
	}
	return head + " {\n" + strings.Join(methods, "\n\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatIf(stmt *ast.IfStatement, depth int) string {
	prefix := strings.Repeat(indent, depth)
	out := "if (" + formatExpr(stmt.Test, depth) + ")" + formatClause(stmt.Consequent, depth)
	if stmt.Alternate == nil {
		return out
	}
	if _, ok := stmt.Consequent.(*ast.Block); ok {
		out += " else"
	} else {
		out += "\n" + prefix + "else"
	}
	if elif, ok := stmt.Alternate.(*ast.IfStatement); ok {
		return out + " " + formatIf(elif, depth)
	}
	return out + formatClause(stmt.Alternate, depth)
}

func formatForHeader(stmt *ast.ForStatement, depth int) string {
	var init, test, update string
	switch in := stmt.Init.(type) {
	case *ast.VarDeclaration:
		init = formatVar(in, depth)
	case *ast.ExpressionStatement:
		init = formatExpr(in.Expr, depth)
	}
	if stmt.Test != nil {
		test = " " + formatExpr(stmt.Test, depth)
	}
	if stmt.Update != nil {
		update = " " + formatExpr(stmt.Update, depth)
	}
	return init + ";" + test + ";" + update
}

func formatSwitch(stmt *ast.SwitchStatement, depth int) string {
	out := "switch (" + formatExpr(stmt.Discriminant, depth) + ") {"
	inner := strings.Repeat(indent, depth+1)
	for _, c := range stmt.Cases {
		if c.Test == nil {
			out += "\n" + inner + "default:"
		} else {
			out += "\n" + inner + "case " + formatExpr(c.Test, depth+1) + ":"
		}
		if len(c.Body) > 0 {
			out += "\n" + formatBody(c.Body, depth+2)
		}
	}
	return out + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatImport(stmt *ast.ImportStatement) string {
	if len(stmt.Names) > 0 {
		specs := make([]string, len(stmt.Names))
		for i, n := range stmt.Names {
			specs[i] = n.Name
			if n.Alias != "" && n.Alias != n.Name {
				specs[i] += " as " + n.Alias
			}
		}
		return "import { " + strings.Join(specs, ", ") + " } from " + quote(stmt.Module)
	}
	if !isIdentifier(stmt.Module) {
		return "import * as " + stmt.Alias + " from " + quote(stmt.Module)
	}
	if stmt.Alias == "" || stmt.Alias == stmt.Module {
		return "import " + stmt.Module
	}
	return "import " + stmt.Module + " as " + stmt.Alias
}

// formatExprStatement parenthesizes statements that would otherwise start
// with `{` or `function` and be read as a block or declaration.
func formatExprStatement(e ast.Expr, depth int) string {
	switch leftmost(e).(type) {
	case *ast.ObjectLiteral, *ast.FunctionExpression:
		return "(" + formatExpr(e, depth) + ")"
	}
	return formatExpr(e, depth)
}

func leftmost(e ast.Expr) ast.Expr {
	for {
		switch expr := e.(type) {
		case *ast.Assignment:
			e = expr.Target
		case *ast.ConditionalExpression:
			e = expr.Test
		case *ast.LogicalExpression:
			e = expr.Left
		case *ast.BinaryExpression:
			e = expr.Left
		case *ast.CallExpression:
			e = expr.Callee
		case *ast.MemberExpression:
			e = expr.Object
		case *ast.IndexExpression:
			e = expr.Object
		case *ast.UpdateExpression:
			if expr.Prefix {
				return e
			}
			e = expr.Target
		default:
			return e
		}
	}
}

// operand formats e, wrapping it in parentheses when it binds looser than min.
func operand(e ast.Expr, min, depth int) string {
	s := formatExpr(e, depth)
	if exprPrec(e) < min {
		return "(" + s + ")"
	}
	return s
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.NumberLiteral:
		if expr.Raw != "" {
			return expr.Raw
		}
		return strconv.FormatFloat(expr.Value, 'g', -1, 64)
	case *ast.StringLiteral:
		return quote(expr.Value)
	case *ast.BooleanLiteral:
		return strconv.FormatBool(expr.Value)
	case *ast.NullLiteral:
		return "null"
	case *ast.UndefinedLiteral:
		return "undefined"
	case *ast.Identifier:
		return expr.Name
	case *ast.ThisExpression:
		return "this"
	case *ast.SuperExpression:
		return "super"
	case *ast.ArrayLiteral:
		return formatArray(expr, depth)
	case *ast.ObjectLiteral:
		return formatObject(expr, depth)
	case *ast.FunctionExpression:
		head := "function"
		if expr.Name != "" {
			head += " " + expr.Name
		}
		return head + formatSignature(expr.Params, expr.ReturnType) + " " + formatBlock(expr.Body, depth)
	case *ast.BinaryExpression:
		p := binaryPrec[expr.Op]
		return operand(expr.Left, p, depth) + " " + string(expr.Op) + " " + operand(expr.Right, p+1, depth)
	case *ast.LogicalExpression:
		p := exprPrec(expr)
		return operand(expr.Left, p, depth) + " " + string(expr.Op) + " " + operand(expr.Right, p+1, depth)
	case *ast.UnaryExpression:
		inner := operand(expr.Operand, precUnary, depth)
		switch {
		case expr.Op == ast.OpTypeof:
			return "typeof " + inner
		case expr.Op == ast.OpNeg && strings.HasPrefix(inner, "-"):
			// "--x" would lex as a decrement.
			return "-(" + inner + ")"
		}
		return string(expr.Op) + inner
	case *ast.UpdateExpression:
		if expr.Prefix {
			return string(expr.Op) + operand(expr.Target, precUnary, depth)
		}
		return operand(expr.Target, precPostfix, depth) + string(expr.Op)
	case *ast.Assignment:
		return operand(expr.Target, precPostfix, depth) + " " + string(expr.Op) + " " + operand(expr.Value, precAssign, depth)
	case *ast.ConditionalExpression:
		return operand(expr.Test, precOr, depth) + " ? " +
			operand(expr.Consequent, precAssign, depth) + " : " +
			operand(expr.Alternate, precAssign, depth)
	case *ast.CallExpression:
		return formatCallee(expr.Callee, depth) + "(" + formatArgs(expr.Args, depth) + ")"
	case *ast.MemberExpression:
		return formatCallee(expr.Object, depth) + "." + expr.Property
	case *ast.IndexExpression:
		return formatCallee(expr.Object, depth) + "[" + formatExpr(expr.Index, depth) + "]"
	case *ast.NewExpression:
		return "new " + expr.ClassName + "(" + formatArgs(expr.Args, depth) + ")"
	}
	return ""
}

// formatCallee renders the object of a call, member or index expression.
func formatCallee(e ast.Expr, depth int) string {
	if _, ok := e.(*ast.NumberLiteral); ok {
		return "(" + formatExpr(e, depth) + ")"
	}
	return operand(e, precPostfix, depth)
}

func formatArgs(args []ast.Expr, depth int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = operand(a, precAssign, depth)
	}
	return strings.Join(parts, ", ")
}

func formatArray(arr *ast.ArrayLiteral, depth int) string {
	if len(arr.Elements) == 0 {
		return "[]"
	}

	// Try inline first
	inlineParts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		inlineParts[i] = operand(e, precAssign, depth+1)
	}
	inline := "[" + strings.Join(inlineParts, ", ") + "]"
	if len(inline) <= maxInline && !strings.Contains(inline, "\n") {
		return inline
	}

	inner := strings.Repeat(indent, depth+1)
	outer := strings.Repeat(indent, depth)
	parts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		parts[i] = inner + operand(e, precAssign, depth+1)
	}
	return "[\n" + strings.Join(parts, ",\n") + "\n" + outer + "]"
}

func formatObject(obj *ast.ObjectLiteral, depth int) string {
	if len(obj.Properties) == 0 {
		return "{}"
	}

	inlineParts := make([]string, len(obj.Properties))
	for i, p := range obj.Properties {
		inlineParts[i] = formatKey(p.Key) + ": " + operand(p.Value, precAssign, depth+1)
	}
	inline := "{ " + strings.Join(inlineParts, ", ") + " }"
	if len(inline) <= maxInline && !strings.Contains(inline, "\n") {
		return inline
	}

	inner := strings.Repeat(indent, depth+1)
	outer := strings.Repeat(indent, depth)
	parts := make([]string, len(obj.Properties))
	for i, p := range obj.Properties {
		parts[i] = inner + formatKey(p.Key) + ": " + operand(p.Value, precAssign, depth+1)
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n" + outer + "}"
}

func formatKey(key string) string {
	if isIdentifier(key) {
		return key
	}
	return quote(key)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		alpha := ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch == '$'
		if !alpha && (i == 0 || ch < '0' || ch > '9') {
			return false
		}
	}
	return true
}

// quote renders s as a double-quoted literal using only the escapes the
// lexer understands.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
