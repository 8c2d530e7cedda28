package parser

import (
	"fmt"
	"strconv"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/lexer"
)

var assignOps = map[lexer.TokenType]ast.AssignOp{
	lexer.TokEquals:        ast.OpAssign,
	lexer.TokPlusEquals:    ast.OpAddAssign,
	lexer.TokMinusEquals:   ast.OpSubAssign,
	lexer.TokStarEquals:    ast.OpMulAssign,
	lexer.TokSlashEquals:   ast.OpDivAssign,
	lexer.TokPercentEquals: ast.OpModAssign,
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

// parseAssignment is right-associative: a = b = c.
func (p *parser) parseAssignment() ast.Expr {
	left := p.parseConditional()
	if left == nil {
		return nil
	}
	op, ok := assignOps[p.peek()]
	if !ok {
		return left
	}
	p.advance()
	value := p.parseAssignment()
	if value == nil {
		return nil
	}
	return &ast.Assignment{
		Span:   p.spanFromTo(left.NodeSpan(), value.NodeSpan()),
		Op:     op,
		Target: left,
		Value:  value,
	}
}

func (p *parser) parseConditional() ast.Expr {
	test := p.parseOr()
	if test == nil {
		return nil
	}
	if !p.match(lexer.TokQuestion) {
		return test
	}
	cons := p.parseAssignment()
	if cons == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokColon, "in conditional expression"); !ok {
		return nil
	}
	alt := p.parseAssignment()
	if alt == nil {
		return nil
	}
	return &ast.ConditionalExpression{
		Span:       p.spanFromTo(test.NodeSpan(), alt.NodeSpan()),
		Test:       test,
		Consequent: cons,
		Alternate:  alt,
	}
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokOrOr {
		p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpression{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpOr,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokAndAnd {
		p.advance()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpression{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpAnd,
			Left:  left,
			Right: right,
		}
	}
	return left
}

// parseBinaryLevel parses a left-associative chain of operators drawn from ops.
func (p *parser) parseBinaryLevel(next func() ast.Expr, ops map[lexer.TokenType]ast.BinaryOp) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for {
		op, ok := ops[p.peek()]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

var (
	equalityOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokEqEq:     ast.OpEqEq,
		lexer.TokBangEq:   ast.OpNeq,
		lexer.TokEqEqEq:   ast.OpStrictEq,
		lexer.TokBangEqEq: ast.OpStrictNeq,
	}
	relationalOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokGt:   ast.OpGt,
		lexer.TokLt:   ast.OpLt,
		lexer.TokGtEq: ast.OpGtEq,
		lexer.TokLtEq: ast.OpLtEq,
	}
	additiveOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokPlus:  ast.OpAdd,
		lexer.TokMinus: ast.OpSub,
	}
	multiplicativeOps = map[lexer.TokenType]ast.BinaryOp{
		lexer.TokStar:    ast.OpMul,
		lexer.TokSlash:   ast.OpDiv,
		lexer.TokPercent: ast.OpMod,
	}
)

func (p *parser) parseEquality() ast.Expr {
	return p.parseBinaryLevel(p.parseRelational, equalityOps)
}

func (p *parser) parseRelational() ast.Expr {
	return p.parseBinaryLevel(p.parseAdditive, relationalOps)
}

func (p *parser) parseAdditive() ast.Expr {
	return p.parseBinaryLevel(p.parseMultiplicative, additiveOps)
}

func (p *parser) parseMultiplicative() ast.Expr {
	return p.parseBinaryLevel(p.parseUnary, multiplicativeOps)
}

func (p *parser) parseUnary() ast.Expr {
	var op ast.UnaryOp
	switch p.peek() {
	case lexer.TokMinus:
		op = ast.OpNeg
	case lexer.TokBang:
		op = ast.OpNot
	case lexer.TokTypeof:
		op = ast.OpTypeof
	case lexer.TokPlusPlus, lexer.TokMinusMinus:
		start := p.advance()
		target := p.parseUnary()
		if target == nil {
			return nil
		}
		uop := ast.OpIncrement
		if start.Type == lexer.TokMinusMinus {
			uop = ast.OpDecrement
		}
		return &ast.UpdateExpression{
			Span:   p.spanFromTo(start.Span, target.NodeSpan()),
			Op:     uop,
			Prefix: true,
			Target: target,
		}
	default:
		return p.parsePostfix()
	}
	start := p.advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpression{
		Span:    p.spanFromTo(start.Span, operand.NodeSpan()),
		Op:      op,
		Operand: operand,
	}
}

func (p *parser) parseArgs() ([]ast.Expr, bool) {
	if _, ok := p.expect(lexer.TokLParen, ""); !ok {
		return nil, false
	}
	var args []ast.Expr
	for p.peek() != lexer.TokRParen {
		arg := p.parseAssignment()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	if _, ok := p.expect(lexer.TokRParen, "after arguments"); !ok {
		return nil, false
	}
	return args, true
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.peek() {
		case lexer.TokLParen:
			args, ok := p.parseArgs()
			if !ok {
				return nil
			}
			expr = &ast.CallExpression{Span: p.spanFrom(expr.NodeSpan()), Callee: expr, Args: args}
		case lexer.TokDot:
			p.advance()
			tok := p.current()
			if !isPropertyName(tok.Type) {
				p.addError(fmt.Sprintf("Expected property name after '.', got %s", describe(tok)), &tok.Span)
				return nil
			}
			p.advance()
			expr = &ast.MemberExpression{Span: p.spanFrom(expr.NodeSpan()), Object: expr, Property: tok.Value}
		case lexer.TokLBracket:
			p.advance()
			index := p.parseExpr()
			if index == nil {
				return nil
			}
			if _, ok := p.expect(lexer.TokRBracket, "after index"); !ok {
				return nil
			}
			expr = &ast.IndexExpression{Span: p.spanFrom(expr.NodeSpan()), Object: expr, Index: index}
		case lexer.TokPlusPlus, lexer.TokMinusMinus:
			tok := p.advance()
			op := ast.OpIncrement
			if tok.Type == lexer.TokMinusMinus {
				op = ast.OpDecrement
			}
			return &ast.UpdateExpression{Span: p.spanFrom(expr.NodeSpan()), Op: op, Target: expr}
		default:
			if _, ok := expr.(*ast.SuperExpression); ok {
				p.addError("'super' must be followed by a call or member access", ptr(expr.NodeSpan()))
				return nil
			}
			return expr
		}
	}
}

func ptr(s ast.Span) *ast.Span { return &s }

func (p *parser) parsePrimary() ast.Expr {
	switch p.peek() {
	case lexer.TokLParen:
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen, "after expression"); !ok {
			return nil
		}
		return expr

	case lexer.TokLBrace:
		return p.parseObjectLiteral()

	case lexer.TokLBracket:
		return p.parseArrayLiteral()

	case lexer.TokNumberLit:
		tok := p.advance()
		val, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.addError(fmt.Sprintf("Invalid number literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.NumberLiteral{Span: tok.Span, Value: val, Raw: tok.Value}

	case lexer.TokStringLit:
		tok := p.advance()
		return &ast.StringLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue:
		tok := p.advance()
		return &ast.BooleanLiteral{Span: tok.Span, Value: true}

	case lexer.TokFalse:
		tok := p.advance()
		return &ast.BooleanLiteral{Span: tok.Span, Value: false}

	case lexer.TokNull:
		tok := p.advance()
		return &ast.NullLiteral{Span: tok.Span}

	case lexer.TokUndefined:
		tok := p.advance()
		return &ast.UndefinedLiteral{Span: tok.Span}

	case lexer.TokThis:
		tok := p.advance()
		return &ast.ThisExpression{Span: tok.Span}

	case lexer.TokSuper:
		tok := p.advance()
		return &ast.SuperExpression{Span: tok.Span}

	case lexer.TokIdent:
		tok := p.advance()
		return &ast.Identifier{Span: tok.Span, Name: tok.Value}

	case lexer.TokFunction:
		return p.parseFunctionExpression()

	case lexer.TokNew:
		return p.parseNew()

	default:
		tok := p.current()
		p.addError(fmt.Sprintf("Unexpected token %s", describe(tok)), &tok.Span)
		return nil
	}
}

func (p *parser) parseFunctionExpression() ast.Expr {
	start := p.advance() // consume 'function'
	fn := &ast.FunctionExpression{}
	if p.peek() == lexer.TokIdent {
		fn.Name = p.advance().Value
	}
	params, ret, body, ok := p.parseFunctionRest()
	if !ok {
		return nil
	}
	fn.Params, fn.ReturnType, fn.Body = params, ret, body
	fn.Span = p.spanFrom(start.Span)
	return fn
}

func (p *parser) parseNew() ast.Expr {
	start := p.advance() // consume 'new'
	name, ok := p.expect(lexer.TokIdent, "as class name after 'new'")
	if !ok {
		return nil
	}
	expr := &ast.NewExpression{ClassName: name.Value}
	if p.peek() == lexer.TokLParen {
		args, ok := p.parseArgs()
		if !ok {
			return nil
		}
		expr.Args = args
	}
	expr.Span = p.spanFrom(start.Span)
	return expr
}

func (p *parser) parseArrayLiteral() ast.Expr {
	start := p.advance() // consume '['
	lit := &ast.ArrayLiteral{}
	for p.peek() != lexer.TokRBracket {
		elem := p.parseAssignment()
		if elem == nil {
			return nil
		}
		lit.Elements = append(lit.Elements, elem)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	if _, ok := p.expect(lexer.TokRBracket, "to close array literal"); !ok {
		return nil
	}
	lit.Span = p.spanFrom(start.Span)
	return lit
}

func (p *parser) parseObjectLiteral() ast.Expr {
	start := p.advance() // consume '{'
	lit := &ast.ObjectLiteral{}
	for p.peek() != lexer.TokRBrace {
		tok := p.current()
		var key string
		switch {
		case isPropertyName(tok.Type), tok.Type == lexer.TokStringLit, tok.Type == lexer.TokNumberLit:
			key = tok.Value
			p.advance()
		default:
			p.addError(fmt.Sprintf("Expected property key, got %s", describe(tok)), &tok.Span)
			return nil
		}
		if _, ok := p.expect(lexer.TokColon, "after property key"); !ok {
			return nil
		}
		value := p.parseAssignment()
		if value == nil {
			return nil
		}
		lit.Properties = append(lit.Properties, &ast.Property{
			Span:  p.spanFromTo(tok.Span, value.NodeSpan()),
			Key:   key,
			Value: value,
		})
		if !p.match(lexer.TokComma) {
			break
		}
	}
	if _, ok := p.expect(lexer.TokRBrace, "to close object literal"); !ok {
		return nil
	}
	lit.Span = p.spanFrom(start.Span)
	return lit
}
