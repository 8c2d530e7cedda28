package parser

import (
	"fmt"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/lexer"
)

func (p *parser) parseStatement() ast.Stmt {
	switch p.peek() {
	case lexer.TokVar, lexer.TokLet, lexer.TokConst:
		decl := p.parseVarDeclaration()
		if decl == nil || !p.consumeSemicolon("variable declaration") {
			return nil
		}
		return decl
	case lexer.TokFunction:
		// `function (...) {}` in statement position is an expression statement.
		if p.peekAt(1) == lexer.TokIdent {
			return p.parseFunctionDeclaration()
		}
	case lexer.TokClass:
		return p.parseClassDeclaration()
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokDo:
		return p.parseDoWhile()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokSwitch:
		return p.parseSwitch()
	case lexer.TokTry:
		return p.parseTry()
	case lexer.TokThrow:
		return p.parseThrow()
	case lexer.TokBreak:
		tok := p.advance()
		if !p.consumeSemicolon("'break'") {
			return nil
		}
		return &ast.BreakStatement{Span: tok.Span}
	case lexer.TokContinue:
		tok := p.advance()
		if !p.consumeSemicolon("'continue'") {
			return nil
		}
		return &ast.ContinueStatement{Span: tok.Span}
	case lexer.TokReturn:
		return p.parseReturn()
	case lexer.TokLBrace:
		return p.parseBlock()
	case lexer.TokImport:
		return p.parseImport()
	case lexer.TokExport:
		return p.parseExport()
	}
	return p.parseExpressionStatement()
}

func (p *parser) parseExpressionStatement() ast.Stmt {
	start := p.current().Span
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if !p.consumeSemicolon("expression") {
		return nil
	}
	return &ast.ExpressionStatement{Span: p.spanFrom(start), Expr: expr}
}

func (p *parser) parseBlock() *ast.Block {
	start, ok := p.expect(lexer.TokLBrace, "")
	if !ok {
		return nil
	}
	var body []ast.Stmt
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		if p.match(lexer.TokSemicolon) {
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		body = append(body, stmt)
	}
	if _, ok := p.expect(lexer.TokRBrace, "to close block"); !ok {
		return nil
	}
	return &ast.Block{Span: p.spanFrom(start.Span), Body: body}
}

// parseVarDeclaration parses `var name[: type] [= init]` without the terminator.
func (p *parser) parseVarDeclaration() *ast.VarDeclaration {
	kw := p.advance()
	name, ok := p.expect(lexer.TokIdent, "after '"+kw.Value+"'")
	if !ok {
		return nil
	}
	decl := &ast.VarDeclaration{Keyword: kw.Value, Name: name.Value}
	if p.match(lexer.TokColon) {
		typ, ok := p.parseTypeAnnotation()
		if !ok {
			return nil
		}
		decl.Type = typ
	}
	if p.match(lexer.TokEquals) {
		decl.Init = p.parseExpr()
		if decl.Init == nil {
			return nil
		}
	} else if kw.Type == lexer.TokConst {
		tok := p.current()
		p.addError(fmt.Sprintf("Missing initializer in const declaration '%s'", name.Value), &tok.Span)
		return nil
	}
	decl.Span = p.spanFrom(kw.Span)
	return decl
}

// parseTypeAnnotation parses a type name with any number of `[]` suffixes.
func (p *parser) parseTypeAnnotation() (string, bool) {
	tok := p.current()
	var name string
	switch tok.Type {
	case lexer.TokIdent, lexer.TokNull, lexer.TokUndefined, lexer.TokFunction:
		name = p.advance().Value
	default:
		p.addError(fmt.Sprintf("Expected type name, got %s", describe(tok)), &tok.Span)
		return "", false
	}
	for p.peek() == lexer.TokLBracket && p.peekAt(1) == lexer.TokRBracket {
		p.advance()
		p.advance()
		name += "[]"
	}
	return name, true
}

func (p *parser) parseParams() ([]*ast.Param, bool) {
	if _, ok := p.expect(lexer.TokLParen, "before parameters"); !ok {
		return nil, false
	}
	var params []*ast.Param
	for p.peek() != lexer.TokRParen {
		name, ok := p.expect(lexer.TokIdent, "as parameter name")
		if !ok {
			return nil, false
		}
		param := &ast.Param{Span: name.Span, Name: name.Value}
		if p.match(lexer.TokColon) {
			typ, ok := p.parseTypeAnnotation()
			if !ok {
				return nil, false
			}
			param.Type = typ
		}
		params = append(params, param)
		if !p.match(lexer.TokComma) {
			break
		}
	}
	if _, ok := p.expect(lexer.TokRParen, "after parameters"); !ok {
		return nil, false
	}
	return params, true
}

// parseFunctionRest parses params, optional return annotation and body.
func (p *parser) parseFunctionRest() ([]*ast.Param, string, *ast.Block, bool) {
	params, ok := p.parseParams()
	if !ok {
		return nil, "", nil, false
	}
	var ret string
	if p.match(lexer.TokColon) {
		ret, ok = p.parseTypeAnnotation()
		if !ok {
			return nil, "", nil, false
		}
	}
	if p.peek() != lexer.TokLBrace {
		tok := p.current()
		p.addError(fmt.Sprintf("Expected '{' before function body, got %s", describe(tok)), &tok.Span)
		return nil, "", nil, false
	}
	body := p.parseBlock()
	if body == nil {
		return nil, "", nil, false
	}
	return params, ret, body, true
}

func (p *parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	start := p.advance() // consume 'function'
	name, ok := p.expect(lexer.TokIdent, "as function name")
	if !ok {
		return nil
	}
	params, ret, body, ok := p.parseFunctionRest()
	if !ok {
		return nil
	}
	return &ast.FunctionDeclaration{
		Span:       p.spanFrom(start.Span),
		Name:       name.Value,
		Params:     params,
		ReturnType: ret,
		Body:       body,
	}
}

func (p *parser) parseClassDeclaration() *ast.ClassDeclaration {
	start := p.advance() // consume 'class'
	name, ok := p.expect(lexer.TokIdent, "as class name")
	if !ok {
		return nil
	}
	decl := &ast.ClassDeclaration{Name: name.Value}
	if p.match(lexer.TokExtends) {
		super, ok := p.expect(lexer.TokIdent, "after 'extends'")
		if !ok {
			return nil
		}
		decl.Superclass = super.Value
	}
	if _, ok := p.expect(lexer.TokLBrace, "before class body"); !ok {
		return nil
	}
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		if p.match(lexer.TokSemicolon) {
			continue
		}
		mstart := p.current().Span
		p.match(lexer.TokFunction)
		mname, ok := p.expect(lexer.TokIdent, "as method name")
		if !ok {
			return nil
		}
		params, ret, body, ok := p.parseFunctionRest()
		if !ok {
			return nil
		}
		decl.Methods = append(decl.Methods, &ast.FunctionDeclaration{
			Span:       p.spanFrom(mstart),
			Name:       mname.Value,
			Params:     params,
			ReturnType: ret,
			Body:       body,
		})
	}
	if _, ok := p.expect(lexer.TokRBrace, "to close class body"); !ok {
		return nil
	}
	decl.Span = p.spanFrom(start.Span)
	return decl
}

func (p *parser) parseCondition(keyword string) ast.Expr {
	if _, ok := p.expect(lexer.TokLParen, "after '"+keyword+"'"); !ok {
		return nil
	}
	test := p.parseExpr()
	if test == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRParen, "after condition"); !ok {
		return nil
	}
	return test
}

func (p *parser) parseIf() ast.Stmt {
	start := p.advance() // consume 'if'
	test := p.parseCondition("if")
	if test == nil {
		return nil
	}
	cons := p.parseStatement()
	if cons == nil {
		return nil
	}
	stmt := &ast.IfStatement{Test: test, Consequent: cons}
	if p.match(lexer.TokElse) {
		stmt.Alternate = p.parseStatement()
		if stmt.Alternate == nil {
			return nil
		}
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance() // consume 'while'
	test := p.parseCondition("while")
	if test == nil {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.WhileStatement{Span: p.spanFrom(start.Span), Test: test, Body: body}
}

func (p *parser) parseDoWhile() ast.Stmt {
	start := p.advance() // consume 'do'
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokWhile, "after do-while body"); !ok {
		return nil
	}
	test := p.parseCondition("while")
	if test == nil {
		return nil
	}
	p.match(lexer.TokSemicolon)
	return &ast.DoWhileStatement{Span: p.spanFrom(start.Span), Body: body, Test: test}
}

func (p *parser) parseFor() ast.Stmt {
	start := p.advance() // consume 'for'
	if _, ok := p.expect(lexer.TokLParen, "after 'for'"); !ok {
		return nil
	}

	// for (var x in expr) / for (x in expr)
	declared := p.peek() == lexer.TokVar || p.peek() == lexer.TokLet || p.peek() == lexer.TokConst
	if (declared && p.peekAt(1) == lexer.TokIdent && p.peekAt(2) == lexer.TokIn) ||
		(p.peek() == lexer.TokIdent && p.peekAt(1) == lexer.TokIn) {
		if declared {
			p.advance()
		}
		name := p.advance()
		p.advance() // consume 'in'
		iter := p.parseExpr()
		if iter == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen, "after for-in header"); !ok {
			return nil
		}
		body := p.parseStatement()
		if body == nil {
			return nil
		}
		return &ast.ForInStatement{
			Span:     p.spanFrom(start.Span),
			Variable: name.Value,
			Declared: declared,
			Iterable: iter,
			Body:     body,
		}
	}

	stmt := &ast.ForStatement{}
	switch p.peek() {
	case lexer.TokSemicolon:
	case lexer.TokVar, lexer.TokLet, lexer.TokConst:
		decl := p.parseVarDeclaration()
		if decl == nil {
			return nil
		}
		stmt.Init = decl
	default:
		istart := p.current().Span
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		stmt.Init = &ast.ExpressionStatement{Span: p.spanFrom(istart), Expr: expr}
	}
	if _, ok := p.expect(lexer.TokSemicolon, "after for-loop initializer"); !ok {
		return nil
	}
	if p.peek() != lexer.TokSemicolon {
		stmt.Test = p.parseExpr()
		if stmt.Test == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokSemicolon, "after for-loop condition"); !ok {
		return nil
	}
	if p.peek() != lexer.TokRParen {
		stmt.Update = p.parseExpr()
		if stmt.Update == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokRParen, "after for-loop clauses"); !ok {
		return nil
	}
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseSwitch() ast.Stmt {
	start := p.advance() // consume 'switch'
	disc := p.parseCondition("switch")
	if disc == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokLBrace, "before switch body"); !ok {
		return nil
	}
	stmt := &ast.SwitchStatement{Discriminant: disc}
	seenDefault := false
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		cstart := p.current()
		clause := &ast.CaseClause{}
		switch cstart.Type {
		case lexer.TokCase:
			p.advance()
			clause.Test = p.parseExpr()
			if clause.Test == nil {
				return nil
			}
		case lexer.TokDefault:
			p.advance()
			if seenDefault {
				p.addError("Multiple default clauses in switch", &cstart.Span)
				return nil
			}
			seenDefault = true
		default:
			p.addError(fmt.Sprintf("Expected 'case' or 'default', got %s", describe(cstart)), &cstart.Span)
			return nil
		}
		if _, ok := p.expect(lexer.TokColon, "after case label"); !ok {
			return nil
		}
		for p.peek() != lexer.TokCase && p.peek() != lexer.TokDefault &&
			p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
			if p.match(lexer.TokSemicolon) {
				continue
			}
			s := p.parseStatement()
			if s == nil {
				return nil
			}
			clause.Body = append(clause.Body, s)
		}
		clause.Span = p.spanFrom(cstart.Span)
		stmt.Cases = append(stmt.Cases, clause)
	}
	if _, ok := p.expect(lexer.TokRBrace, "to close switch body"); !ok {
		return nil
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseTry() ast.Stmt {
	start := p.advance() // consume 'try'
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	stmt := &ast.TryStatement{Block: block}
	if p.match(lexer.TokCatch) {
		if p.match(lexer.TokLParen) {
			param, ok := p.expect(lexer.TokIdent, "as catch parameter")
			if !ok {
				return nil
			}
			stmt.CatchParam = param.Value
			if _, ok := p.expect(lexer.TokRParen, "after catch parameter"); !ok {
				return nil
			}
		}
		stmt.Handler = p.parseBlock()
		if stmt.Handler == nil {
			return nil
		}
	}
	if p.match(lexer.TokFinally) {
		stmt.Finalizer = p.parseBlock()
		if stmt.Finalizer == nil {
			return nil
		}
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		tok := p.current()
		p.addError("Missing catch or finally after try", &tok.Span)
		return nil
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseThrow() ast.Stmt {
	start := p.advance() // consume 'throw'
	arg := p.parseExpr()
	if arg == nil {
		return nil
	}
	if !p.consumeSemicolon("throw") {
		return nil
	}
	return &ast.ThrowStatement{Span: p.spanFrom(start.Span), Argument: arg}
}

func (p *parser) parseReturn() ast.Stmt {
	start := p.advance() // consume 'return'
	stmt := &ast.ReturnStatement{}
	switch p.peek() {
	case lexer.TokSemicolon, lexer.TokRBrace, lexer.TokEOF:
	default:
		stmt.Argument = p.parseExpr()
		if stmt.Argument == nil {
			return nil
		}
	}
	if !p.consumeSemicolon("return value") {
		return nil
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseModuleName() (string, bool) {
	tok := p.current()
	if tok.Type == lexer.TokStringLit || tok.Type == lexer.TokIdent {
		p.advance()
		return tok.Value, true
	}
	p.addError(fmt.Sprintf("Expected module name, got %s", describe(tok)), &tok.Span)
	return "", false
}

func (p *parser) parseImport() ast.Stmt {
	start := p.advance() // consume 'import'
	stmt := &ast.ImportStatement{}

	switch p.peek() {
	case lexer.TokLBrace:
		p.advance()
		for p.peek() != lexer.TokRBrace {
			name, ok := p.expect(lexer.TokIdent, "in import list")
			if !ok {
				return nil
			}
			spec := &ast.ImportSpec{Span: name.Span, Name: name.Value}
			if p.match(lexer.TokAs) {
				alias, ok := p.expect(lexer.TokIdent, "after 'as'")
				if !ok {
					return nil
				}
				spec.Alias = alias.Value
			}
			stmt.Names = append(stmt.Names, spec)
			if !p.match(lexer.TokComma) {
				break
			}
		}
		if _, ok := p.expect(lexer.TokRBrace, "to close import list"); !ok {
			return nil
		}
		if len(stmt.Names) == 0 {
			p.addError("Empty import list", &start.Span)
			return nil
		}
		if _, ok := p.expect(lexer.TokFrom, "after import list"); !ok {
			return nil
		}
		mod, ok := p.parseModuleName()
		if !ok {
			return nil
		}
		stmt.Module = mod
	case lexer.TokStar:
		p.advance()
		if _, ok := p.expect(lexer.TokAs, "after '*'"); !ok {
			return nil
		}
		alias, ok := p.expect(lexer.TokIdent, "after 'as'")
		if !ok {
			return nil
		}
		if _, ok := p.expect(lexer.TokFrom, "after namespace import"); !ok {
			return nil
		}
		mod, ok := p.parseModuleName()
		if !ok {
			return nil
		}
		stmt.Module = mod
		stmt.Alias = alias.Value
	default:
		mod, ok := p.parseModuleName()
		if !ok {
			return nil
		}
		stmt.Module = mod
		stmt.Alias = mod
		if p.match(lexer.TokAs) {
			alias, ok := p.expect(lexer.TokIdent, "after 'as'")
			if !ok {
				return nil
			}
			stmt.Alias = alias.Value
		}
	}
	if !p.consumeSemicolon("import") {
		return nil
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}

func (p *parser) parseExport() ast.Stmt {
	start := p.advance() // consume 'export'
	stmt := &ast.ExportStatement{}
	switch p.peek() {
	case lexer.TokVar, lexer.TokLet, lexer.TokConst:
		decl := p.parseVarDeclaration()
		if decl == nil || !p.consumeSemicolon("variable declaration") {
			return nil
		}
		stmt.Declaration = decl
	case lexer.TokFunction:
		decl := p.parseFunctionDeclaration()
		if decl == nil {
			return nil
		}
		stmt.Declaration = decl
	case lexer.TokClass:
		decl := p.parseClassDeclaration()
		if decl == nil {
			return nil
		}
		stmt.Declaration = decl
	case lexer.TokLBrace:
		p.advance()
		for p.peek() != lexer.TokRBrace {
			name, ok := p.expect(lexer.TokIdent, "in export list")
			if !ok {
				return nil
			}
			stmt.Names = append(stmt.Names, name.Value)
			if !p.match(lexer.TokComma) {
				break
			}
		}
		if _, ok := p.expect(lexer.TokRBrace, "to close export list"); !ok {
			return nil
		}
		if !p.consumeSemicolon("export list") {
			return nil
		}
	default:
		tok := p.current()
		p.addError(fmt.Sprintf("Expected declaration or '{' after 'export', got %s", describe(tok)), &tok.Span)
		return nil
	}
	stmt.Span = p.spanFrom(start.Span)
	return stmt
}
