// Package parser implements the AXScript recursive-descent parser.
package parser

import (
	"fmt"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/lexer"
)

// maxErrors bounds error collection after recovery.
const maxErrors = 25

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into an AST. On failure the program is
// nil and at least one E_LEX or E_PARSE diagnostic is returned.
func Parse(source, filename string) (prog *ast.Program, diags []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}

	p := &parser{tokens: tokens, pos: 0}
	defer func() {
		if r := recover(); r != nil {
			tok := p.current()
			prog = nil
			diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse,
				fmt.Sprintf("internal parser error near '%s': %v", tok.Value, r), &tok.Span, ""))
		}
	}()

	prog = p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

// ParseExpression parses a single standalone expression.
func ParseExpression(source, filename string) (ast.Expr, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}
	p := &parser{tokens: tokens}
	expr := p.parseExpr()
	if expr != nil && p.peek() != lexer.TokEOF {
		tok := p.current()
		p.addError(fmt.Sprintf("Unexpected token '%s' after expression", tok.Value), &tok.Span)
	}
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return expr, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) match(typ lexer.TokenType) bool {
	if p.peek() == typ {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(typ lexer.TokenType, context string) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		msg := fmt.Sprintf("Expected %s, got %s", tokenName(typ), describe(tok))
		if context != "" {
			msg = fmt.Sprintf("Expected %s %s, got %s", tokenName(typ), context, describe(tok))
		}
		p.addError(msg, &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

// consumeSemicolon accepts a ';' or, leniently, nothing before '}' or end of input.
func (p *parser) consumeSemicolon(after string) bool {
	switch p.peek() {
	case lexer.TokSemicolon:
		p.advance()
		return true
	case lexer.TokRBrace, lexer.TokEOF:
		return true
	}
	tok := p.current()
	p.addError(fmt.Sprintf("Expected ';' after %s, got %s", after, describe(tok)), &tok.Span)
	return false
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	prev := start
	if p.pos > 0 {
		prev = p.tokens[p.pos-1].Span
	}
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   prev.EndLine,
		EndCol:    prev.EndCol,
	}
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// synchronize skips tokens until a likely statement boundary.
func (p *parser) synchronize() {
	for p.peek() != lexer.TokEOF {
		if p.peek() == lexer.TokSemicolon {
			p.advance()
			return
		}
		switch p.peek() {
		case lexer.TokVar, lexer.TokLet, lexer.TokConst, lexer.TokFunction, lexer.TokClass,
			lexer.TokIf, lexer.TokWhile, lexer.TokDo, lexer.TokFor, lexer.TokSwitch,
			lexer.TokTry, lexer.TokThrow, lexer.TokReturn, lexer.TokImport, lexer.TokExport:
			return
		}
		p.advance()
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLBrace:
		return "'{'"
	case lexer.TokRBrace:
		return "'}'"
	case lexer.TokLBracket:
		return "'['"
	case lexer.TokRBracket:
		return "']'"
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokColon:
		return "':'"
	case lexer.TokSemicolon:
		return "';'"
	case lexer.TokComma:
		return "','"
	case lexer.TokEquals:
		return "'='"
	case lexer.TokWhile:
		return "'while'"
	case lexer.TokFrom:
		return "'from'"
	case lexer.TokIn:
		return "'in'"
	case lexer.TokAs:
		return "'as'"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokStringLit:
		return "string"
	case lexer.TokNumberLit:
		return "number"
	case lexer.TokEOF:
		return "end of input"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

// isKeyword returns true if the token type is a keyword.
func isKeyword(t lexer.TokenType) bool {
	return t >= lexer.TokVar && t <= lexer.TokTypeof
}

// isPropertyName reports whether a token may name a member or object key.
func isPropertyName(t lexer.TokenType) bool {
	return t == lexer.TokIdent || isKeyword(t)
}

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span
	var stmts []ast.Stmt

	for p.peek() != lexer.TokEOF {
		if p.match(lexer.TokSemicolon) {
			continue
		}
		before := len(p.diags)
		stmt := p.parseStatement()
		if stmt == nil {
			if len(p.diags) == before {
				tok := p.current()
				p.addError(fmt.Sprintf("Unexpected token %s", describe(tok)), &tok.Span)
			}
			if len(p.diags) >= maxErrors {
				break
			}
			start := p.pos
			p.synchronize()
			if p.pos == start {
				p.advance()
			}
			continue
		}
		stmts = append(stmts, stmt)
	}

	return &ast.Program{
		Span: p.spanFrom(startSpan),
		Body: stmts,
	}
}
