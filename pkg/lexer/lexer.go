// Package lexer implements the AXScript tokenizer.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokVar TokenType = iota
	TokLet
	TokConst
	TokFunction
	TokClass
	TokExtends
	TokNew
	TokThis
	TokSuper
	TokIf
	TokElse
	TokWhile
	TokDo
	TokFor
	TokIn
	TokSwitch
	TokCase
	TokDefault
	TokBreak
	TokContinue
	TokReturn
	TokTry
	TokCatch
	TokFinally
	TokThrow
	TokImport
	TokExport
	TokFrom
	TokAs
	TokTrue
	TokFalse
	TokNull
	TokUndefined
	TokTypeof

	// Literals
	TokNumberLit
	TokStringLit

	// Identifiers
	TokIdent

	// Punctuation
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]
	TokLParen    // (
	TokRParen    // )
	TokColon     // :
	TokSemicolon // ;
	TokComma     // ,
	TokDot       // .
	TokQuestion  // ?

	// Assignment operators
	TokEquals        // =
	TokPlusEquals    // +=
	TokMinusEquals   // -=
	TokStarEquals    // *=
	TokSlashEquals   // /=
	TokPercentEquals // %=

	// Comparison operators
	TokGtEq        // >=
	TokLtEq        // <=
	TokEqEq        // ==
	TokBangEq      // !=
	TokEqEqEq      // ===
	TokBangEqEq    // !==
	TokGt          // >
	TokLt          // <
	TokAndAnd      // &&
	TokOrOr        // ||
	TokBang        // !
	TokPlusPlus    // ++
	TokMinusMinus  // --

	// Arithmetic operators
	TokPlus    // +
	TokMinus   // -
	TokStar    // *
	TokSlash   // /
	TokPercent // %

	// Special
	TokEOF
)

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

var keywords = map[string]TokenType{
	"var":       TokVar,
	"let":       TokLet,
	"const":     TokConst,
	"function":  TokFunction,
	"class":     TokClass,
	"extends":   TokExtends,
	"new":       TokNew,
	"this":      TokThis,
	"super":     TokSuper,
	"if":        TokIf,
	"else":      TokElse,
	"while":     TokWhile,
	"do":        TokDo,
	"for":       TokFor,
	"in":        TokIn,
	"switch":    TokSwitch,
	"case":      TokCase,
	"default":   TokDefault,
	"break":     TokBreak,
	"continue":  TokContinue,
	"return":    TokReturn,
	"try":       TokTry,
	"catch":     TokCatch,
	"finally":   TokFinally,
	"throw":     TokThrow,
	"import":    TokImport,
	"export":    TokExport,
	"from":      TokFrom,
	"as":        TokAs,
	"true":      TokTrue,
	"false":     TokFalse,
	"null":      TokNull,
	"undefined": TokUndefined,
	"typeof":    TokTypeof,
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// operators is ordered longest first so that maximal munch picks "===" over "==".
var operators = []struct {
	text string
	typ  TokenType
}{
	{"===", TokEqEqEq},
	{"!==", TokBangEqEq},
	{"==", TokEqEq},
	{"!=", TokBangEq},
	{">=", TokGtEq},
	{"<=", TokLtEq},
	{"&&", TokAndAnd},
	{"||", TokOrOr},
	{"++", TokPlusPlus},
	{"--", TokMinusMinus},
	{"+=", TokPlusEquals},
	{"-=", TokMinusEquals},
	{"*=", TokStarEquals},
	{"/=", TokSlashEquals},
	{"%=", TokPercentEquals},
	{"{", TokLBrace},
	{"}", TokRBrace},
	{"[", TokLBracket},
	{"]", TokRBracket},
	{"(", TokLParen},
	{")", TokRParen},
	{":", TokColon},
	{";", TokSemicolon},
	{",", TokComma},
	{".", TokDot},
	{"?", TokQuestion},
	{"=", TokEquals},
	{">", TokGt},
	{"<", TokLt},
	{"!", TokBang},
	{"+", TokPlus},
	{"-", TokMinus},
	{"*", TokStar},
	{"/", TokSlash},
	{"%", TokPercent},
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

func (s *scanner) skipWhitespaceAndComments() error {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			startLine, startCol := s.line, s.col
			s.advance()
			s.advance()
			for {
				if s.atEnd() {
					return s.lexError(startLine, startCol, "unterminated block comment")
				}
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	quote := s.advance() // consume opening quote

	var buf strings.Builder
	for !s.atEnd() {
		ch := s.peek()
		if ch == quote {
			s.advance() // consume closing quote
			return Token{
				Type:  TokStringLit,
				Value: buf.String(),
				Span:  s.span(startLine, startCol),
			}, nil
		}
		if ch == '\\' {
			s.advance() // consume backslash
			if s.atEnd() {
				return Token{}, s.lexError(startLine, startCol, "unterminated string escape")
			}
			esc := s.advance()
			switch esc {
			case '"':
				buf.WriteByte('"')
			case '\'':
				buf.WriteByte('\'')
			case '\\':
				buf.WriteByte('\\')
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case '0':
				buf.WriteByte(0)
			case 'u':
				// \uXXXX
				if s.pos+4 > len(s.source) {
					return Token{}, s.lexError(startLine, startCol, "incomplete unicode escape")
				}
				hexStr := s.source[s.pos : s.pos+4]
				codepoint, err := strconv.ParseUint(hexStr, 16, 32)
				if err != nil {
					return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid unicode escape: \\u%s", hexStr))
				}
				buf.WriteRune(rune(codepoint))
				for i := 0; i < 4; i++ {
					s.advance()
				}
			default:
				return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid escape character: \\%c", esc))
			}
		} else if ch == '\n' {
			return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
		} else {
			r, size := utf8.DecodeRuneInString(s.source[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, s.lexError(startLine, startCol, "invalid UTF-8 character in string")
			}
			buf.WriteRune(r)
			for i := 0; i < size; i++ {
				s.advance()
			}
		}
	}
	return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
}

func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}

	// Optional fractional part; a trailing dot belongs to a member access.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for !s.atEnd() && isDigit(s.peek()) {
			s.advance()
		}
	}

	// Optional exponent
	if s.peek() == 'e' || s.peek() == 'E' {
		off := 1
		if s.peekAt(1) == '+' || s.peekAt(1) == '-' {
			off = 2
		}
		if isDigit(s.peekAt(off)) {
			for i := 0; i < off; i++ {
				s.advance()
			}
			for !s.atEnd() && isDigit(s.peek()) {
				s.advance()
			}
		}
	}

	if isAlpha(s.peek()) {
		return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("invalid number literal '%s%c'", s.source[startPos:s.pos], s.peek()))
	}

	return Token{
		Type:  TokNumberLit,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol),
	}, nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	if tokType, ok := keywords[text]; ok {
		return Token{
			Type:  tokType,
			Value: text,
			Span:  s.span(startLine, startCol),
		}
	}

	return Token{
		Type:  TokIdent,
		Value: text,
		Span:  s.span(startLine, startCol),
	}
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	if err := s.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col),
		}, nil
	}

	ch := s.peek()
	startLine, startCol := s.line, s.col

	if isDigit(ch) {
		return s.scanNumber()
	}
	if ch == '"' || ch == '\'' {
		return s.scanString()
	}
	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), nil
	}

	for _, op := range operators {
		if strings.HasPrefix(s.source[s.pos:], op.text) {
			for i := 0; i < len(op.text); i++ {
				s.advance()
			}
			return Token{Type: op.typ, Value: op.text, Span: s.span(startLine, startCol)}, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
	s.advance()
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected character '%c'", r))
}

// Tokenize breaks source code into a slice of tokens.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
