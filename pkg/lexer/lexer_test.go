package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/diagnostics"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.axs")
	require.NoError(t, err)
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	require.NotEmpty(t, tokens)
	require.Equal(t, TokEOF, tokens[len(tokens)-1].Type, "last token is not EOF")
	return tokens[:len(tokens)-1]
}

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	require.Len(t, tokens, 1)
	assert.Equal(t, TokEOF, tokens[0].Type)
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"var", TokVar},
		{"let", TokLet},
		{"const", TokConst},
		{"function", TokFunction},
		{"class", TokClass},
		{"extends", TokExtends},
		{"new", TokNew},
		{"this", TokThis},
		{"super", TokSuper},
		{"do", TokDo},
		{"in", TokIn},
		{"switch", TokSwitch},
		{"default", TokDefault},
		{"finally", TokFinally},
		{"throw", TokThrow},
		{"import", TokImport},
		{"export", TokExport},
		{"from", TokFrom},
		{"undefined", TokUndefined},
		{"typeof", TokTypeof},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.keyword)
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.expected, tokens[0].Type)
			assert.True(t, IsKeyword(tt.keyword))
		})
	}
	assert.False(t, IsKeyword("player"))
}

func TestOperatorsMaximalMunch(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "=== !== == != = ++ += + -- -= - && || ! <= < >= > *= * /= / %= %")
	assert.Equal(t, []TokenType{
		TokEqEqEq, TokBangEqEq, TokEqEq, TokBangEq, TokEquals,
		TokPlusPlus, TokPlusEquals, TokPlus,
		TokMinusMinus, TokMinusEquals, TokMinus,
		TokAndAnd, TokOrOr, TokBang,
		TokLtEq, TokLt, TokGtEq, TokGt,
		TokStarEquals, TokStar, TokSlashEquals, TokSlash, TokPercentEquals, TokPercent,
	}, types(tokens))
}

func TestNumbers(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "0 42 3.14 1e3 2.5E-2")
	want := []string{"0", "42", "3.14", "1e3", "2.5E-2"}
	require.Len(t, tokens, len(want))
	for i, tok := range tokens {
		assert.Equal(t, TokNumberLit, tok.Type)
		assert.Equal(t, want[i], tok.Value)
	}
}

func TestNumberFollowedByMember(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "arr.length")
	assert.Equal(t, []TokenType{TokIdent, TokDot, TokIdent}, types(tokens))
}

func TestStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote\"inside"`, `quote"inside`},
		{`'it\'s'`, "it's"},
		{`"back\\slash"`, `back\slash`},
		{`"A"`, "A"},
		{`"héllo"`, "héllo"},
	}
	for _, tt := range tests {
		tokens := mustTokenizeNoEOF(t, tt.src)
		require.Len(t, tokens, 1, tt.src)
		assert.Equal(t, TokStringLit, tokens[0].Type)
		assert.Equal(t, tt.want, tokens[0].Value)
	}
}

func TestComments(t *testing.T) {
	src := "var x = 1; // trailing\n/* block\ncomment */ var y = 2;"
	tokens := mustTokenizeNoEOF(t, src)
	assert.Equal(t, []TokenType{
		TokVar, TokIdent, TokEquals, TokNumberLit, TokSemicolon,
		TokVar, TokIdent, TokEquals, TokNumberLit, TokSemicolon,
	}, types(tokens))
	assert.Equal(t, 3, tokens[5].Span.StartLine)
}

func TestSpans(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "var a\n  = 10;")
	assert.Equal(t, 1, tokens[0].Span.StartLine)
	assert.Equal(t, 1, tokens[0].Span.StartCol)
	assert.Equal(t, 5, tokens[1].Span.StartCol)
	assert.Equal(t, 2, tokens[2].Span.StartLine)
	assert.Equal(t, 3, tokens[2].Span.StartCol)
	assert.Equal(t, "test.axs", tokens[2].Span.File)
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unterminated string", `"abc`, "unterminated string literal"},
		{"newline in string", "\"abc\ndef\"", "unterminated string literal"},
		{"bad escape", `"\q"`, "invalid escape character"},
		{"bad unicode", `"\uZZZZ"`, "invalid unicode escape"},
		{"unexpected char", "var x = @;", "unexpected character '@'"},
		{"block comment", "/* never closed", "unterminated block comment"},
		{"bad number", "12abc", "invalid number literal"},
		{"lone ampersand", "a & b", "unexpected character '&'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src, "test.axs")
			require.Error(t, err)
			var lexErr *LexError
			require.True(t, errors.As(err, &lexErr))
			assert.Equal(t, diagnostics.ELex, lexErr.Diag.Code)
			assert.Contains(t, lexErr.Error(), tt.msg)
			require.NotNil(t, lexErr.Diag.Span)
			assert.Equal(t, 1, lexErr.Diag.Span.StartLine)
		})
	}
}

func TestFullStatement(t *testing.T) {
	src := `function add(a: number, b: number): number { return a + b; }`
	tokens := mustTokenizeNoEOF(t, src)
	assert.Equal(t, []TokenType{
		TokFunction, TokIdent, TokLParen,
		TokIdent, TokColon, TokIdent, TokComma,
		TokIdent, TokColon, TokIdent, TokRParen,
		TokColon, TokIdent, TokLBrace,
		TokReturn, TokIdent, TokPlus, TokIdent, TokSemicolon,
		TokRBrace,
	}, types(tokens))
}
