// Package diagnostics defines AXScript diagnostic types for parse, check and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/axarion/axscript/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex        = "E_LEX"
	EParse      = "E_PARSE"
	EType       = "E_TYPE"
	EUndefined  = "E_UNDEFINED"
	EArity      = "E_ARITY"
	EDivZero    = "E_DIV_ZERO"
	EThrow      = "E_THROW"
	EProperty   = "E_PROPERTY"
	EAssign     = "E_ASSIGN"
	EIterate    = "E_ITERATE"
	ENotCall    = "E_NOT_CALLABLE"
	EClass      = "E_CLASS"
	EThis       = "E_THIS"
	EControl    = "E_CONTROL"
	EModule     = "E_MODULE"
	EFn         = "E_FN"
	ECapDenied  = "E_CAP_DENIED"
	EStack      = "E_STACK"
	EBudget     = "E_BUDGET"
	EIO         = "E_IO"
	EConfig     = "E_CONFIG"
	EInternal   = "E_INTERNAL"
	WBinding    = "W_BINDING"
	WTypeAdvice = "W_TYPE"
	WAnnotation = "W_ANNOTATION"
	WDupParam   = "W_DUP_PARAM"
	WConst      = "W_CONST"
	WShadow     = "W_SHADOW"
)

// Diagnostic represents a parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// IsWarning reports whether the diagnostic is advisory.
func (d Diagnostic) IsWarning() bool {
	return strings.HasPrefix(d.Code, "W_")
}

// Line returns the diagnostic's start line, or 0 when it has no span.
func (d Diagnostic) Line() int {
	if d.Span == nil {
		return 0
	}
	return d.Span.StartLine
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	severity := "error"
	if d.IsWarning() {
		severity = "warning"
	}
	out := fmt.Sprintf("%s[%s]: %s\n  --> %s", severity, d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}

// FormatParseError renders the first parse diagnostic as a one-line message.
func FormatParseError(d Diagnostic) string {
	if d.Span == nil {
		return "Parse error: " + d.Message
	}
	return fmt.Sprintf("Parse error at line %d, column %d: %s", d.Span.StartLine, d.Span.StartCol, d.Message)
}
