package interpreter

import (
	"errors"
	"fmt"

	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/diagnostics"
)

// RuntimeError is an error raised while evaluating a script.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	if e.Span != nil && e.Span.StartLine > 0 {
		return fmt.Sprintf("%s (line %d)", e.Message, e.Span.StartLine)
	}
	return e.Message
}

// Diagnostic converts the error to a diagnostic.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

// ThrowError carries a value raised by a `throw` statement.
type ThrowError struct {
	Value Value
	Span  *ast.Span
}

func (e *ThrowError) Error() string {
	msg := ToDisplayString(e.Value)
	if e.Span != nil && e.Span.StartLine > 0 {
		return fmt.Sprintf("%s (line %d)", msg, e.Span.StartLine)
	}
	return msg
}

func newError(code string, span ast.Span, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Span: &span}
}

// withSpan attaches span to errors coming out of builtins and host code.
// Errors that already carry a location are returned unchanged.
func withSpan(err error, span ast.Span) error {
	var rt *RuntimeError
	if errors.As(err, &rt) {
		if rt.Span == nil {
			rt.Span = &span
		}
		return rt
	}
	var te *ThrowError
	if errors.As(err, &te) {
		return te
	}
	return &RuntimeError{Code: diagnostics.EFn, Message: err.Error(), Span: &span}
}

// CatchMessage returns the string a catch clause binds for err, and whether
// scripts may catch err at all. Budget and cancellation errors are not catchable.
func CatchMessage(err error) (string, bool) {
	var te *ThrowError
	if errors.As(err, &te) {
		return ToDisplayString(te.Value), true
	}
	var rt *RuntimeError
	if errors.As(err, &rt) {
		switch rt.Code {
		case diagnostics.EBudget, diagnostics.EInternal:
			return "", false
		}
		return rt.Message, true
	}
	return "", false
}

// signalKind identifies a non-local control transfer.
type signalKind int

const (
	sigNone signalKind = iota
	sigBreak
	sigContinue
	sigReturn
)

func (k signalKind) String() string {
	switch k {
	case sigBreak:
		return "break"
	case sigContinue:
		return "continue"
	case sigReturn:
		return "return"
	}
	return "none"
}

// signal is the outcome of executing a statement. It is kept apart from
// error so that control flow can never be caught by try/catch.
type signal struct {
	kind  signalKind
	value Value
	span  ast.Span
}

var normal = signal{}

func (s signal) is(k signalKind) bool {
	return s.kind == k
}
