package types

import (
	"fmt"
	"sync"
)

// Checker accumulates advisory type findings. Findings never stop execution;
// the one hard failure (declared return type mismatch) is raised by the
// interpreter itself.
type Checker struct {
	mu     sync.Mutex
	errors []string
	seen   map[string]bool
}

// NewChecker returns an empty Checker.
func NewChecker() *Checker {
	return &Checker{seen: make(map[string]bool)}
}

// Report records a finding formatted as "Type error at line N: msg".
// Identical findings (a call inside a loop, say) are recorded once.
func (c *Checker) Report(line int, format string, args ...interface{}) {
	msg := fmt.Sprintf("Type error at line %d: %s", line, fmt.Sprintf(format, args...))
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[msg] {
		return
	}
	c.seen[msg] = true
	c.errors = append(c.errors, msg)
}

// Errors returns a copy of the findings in report order.
func (c *Checker) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.errors))
	copy(out, c.errors)
	return out
}

// CheckCall validates argument count and types against a builtin's catalogued
// signature. Unknown builtins are ignored.
func (c *Checker) CheckCall(name string, args []TypeInfo, line int) {
	for _, msg := range CallFindings(name, args) {
		c.Report(line, "%s", msg)
	}
}

// CallFindings returns the problems a call to the named builtin with the
// given argument types would have. An arity problem hides the type checks.
func CallFindings(name string, args []TypeInfo) []string {
	sig, ok := BuiltinSignature(name)
	if !ok {
		return nil
	}
	if !sig.AcceptsArity(len(args)) {
		return []string{fmt.Sprintf("%s() expects %s, got %d", name, arityText(sig), len(args))}
	}
	var out []string
	for i, arg := range args {
		want := sig.ParamType(i)
		if !arg.IsCompatibleWith(want) {
			out = append(out, fmt.Sprintf("argument %d of %s() should be %s, got %s", i+1, name, want, arg))
		}
	}
	return out
}

func arityText(sig FunctionType) string {
	switch {
	case sig.Variadic:
		return fmt.Sprintf("at least %d arguments", sig.Min)
	case sig.Min == len(sig.Params):
		if sig.Min == 1 {
			return "1 argument"
		}
		return fmt.Sprintf("%d arguments", sig.Min)
	default:
		return fmt.Sprintf("%d to %d arguments", sig.Min, len(sig.Params))
	}
}
