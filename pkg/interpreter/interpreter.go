package interpreter

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/axarion/axscript/internal/logging"
	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/capabilities"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/types"
)

// ModuleResolver supplies the exports object for an imported module name.
type ModuleResolver interface {
	Resolve(ctx context.Context, name string) (*Object, error)
}

// ExecOptions configures program execution.
type ExecOptions struct {
	// Builtins are global native functions, consulted before user functions.
	Builtins map[string]*Builtin
	// Globals are predefined variables such as PI and E.
	Globals map[string]Value
	// Prototypes hold the methods reachable as members of arrays ("array")
	// and strings ("string"); the receiver is passed as the first argument.
	Prototypes map[string]*Object
	Modules    ModuleResolver
	// Context is the host object scripts see as `this` and act on through bindings.
	Context      any
	Input        capabilities.Input
	Policy       *capabilities.Policy
	Strict       bool
	Budget       Budget
	MaxCallDepth int
	Checker      *types.Checker
	Trace        func(event TraceEvent)
	RunID        string
}

// ExecResult holds everything a run produced. It is returned even when the
// run fails, so partial output is never lost.
type ExecResult struct {
	Output     []string
	Warnings   []string
	TypeErrors []string
	Exports    *Object
	Tracker    BudgetTracker
}

type interp struct {
	ctx      context.Context
	opts     ExecOptions
	log      logrus.FieldLogger
	global   *Env
	this     Value     // current `this`, nil when none is bound
	fn       *Function // function being executed, for super
	depth    int
	maxDepth int
	tracker  BudgetTracker
	checker  *types.Checker
	output   []string
	warnings []string
	exports  *Object
}

// Execute runs a parsed program on a fresh global environment.
func Execute(ctx context.Context, program *ast.Program, opts ExecOptions) (res *ExecResult, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Budget.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Budget.Timeout)
		defer cancel()
	}
	in := newInterp(ctx, opts)

	defer func() {
		if r := recover(); r != nil {
			in.log.WithField("stack", string(debug.Stack())).Errorf("interpreter panic: %v", r)
			err = &RuntimeError{Code: diagnostics.EInternal, Message: fmt.Sprintf("internal error: %v", r)}
			res = in.result()
		}
	}()

	span := program.Span
	in.emit(TraceRunStart, &span)
	err = in.run(program)
	in.emitWithData(TraceRunEnd, &span, map[string]string{"ok": fmt.Sprint(err == nil)})
	if err != nil {
		in.log.WithError(err).Debug("script failed")
	}
	return in.result(), err
}

func newInterp(ctx context.Context, opts ExecOptions) *interp {
	in := &interp{
		ctx:      ctx,
		opts:     opts,
		log:      logging.Logger(ctx),
		global:   NewEnv(nil),
		maxDepth: opts.MaxCallDepth,
		checker:  opts.Checker,
		exports:  NewObject(),
		tracker:  BudgetTracker{StartNanos: hiresNow()},
	}
	if in.maxDepth <= 0 {
		in.maxDepth = defaultMaxCallDepth
	}
	if in.checker == nil {
		in.checker = types.NewChecker()
	}
	if opts.RunID != "" {
		in.log = in.log.WithField("run", opts.RunID)
	}
	for name, v := range opts.Globals {
		in.global.Define(name, v)
	}
	if opts.Context != nil {
		in.this = &HostObject{Target: opts.Context}
	}
	return in
}

func (in *interp) run(program *ast.Program) error {
	sig, err := in.execStatements(program.Body, in.global)
	if err != nil {
		return err
	}
	switch sig.kind {
	case sigBreak, sigContinue:
		return newError(diagnostics.EControl, sig.span, "Illegal %s statement", sig.kind)
	}
	// A top-level return simply ends the script.
	return nil
}

func (in *interp) result() *ExecResult {
	return &ExecResult{
		Output:     in.output,
		Warnings:   in.warnings,
		TypeErrors: in.checker.Errors(),
		Exports:    in.exports,
		Tracker:    in.tracker,
	}
}

// Call is the handle a builtin receives for the invocation in progress.
type Call struct {
	in   *interp
	Name string
	Span ast.Span
}

// Context returns the execution's context.Context.
func (c *Call) Context() context.Context {
	return c.in.ctx
}

// ContextObject returns the host object bound to this execution, or nil.
func (c *Call) ContextObject() any {
	return c.in.opts.Context
}

// This returns the value currently bound to `this`, or nil.
func (c *Call) This() Value {
	return c.in.this
}

// Input returns the host's input source, or nil.
func (c *Call) Input() capabilities.Input {
	return c.in.opts.Input
}

// Print appends a line to the buffered output.
func (c *Call) Print(line string) {
	c.in.print(line)
}

// Warn records a buffered warning. Hosts get warnings in the result, so the
// log entry is only debug level.
func (c *Call) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.in.warnings = append(c.in.warnings, msg)
	c.in.log.WithFields(logrus.Fields{"builtin": c.Name, "line": c.Span.StartLine}).Debug(msg)
	c.in.emitWithData(TraceWarning, &c.Span, map[string]string{"message": msg})
}

// Logger returns the execution's logger.
func (c *Call) Logger() logrus.FieldLogger {
	return c.in.log
}

// Require fails with E_CAP_DENIED when the policy denies capability.
func (c *Call) Require(capability string) error {
	if c.in.opts.Policy.IsAllowed(capability) {
		return nil
	}
	return newError(diagnostics.ECapDenied, c.Span, "capability '%s' denied by policy", capability)
}

// Invoke calls a script-visible function value, e.g. an Array.map callback.
func (c *Call) Invoke(fn Value, args ...Value) (Value, error) {
	return c.in.callValue(fn, args, c.Span)
}

// Errorf builds a runtime error located at the call site.
func (c *Call) Errorf(format string, args ...interface{}) error {
	return newError(diagnostics.EFn, c.Span, format, args...)
}

// TypeErrorf builds a type error located at the call site.
func (c *Call) TypeErrorf(format string, args ...interface{}) error {
	return newError(diagnostics.EType, c.Span, format, args...)
}

func (in *interp) print(line string) {
	in.output = append(in.output, line)
	if out, ok := logging.OutputLogger(in.ctx); ok {
		out.Info(line)
	}
}

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart       TraceEventType = "run_start"
	TraceRunEnd         TraceEventType = "run_end"
	TraceStmtStart      TraceEventType = "stmt_start"
	TraceStmtEnd        TraceEventType = "stmt_end"
	TraceFnCallStart    TraceEventType = "fn_call_start"
	TraceFnCallEnd      TraceEventType = "fn_call_end"
	TraceBuiltinCall    TraceEventType = "builtin_call"
	TraceLoopStart      TraceEventType = "loop_start"
	TraceLoopEnd        TraceEventType = "loop_end"
	TraceTryStart       TraceEventType = "try_start"
	TraceTryEnd         TraceEventType = "try_end"
	TraceThrow          TraceEventType = "throw"
	TraceImport         TraceEventType = "import"
	TraceWarning        TraceEventType = "warning"
	TraceBudgetExceeded TraceEventType = "budget_exceeded"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

func (in *interp) emit(event TraceEventType, span *ast.Span) {
	in.emitWithData(event, span, nil)
}

func (in *interp) emitWithData(event TraceEventType, span *ast.Span, data map[string]string) {
	if in.opts.Trace == nil {
		return
	}
	in.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     in.opts.RunID,
		Event:     event,
		Span:      span,
		Data:      data,
	})
}
