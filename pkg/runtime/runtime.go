// Package runtime provides the top-level AXScript runtime orchestrator.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/axarion/axscript/internal/logging"
	"github.com/axarion/axscript/pkg/ast"
	"github.com/axarion/axscript/pkg/bindings"
	"github.com/axarion/axscript/pkg/capabilities"
	"github.com/axarion/axscript/pkg/config"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/formatter"
	"github.com/axarion/axscript/pkg/interpreter"
	"github.com/axarion/axscript/pkg/parser"
	"github.com/axarion/axscript/pkg/stdlib"
	"github.com/axarion/axscript/pkg/types"
	"github.com/axarion/axscript/pkg/validator"
)

// ScriptName is the file name diagnostics use for sources passed to Execute.
const ScriptName = "<script>"

// Result holds the outcome of one execution. Output is nil when the script
// printed nothing; Error is nil on success.
type Result struct {
	Success    bool
	Output     *string
	Error      *string
	TypeErrors []string
	Warnings   []string
	Exports    map[string]interpreter.Value
	// ErrorCode is the diagnostic code of Error, E_INTERNAL when unknown.
	ErrorCode string `json:"-"`
	Stats     Stats  `json:"-"`
}

// Stats reports resource usage for a run.
type Stats struct {
	Iterations int64
	Calls      int64
	Duration   time.Duration
}

// MarshalJSON renders the result with script values converted to JSON.
func (r *Result) MarshalJSON() ([]byte, error) {
	exports := make(map[string]json.RawMessage, len(r.Exports))
	for name, v := range r.Exports {
		raw, err := interpreter.ValueToJSON(v, "")
		if err != nil {
			return nil, errors.Wrapf(err, "export %s", name)
		}
		exports[name] = raw
	}
	return json.Marshal(struct {
		Success    bool                       `json:"success"`
		Output     *string                    `json:"output"`
		Error      *string                    `json:"error"`
		TypeErrors []string                   `json:"type_errors"`
		Warnings   []string                   `json:"warnings"`
		Exports    map[string]json.RawMessage `json:"exports"`
	}{r.Success, r.Output, r.Error, r.TypeErrors, r.Warnings, exports})
}

// ExportNames returns the exported names in sorted order.
func (r *Result) ExportNames() []string {
	names := make([]string, 0, len(r.Exports))
	for name := range r.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Runtime wires together all AXScript components for program execution.
// A Runtime is safe for concurrent use; every execution gets a fresh
// interpreter and global environment.
type Runtime struct {
	stdlib      *stdlib.Registry
	bindings    *bindings.Registry
	modules     *stdlib.ModuleSystem
	policy      *capabilities.Policy
	input       capabilities.Input
	strict      bool
	budget      interpreter.Budget
	maxDepth    int
	modulePaths []string
	runID       string
	trace       func(event interpreter.TraceEvent)

	builtins map[string]*interpreter.Builtin
	names    []string
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdlib sets the global builtin registry.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithBindings sets the game-object binding registry.
func WithBindings(r *bindings.Registry) Option {
	return func(rt *Runtime) {
		rt.bindings = r
	}
}

// WithModules sets the module system imports resolve against.
func WithModules(m *stdlib.ModuleSystem) Option {
	return func(rt *Runtime) {
		rt.modules = m
	}
}

// WithPolicy sets the capability policy.
func WithPolicy(p *capabilities.Policy) Option {
	return func(rt *Runtime) {
		rt.policy = p
	}
}

// WithInput sets the input source the input bindings read.
func WithInput(in capabilities.Input) Option {
	return func(rt *Runtime) {
		rt.input = in
	}
}

// WithStrict makes assignment to an undeclared variable an error.
func WithStrict(strict bool) Option {
	return func(rt *Runtime) {
		rt.strict = strict
	}
}

// WithBudget sets the iteration and time limits of each run.
func WithBudget(b interpreter.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithMaxCallDepth bounds recursion.
func WithMaxCallDepth(n int) Option {
	return func(rt *Runtime) {
		rt.maxDepth = n
	}
}

// WithModulePaths enables loading `<Name>.axs` files from dirs for imports
// that name no registered module.
func WithModulePaths(dirs ...string) Option {
	return func(rt *Runtime) {
		rt.modulePaths = dirs
	}
}

// WithRunID sets the run ID for trace events and log fields.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event interpreter.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithConfig applies loaded settings. Options after it override them.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		rt.strict = cfg.Strict
		rt.budget = interpreter.Budget{MaxIterations: cfg.MaxIterations, Timeout: cfg.Timeout}
		rt.maxDepth = cfg.MaxCallDepth
		rt.modulePaths = cfg.ModulePaths
		if p, err := cfg.Policy(); err == nil {
			rt.policy = p
		}
	}
}

// New creates a new Runtime with the given options. By default the standard
// builtins, bindings and modules are registered and every capability is allowed.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stdlib:   stdlib.Defaults(),
		bindings: bindings.Defaults(),
		policy:   capabilities.AllowAll(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.modules == nil {
		rt.modules = stdlib.Standard()
	}
	if len(rt.modulePaths) > 0 {
		rt.modules.SetLoader(&fileLoader{rt: rt, paths: rt.modulePaths})
	}

	rt.builtins = make(map[string]*interpreter.Builtin)
	for name, b := range rt.stdlib.All() {
		rt.builtins[name] = b
	}
	for name, b := range rt.bindings.Builtins() {
		rt.builtins[name] = b
	}
	for name := range rt.builtins {
		rt.names = append(rt.names, name)
	}
	sort.Strings(rt.names)
	return rt
}

// Modules returns the module system imports resolve against.
func (rt *Runtime) Modules() *stdlib.ModuleSystem {
	return rt.modules
}

// Bindings returns the game-object binding registry.
func (rt *Runtime) Bindings() *bindings.Registry {
	return rt.bindings
}

// BuiltinNames lists every global builtin in sorted order.
func (rt *Runtime) BuiltinNames() []string {
	return rt.names
}

// Execute parses and runs source with ctxObj as the script's game object.
// It never panics and always returns a Result.
func (rt *Runtime) Execute(ctx context.Context, source string, ctxObj any) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	program, diags := parser.Parse(source, ScriptName)
	if len(diags) > 0 {
		msg := diagnostics.FormatParseError(diags[0])
		logging.Logger(ctx).WithField("diagnostics", len(diags)).Debug(msg)
		return &Result{
			Error:      &msg,
			ErrorCode:  diagnostics.EParse,
			TypeErrors: []string{},
			Warnings:   []string{},
			Exports:    map[string]interpreter.Value{},
		}
	}
	return rt.ExecuteProgram(ctx, program, ctxObj)
}

// ExecuteProgram runs an already parsed program. Static findings are
// reported alongside the run's own type findings.
func (rt *Runtime) ExecuteProgram(ctx context.Context, program *ast.Program, ctxObj any) (result *Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Logger(ctx)
	if rt.runID != "" {
		logger = logger.WithField("run", rt.runID)
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("stack", string(debug.Stack())).Errorf("runtime panic: %v", r)
			msg := fmt.Sprintf("internal error: %v", r)
			result = &Result{
				Error:      &msg,
				ErrorCode:  diagnostics.EInternal,
				TypeErrors: []string{},
				Warnings:   []string{},
				Exports:    map[string]interpreter.Value{},
			}
		}
	}()

	checker := types.NewChecker()
	for _, d := range validator.Validate(program, validator.WithBuiltins(rt.names...)) {
		checker.Report(d.Line(), "%s", d.Message)
	}

	opts := rt.execOptions(ctxObj)
	opts.Checker = checker
	res, err := interpreter.Execute(ctx, program, opts)

	result = &Result{
		Success:    err == nil,
		TypeErrors: res.TypeErrors,
		Warnings:   res.Warnings,
		Exports:    exportsOf(res.Exports),
		Stats: Stats{
			Iterations: res.Tracker.Iterations,
			Calls:      res.Tracker.Calls,
			Duration:   time.Since(start),
		},
	}
	if result.TypeErrors == nil {
		result.TypeErrors = []string{}
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	if len(res.Output) > 0 {
		out := strings.Join(res.Output, "\n")
		result.Output = &out
	}
	if err != nil {
		msg := err.Error()
		result.Error = &msg
		result.ErrorCode = diagnostics.EInternal
		var rtErr *interpreter.RuntimeError
		if errors.As(err, &rtErr) {
			result.ErrorCode = rtErr.Code
		}
	}

	logger.WithFields(logrus.Fields{
		"success":    result.Success,
		"iterations": result.Stats.Iterations,
		"calls":      result.Stats.Calls,
		"duration":   result.Stats.Duration,
	}).Debug("execution finished")
	return result
}

// Check parses and validates a program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program, validator.WithBuiltins(rt.names...))
}

// Format parses and formats a program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

func (rt *Runtime) execOptions(ctxObj any) interpreter.ExecOptions {
	return interpreter.ExecOptions{
		Builtins:     rt.builtins,
		Globals:      stdlib.Globals(),
		Prototypes:   stdlib.Prototypes(),
		Modules:      rt.modules,
		Context:      ctxObj,
		Input:        rt.input,
		Policy:       rt.policy,
		Strict:       rt.strict,
		Budget:       rt.budget,
		MaxCallDepth: rt.maxDepth,
		Trace:        rt.trace,
		RunID:        rt.runID,
	}
}

func exportsOf(o *interpreter.Object) map[string]interpreter.Value {
	out := make(map[string]interpreter.Value)
	if o == nil {
		return out
	}
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		out[k] = v
	}
	return out
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
