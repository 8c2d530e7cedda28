package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/axarion/axscript/internal/logging"
	"github.com/axarion/axscript/pkg/capabilities"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/interpreter"
	"github.com/axarion/axscript/pkg/runtime"
)

type runFlags struct {
	entityPath    string
	inputPath     string
	strict        bool
	maxIterations int64
	timeout       time.Duration
	jsonOutput    bool
	tracePath     string
	modulePaths   []string
	dumpEntity    bool
}

func newRunCommand(input *Input) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <file.axs|->",
		Short: "Run a script",
		Args:  cobra.ExactArgs(1),
		RunE:  newRunAction(input, flags),
	}
	cmd.Flags().StringVarP(&flags.entityPath, "entity", "e", "", "YAML file describing the game object the script is attached to")
	cmd.Flags().StringVarP(&flags.inputPath, "input", "i", "", "YAML file with a snapshot of input state")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "make assignment to undeclared variables an error")
	cmd.Flags().Int64Var(&flags.maxIterations, "max-iterations", 0, "loop iteration budget, 0 for no limit")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "wall clock budget, 0 for no limit")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the full result as JSON")
	cmd.Flags().StringVar(&flags.tracePath, "trace", "", "write trace events as JSON lines to a file ('-' for stderr)")
	cmd.Flags().StringSliceVarP(&flags.modulePaths, "module-path", "I", nil, "extra directories searched for imported modules")
	cmd.Flags().BoolVar(&flags.dumpEntity, "dump-entity", false, "print the game object's final state as YAML")
	return cmd
}

func newRunAction(input *Input, flags *runFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.Logger(ctx)

		source, filename, err := readSource(cmd, input, args[0])
		if err != nil {
			return err
		}

		opts, closeTrace, err := flags.runtimeOptions(cmd, input, filename)
		if err != nil {
			return err
		}
		defer closeTrace()

		var ctxObj any
		var entity *capabilities.GameObject
		if flags.entityPath != "" {
			entity, err = capabilities.LoadEntity(input.resolve(flags.entityPath))
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			ctxObj = entity
			log.Debugf("attached to %s", entity.Name())
		}

		res := runtime.New(opts...).Execute(ctx, source, ctxObj)
		log.WithField("iterations", res.Stats.Iterations).
			WithField("calls", res.Stats.Calls).
			Debugf("%s finished in %s", filename, res.Stats.Duration)

		stdout := cmd.OutOrStdout()
		if flags.jsonOutput {
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return &exitError{code: exitRuntime, err: errors.Wrap(err, "encode result")}
			}
		} else {
			reportResult(stdout, newPrinter(cmd.ErrOrStderr(), input.noColor), res)
		}

		if flags.dumpEntity && entity != nil {
			out, err := yaml.Marshal(entity.Spec())
			if err != nil {
				return &exitError{code: exitRuntime, err: errors.Wrap(err, "encode entity")}
			}
			fmt.Fprint(stdout, string(out))
		}

		if !res.Success {
			return silentExit(exitCodeFor(res.ErrorCode))
		}
		return nil
	}
}

func reportResult(stdout io.Writer, p *printer, res *runtime.Result) {
	if res.Output != nil {
		fmt.Fprintln(stdout, *res.Output)
	}
	for _, w := range res.Warnings {
		p.warnf("%s", w)
	}
	for _, te := range res.TypeErrors {
		p.warnf("%s", te)
	}
	if res.Error != nil {
		p.errorf("%s", *res.Error)
	}
}

func (f *runFlags) runtimeOptions(cmd *cobra.Command, input *Input, filename string) ([]runtime.Option, func(), error) {
	cfg := input.cfg
	opts := []runtime.Option{runtime.WithConfig(cfg)}

	var paths []string
	if filename != "<stdin>" {
		paths = append(paths, filepath.Dir(input.resolve(filename)))
	}
	for _, p := range f.modulePaths {
		paths = append(paths, input.resolve(p))
	}
	for _, p := range cfg.ModulePaths {
		paths = append(paths, input.resolve(p))
	}
	opts = append(opts, runtime.WithModulePaths(dedupe(paths)...))

	fs := cmd.Flags()
	if changed(fs, "strict") {
		opts = append(opts, runtime.WithStrict(f.strict))
	}
	if changed(fs, "max-iterations", "timeout") {
		budget := interpreter.Budget{MaxIterations: cfg.MaxIterations, Timeout: cfg.Timeout}
		if changed(fs, "max-iterations") {
			budget.MaxIterations = f.maxIterations
		}
		if changed(fs, "timeout") {
			budget.Timeout = f.timeout
		}
		opts = append(opts, runtime.WithBudget(budget))
	}

	if f.inputPath != "" {
		state, err := capabilities.LoadInput(input.resolve(f.inputPath))
		if err != nil {
			return nil, nil, &exitError{code: exitUsage, err: err}
		}
		opts = append(opts, runtime.WithInput(state))
	}

	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	opts = append(opts, runtime.WithRunID(runID))

	closeTrace := func() {}
	if f.tracePath != "" {
		var w io.Writer = cmd.ErrOrStderr()
		if f.tracePath != "-" {
			file, err := os.Create(input.resolve(f.tracePath))
			if err != nil {
				return nil, nil, &exitError{code: exitUsage, err: errors.Wrap(err, "create trace file")}
			}
			w = file
			closeTrace = func() { file.Close() }
		}
		enc := json.NewEncoder(w)
		log := logging.Logger(cmd.Context())
		opts = append(opts, runtime.WithTrace(func(ev interpreter.TraceEvent) {
			if err := enc.Encode(ev); err != nil {
				log.WithError(err).Debug("trace write failed")
			}
		}))
	}
	return opts, closeTrace, nil
}

// changed reports whether any of the named flags was set on the command line.
func changed(fs *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func exitCodeFor(code string) int {
	switch code {
	case diagnostics.EParse, diagnostics.ELex:
		return exitInvalid
	case diagnostics.ECapDenied:
		return exitDenied
	default:
		return exitRuntime
	}
}
