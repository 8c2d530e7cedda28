package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/axarion/axscript/internal/logging"
	"github.com/axarion/axscript/pkg/config"
)

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitInvalid = 2
	exitDenied  = 3
	exitRuntime = 4
)

// exitError carries a process exit code. A nil err means the failure was
// already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func silentExit(code int) error { return &exitError{code: code} }

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	input := &Input{}
	rootCmd := createRootCommand(ctx, input, version)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	code := exitUsage
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
		if ee.err == nil {
			return code
		}
	}
	newPrinter(stderr, input.noColor).errorf("%s", err)
	return code
}

func createRootCommand(ctx context.Context, input *Input, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "axscript",
		Short:             "Run, check and format AXScript game scripts",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: input.setup,
	}
	rootCmd.PersistentFlags().BoolVarP(&input.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&input.workdir, "directory", "C", ".", "working directory")
	rootCmd.PersistentFlags().BoolVar(&input.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newRunCommand(input),
		newCheckCommand(input),
		newFmtCommand(input),
		newTraceCommand(input),
		newConfigCommand(input),
	)
	rootCmd.SetHelpCommand(newHelpCommand(input))
	rootCmd.SetContext(ctx)
	return rootCmd
}

// Input contains the flags shared across commands plus the loaded config.
type Input struct {
	workdir string
	verbose bool
	noColor bool

	cfg *config.Config
}

// setup loads the config and installs the logger on the command context.
func (i *Input) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(i.Workdir())
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	i.cfg = cfg

	level := cfg.LogLevel
	if i.verbose {
		level = "debug"
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	logger.WithField("sources", cfg.Sources).Debug("config loaded")
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
	return nil
}

func (i *Input) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	basedir, err := filepath.Abs(i.workdir)
	if err != nil {
		return path
	}
	return filepath.Join(basedir, path)
}

// Workdir returns the absolute working directory.
func (i *Input) Workdir() string {
	return i.resolve(".")
}

// readSource reads a script file, or stdin for "-".
func readSource(cmd *cobra.Command, input *Input, file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", &exitError{code: exitUsage, err: errors.Wrap(err, "read stdin")}
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(input.resolve(file))
	if err != nil {
		return "", "", &exitError{code: exitUsage, err: errors.Wrapf(err, "cannot read file %s", file)}
	}
	return string(data), file, nil
}
