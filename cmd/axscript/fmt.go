package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/axarion/axscript/pkg/formatter"
	"github.com/axarion/axscript/pkg/runtime"
)

func newFmtCommand(input *Input) *cobra.Command {
	var write, check bool
	cmd := &cobra.Command{
		Use:   "fmt <file.axs|->...",
		Short: "Print scripts in canonical form",
		Long: `Print scripts in canonical form.

Comments are dropped by the formatter, so files containing comments are
reported and left alone when --write is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && check {
				return &exitError{code: exitUsage, err: errors.New("--write and --check are mutually exclusive")}
			}
			rt := runtime.New(runtime.WithConfig(input.cfg))
			p := newPrinter(cmd.ErrOrStderr(), input.noColor)

			invalid, unformatted := false, false
			for _, file := range args {
				source, filename, err := readSource(cmd, input, file)
				if err != nil {
					return err
				}
				formatted, err := rt.Format(source, filename)
				if err != nil {
					var de *runtime.DiagnosticError
					if !errors.As(err, &de) {
						return &exitError{code: exitInvalid, err: err}
					}
					for _, d := range de.Diagnostics {
						p.diagnostic(d)
					}
					invalid = true
					continue
				}
				hasComments := formatter.HasComments(source)

				switch {
				case check:
					if formatted != source {
						fmt.Fprintln(cmd.OutOrStdout(), filename)
						unformatted = true
					}
				case write && filename != "<stdin>":
					if hasComments {
						p.warnf("%s: contains comments, not rewritten", filename)
						continue
					}
					if formatted == source {
						continue
					}
					if err := os.WriteFile(input.resolve(file), []byte(formatted), 0o644); err != nil {
						return &exitError{code: exitUsage, err: errors.Wrapf(err, "write %s", filename)}
					}
					p.notef("formatted %s", filename)
				default:
					if hasComments {
						p.warnf("%s: comments are not preserved", filename)
					}
					fmt.Fprint(cmd.OutOrStdout(), formatted)
				}
			}

			if invalid {
				return silentExit(exitInvalid)
			}
			if unformatted {
				return silentExit(exitUsage)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&check, "check", false, "list files whose formatting differs and fail if any")
	return cmd
}
