package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axarion/axscript/internal/logging"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/runtime"
)

func newCheckCommand(input *Input) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "check <file.axs|->...",
		Short: "Parse and validate scripts without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := runtime.New(runtime.WithConfig(input.cfg))
			log := logging.Logger(cmd.Context())

			all := []diagnostics.Diagnostic{}
			for _, file := range args {
				source, filename, err := readSource(cmd, input, file)
				if err != nil {
					return err
				}
				diags := rt.Check(source, filename)
				log.WithField("file", filename).Debugf("%d diagnostics", len(diags))
				all = append(all, diags...)
			}

			failed := false
			for _, d := range all {
				if !d.IsWarning() {
					failed = true
				}
			}

			if jsonOutput {
				fmt.Fprintln(cmd.OutOrStdout(), diagnostics.FormatDiagnostics(all, false))
			} else {
				p := newPrinter(cmd.OutOrStdout(), input.noColor)
				for i, d := range all {
					if i > 0 {
						fmt.Fprintln(cmd.OutOrStdout())
					}
					p.diagnostic(d)
				}
				if len(all) == 0 {
					p.okf("No problems found.")
				}
			}

			if failed {
				return silentExit(exitInvalid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print diagnostics as a JSON array")
	return cmd
}
