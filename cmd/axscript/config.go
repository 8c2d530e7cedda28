package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axarion/axscript/pkg/config"
)

func newConfigCommand(input *Input) *cobra.Command {
	var pathOnly bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if pathOnly {
				fmt.Fprintln(out, config.UserConfigPath())
				return nil
			}
			text, err := input.cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(out, text)
			if len(input.cfg.Sources) == 0 {
				fmt.Fprintln(out, "# sources: defaults")
				return nil
			}
			fmt.Fprintln(out, "# sources:")
			for _, s := range input.cfg.Sources {
				fmt.Fprintf(out, "#   %s\n", s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pathOnly, "path", false, "print the user config file path")
	return cmd
}
