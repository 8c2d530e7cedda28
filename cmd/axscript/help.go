package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/axarion/axscript/pkg/help"
)

func newHelpCommand(input *Input) *cobra.Command {
	var index bool
	cmd := &cobra.Command{
		Use:   "help [topic | command]",
		Short: "Show the language reference or help for a command",
		Long: `Show the language quick reference, a reference topic, or help for a command.

Topics: ` + strings.Join(help.TopicList, ", "),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if index {
					return &exitError{code: exitUsage, err: errors.New("--index needs a topic: stdlib or bindings")}
				}
				fmt.Fprint(out, help.QUICKREF)
				return nil
			}

			name, content, err := help.MatchTopic(args[0])
			if err != nil {
				if sub, _, ferr := cmd.Root().Find(args); ferr == nil && sub != cmd.Root() && !index {
					return sub.Help()
				}
				return &exitError{code: exitUsage, err: err}
			}
			if !index {
				fmt.Fprint(out, content)
				return nil
			}
			switch name {
			case "stdlib":
				fmt.Fprint(out, help.StdlibIndex())
			case "bindings":
				fmt.Fprint(out, help.BindingIndex())
			default:
				return &exitError{code: exitUsage, err: errors.Errorf("--index is not available for topic %q", name)}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&index, "index", false, "print the function table of the stdlib or bindings topic")
	return cmd
}
