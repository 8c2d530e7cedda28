package stdlib

import (
	"strings"

	"github.com/axarion/axscript/pkg/interpreter"
)

// ConsoleModule returns the exports of the Console module. Everything it
// prints goes to the buffered output, like print.
func ConsoleModule() *interpreter.Object {
	return module([]member{
		{"log", consolePrinter("")},
		{"warn", consolePrinter("WARNING: ")},
		{"error", consolePrinter("ERROR: ")},
		{"info", consolePrinter("INFO: ")},
		{"debug", consolePrinter("DEBUG: ")},
		{"time", consoleTimer("started")},
		{"timeEnd", consoleTimer("ended")},
	})
}

// joinArgs renders args the way print does: space-separated display strings.
func joinArgs(args []value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = interpreter.ToDisplayString(a)
	}
	return strings.Join(parts, " ")
}

func consolePrinter(prefix string) interpreter.BuiltinFunc {
	return func(c *call, args []value) (value, error) {
		c.Print(prefix + joinArgs(args))
		return undefined, nil
	}
}

// time(label?) / timeEnd(label?) mark a labelled section in the output.
func consoleTimer(verb string) interpreter.BuiltinFunc {
	return func(c *call, args []value) (value, error) {
		label := "default"
		if len(args) > 0 {
			label = interpreter.ToDisplayString(args[0])
		}
		c.Print("Timer '" + label + "' " + verb)
		return undefined, nil
	}
}
