// Command axscript runs, checks and formats AXScript programs.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/axarion/axscript/pkg/help"
)

var version = help.Version

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// trap Ctrl+C and call cancel on the context
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		select {
		case <-c:
			cancel()
		case <-ctx.Done():
		}
	}()

	code := Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	signal.Stop(c)
	cancel()
	os.Exit(code)
}
