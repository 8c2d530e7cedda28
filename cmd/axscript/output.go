package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/axarion/axscript/pkg/diagnostics"
)

// printer writes status lines, colored when the writer is a color terminal.
type printer struct {
	w     io.Writer
	red   *color.Color
	amber *color.Color
	green *color.Color
	faint *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:     w,
		red:   color.New(color.FgRed, color.Bold),
		amber: color.New(color.FgYellow),
		green: color.New(color.FgGreen),
		faint: color.New(color.Faint),
	}
	enable := !noColor && checkIfColorable(w)
	for _, c := range []*color.Color{p.red, p.amber, p.green, p.faint} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) errorf(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.red.Sprint("error: ")+fmt.Sprintf(format, args...))
}

func (p *printer) warnf(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.amber.Sprint("warning: ")+fmt.Sprintf(format, args...))
}

func (p *printer) okf(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.green.Sprintf(format, args...))
}

func (p *printer) notef(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.faint.Sprintf(format, args...))
}

// diagnostic prints d in the pretty format with its severity colored.
func (p *printer) diagnostic(d diagnostics.Diagnostic) {
	text := diagnostics.FormatDiagnostic(d, true)
	c, severity := p.red, "error"
	if d.IsWarning() {
		c, severity = p.amber, "warning"
	}
	fmt.Fprintln(p.w, c.Sprint(severity)+text[len(severity):])
}

func checkIfColorable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return false
	}

	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f, ok := os.LookupEnv("CLICOLOR_FORCE"); ok && f != "0" {
		return true
	}
	switch os.Getenv("TERM") {
	case "dumb", "unknown":
		return false
	}
	return true
}
