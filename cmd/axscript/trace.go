package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/axarion/axscript/internal/logging"
	"github.com/axarion/axscript/pkg/interpreter"
)

// TraceSummary aggregates the events of one trace file.
type TraceSummary struct {
	RunID          string         `json:"runId"`
	TotalEvents    int            `json:"totalEvents"`
	Statements     int            `json:"statements"`
	FnCalls        int            `json:"fnCalls"`
	FnCallsByName  map[string]int `json:"fnCallsByName"`
	BuiltinCalls   map[string]int `json:"builtinCalls"`
	Imports        []string       `json:"imports"`
	Throws         int            `json:"throws"`
	Warnings       int            `json:"warnings"`
	BudgetExceeded int            `json:"budgetExceeded"`
	OK             *bool          `json:"ok,omitempty"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	DurationMs     float64        `json:"durationMs"`
	Skipped        int            `json:"skipped,omitempty"`
}

func newTraceCommand(input *Input) *cobra.Command {
	var textOutput bool
	cmd := &cobra.Command{
		Use:   "trace <trace.jsonl|->",
		Short: "Summarize a trace written by run --trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(input.resolve(args[0]))
				if err != nil {
					return &exitError{code: exitUsage, err: errors.Wrapf(err, "cannot read file %s", args[0])}
				}
				defer f.Close()
				r = f
			}

			summary, err := computeTraceSummary(r)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			if summary.Skipped > 0 {
				logging.Logger(cmd.Context()).Warnf("skipped %d malformed lines", summary.Skipped)
			}

			if textOutput {
				printTraceSummaryText(cmd.OutOrStdout(), summary)
				return nil
			}
			b, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return errors.Wrap(err, "encode summary")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&textOutput, "text", false, "print a human readable summary instead of JSON")
	return cmd
}

func computeTraceSummary(r io.Reader) (*TraceSummary, error) {
	summary := &TraceSummary{
		FnCallsByName: make(map[string]int),
		BuiltinCalls:  make(map[string]int),
		Imports:       []string{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event interpreter.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil || event.Event == "" {
			summary.Skipped++
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case interpreter.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case interpreter.TraceRunEnd:
			summary.EndTime = event.Timestamp
			ok := event.Data["ok"] == "true"
			summary.OK = &ok
		case interpreter.TraceStmtStart:
			summary.Statements++
		case interpreter.TraceFnCallStart:
			summary.FnCalls++
			if name := event.Data["fn"]; name != "" {
				summary.FnCallsByName[name]++
			}
		case interpreter.TraceBuiltinCall:
			summary.BuiltinCalls[event.Data["name"]]++
		case interpreter.TraceImport:
			summary.Imports = append(summary.Imports, event.Data["module"])
		case interpreter.TraceThrow:
			summary.Throws++
		case interpreter.TraceWarning:
			summary.Warnings++
		case interpreter.TraceBudgetExceeded:
			summary.BudgetExceeded++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read trace")
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}
	return summary, nil
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Function calls: %d\n", s.FnCalls)
	for _, name := range sortedKeys(s.FnCallsByName) {
		fmt.Fprintf(w, "  %s: %d\n", name, s.FnCallsByName[name])
	}
	if len(s.BuiltinCalls) > 0 {
		fmt.Fprintln(w, "Builtins:")
		for _, name := range sortedKeys(s.BuiltinCalls) {
			fmt.Fprintf(w, "  %s: %d\n", name, s.BuiltinCalls[name])
		}
	}
	if len(s.Imports) > 0 {
		fmt.Fprintf(w, "Imports: %s\n", strings.Join(s.Imports, ", "))
	}
	fmt.Fprintf(w, "Throws: %d\n", s.Throws)
	fmt.Fprintf(w, "Warnings: %d\n", s.Warnings)
	if s.BudgetExceeded > 0 {
		fmt.Fprintf(w, "Budget exceeded: %d\n", s.BudgetExceeded)
	}
	if s.OK != nil {
		fmt.Fprintf(w, "OK: %t\n", *s.OK)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
