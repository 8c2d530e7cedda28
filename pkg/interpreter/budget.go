package interpreter

import (
	"fmt"
	"time"

	"github.com/axarion/axscript/pkg/diagnostics"
)

// Budget holds the resource limits for one execution. Zero means unlimited.
type Budget struct {
	MaxIterations int64
	Timeout       time.Duration
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Iterations int64
	Calls      int64
	StartNanos int64
}

const defaultMaxCallDepth = 256

// tick counts one loop iteration and checks every limit that may end the run.
func (in *interp) tick() error {
	in.tracker.Iterations++
	if max := in.opts.Budget.MaxIterations; max > 0 && in.tracker.Iterations > max {
		in.emit(TraceBudgetExceeded, nil)
		return &RuntimeError{
			Code:    diagnostics.EBudget,
			Message: fmt.Sprintf("iteration budget exceeded (max %d)", max),
		}
	}
	return in.checkDeadline()
}

func (in *interp) checkDeadline() error {
	if t := in.opts.Budget.Timeout; t > 0 {
		if hiresSinceMs(in.tracker.StartNanos) >= t.Milliseconds() {
			in.emit(TraceBudgetExceeded, nil)
			return &RuntimeError{
				Code:    diagnostics.EBudget,
				Message: fmt.Sprintf("time budget exceeded (%dms)", t.Milliseconds()),
			}
		}
	}
	if err := in.ctx.Err(); err != nil {
		return &RuntimeError{Code: diagnostics.EBudget, Message: "execution cancelled: " + err.Error()}
	}
	return nil
}
