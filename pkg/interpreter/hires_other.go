//go:build !windows

package interpreter

import "time"

var hiresEpoch = time.Now()

// hiresNow returns nanoseconds on the monotonic clock since package init.
func hiresNow() int64 {
	return int64(time.Since(hiresEpoch))
}

// hiresSinceMs returns the milliseconds elapsed since start.
func hiresSinceMs(start int64) int64 {
	return (hiresNow() - start) / int64(time.Millisecond)
}
