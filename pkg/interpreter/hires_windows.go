//go:build windows

package interpreter

import (
	"syscall"
	"unsafe"
)

// time.Now on Windows ticks at ~0.5ms; the performance counter keeps short
// timeouts honest.
var (
	kernel32 = syscall.NewLazyDLL("kernel32.dll")
	qpc      = kernel32.NewProc("QueryPerformanceCounter")
	qpf      = kernel32.NewProc("QueryPerformanceFrequency")
	qpcFreq  int64
)

func init() {
	qpf.Call(uintptr(unsafe.Pointer(&qpcFreq)))
}

func hiresNow() int64 {
	var count int64
	qpc.Call(uintptr(unsafe.Pointer(&count)))
	return count
}

func hiresSinceMs(start int64) int64 {
	return (hiresNow() - start) * 1000 / qpcFreq
}
