// Package sched adjusts OS scheduling for latency-sensitive goroutines.
//
// Callers must pin the goroutine with runtime.LockOSThread before calling
// Elevate, and keep it pinned for as long as the elevated priority is wanted.
package sched

import "errors"

// ErrUnsupported is returned where per-thread priority cannot be changed
var ErrUnsupported = errors.New("thread priority elevation not supported on this platform")

// audioNice matches the nice value Android assigns to urgent audio threads
const audioNice = -19
