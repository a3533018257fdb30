//go:build linux

package sched

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Elevate raises the calling OS thread to audio priority
func Elevate() error {
	tid := unix.Gettid()
	if err := unix.Setpriority(unix.PRIO_PROCESS, tid, audioNice); err != nil {
		return fmt.Errorf("failed to raise priority of thread %d: %w", tid, err)
	}
	return nil
}
