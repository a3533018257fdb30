//go:build !linux

package sched

// Elevate is not supported on this platform
func Elevate() error {
	return ErrUnsupported
}
