package capture

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Configure for non-positive frame lengths or sample rates
var ErrInvalidConfig = errors.New("invalid capture configuration")

// ErrorKind classifies device-level capture failures
type ErrorKind int

const (
	// ConfigurationError means the device rejected the frame length / sample rate combination
	ConfigurationError ErrorKind = iota + 1
	// InitializationError means the session failed to open or reach a ready state
	InitializationError
	// RuntimeCaptureError means the session entered an invalid state during capture
	RuntimeCaptureError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigurationError:
		return "configuration"
	case InitializationError:
		return "initialization"
	case RuntimeCaptureError:
		return "runtime"
	default:
		return "unknown"
	}
}

// CaptureError is delivered to ErrorListeners. It is never returned from an Engine method.
type CaptureError struct {
	Kind      ErrorKind
	Message   string
	Cause     error
	SessionID string
}

func (e *CaptureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}

// LifecycleError is returned by Stop when the capture worker itself failed,
// as opposed to the device it was driving.
type LifecycleError struct {
	SessionID string
	Panic     any
	Stack     []byte
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("capture worker %s terminated abnormally: %v", e.SessionID, e.Panic)
}
