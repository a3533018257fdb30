package audio

import "errors"

// Format describes the sample encoding of a capture session
type Format int

const (
	// PCM16Mono is 16-bit signed little-endian PCM, one channel
	PCM16Mono Format = iota
)

// BytesPerSample returns the size of one sample in this format
func (f Format) BytesPerSample() int {
	return 2
}

func (f Format) String() string {
	switch f {
	case PCM16Mono:
		return "pcm16-mono"
	default:
		return "unknown"
	}
}

// Source selects the input device. An empty DeviceID means the system default microphone.
type Source struct {
	DeviceID string
}

var (
	// ErrUnsupportedFormat is returned by Open when the device rejects the requested parameters
	ErrUnsupportedFormat = errors.New("unsupported capture format")
	// ErrNotReady is returned by Open when the session could not reach a ready state
	ErrNotReady = errors.New("capture session not ready")
	// ErrInvalidState is returned by Session methods once the session can no longer capture
	ErrInvalidState = errors.New("capture session in invalid state")
)

// OpenParams configures one capture session
type OpenParams struct {
	Source     Source
	SampleRate int
	Format     Format
	// BufferCapacity is the device-side buffer size in bytes
	BufferCapacity int
	// FrameLength is the number of samples returned by each Read
	FrameLength int
}

// Platform opens native microphone input sessions
type Platform interface {
	MinBufferSize(sampleRate int, format Format) (int, error)
	Open(params OpenParams) (Session, error)
}

// Session is one open native input stream. It is owned by a single goroutine.
type Session interface {
	Start() error
	// Read blocks until len(buf) samples are available and returns how many were written.
	// A count below len(buf) is a short read.
	Read(buf []int16) (int, error)
	Stop() error
	Release() error
}

// AudioDevice represents an audio input device
type AudioDevice struct {
	ID      string
	Name    string
	Default bool
}
