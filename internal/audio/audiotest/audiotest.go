// Package audiotest provides an in-memory audio.Platform for tests.
//
// Sessions produced by Platform pace their reads like a real microphone: each
// Read of n samples blocks for n/sampleRate seconds. The first sample of the
// k-th complete read (counting from zero) is int16(k), so consumers can check
// delivery order; the rest is a square wave at Amplitude.
package audiotest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petems/voice-processor/internal/audio"
)

const (
	// DefaultMinSampleRate matches the lowest rate most mobile and desktop inputs accept
	DefaultMinSampleRate = 4000
	// DefaultMaxSampleRate is the highest rate the fake accepts
	DefaultMaxSampleRate = 48000
	// Amplitude of the generated square wave, about -12 dBFS
	Amplitude = 8192
)

// Platform is a configurable fake. The zero value accepts 4000-48000 Hz.
type Platform struct {
	MinSampleRate int
	MaxSampleRate int
	// MinBuffer is returned from MinBufferSize
	MinBuffer int

	OpenErr  error
	StartErr error
	// FailAfterReads makes the read after that many reads fail with audio.ErrInvalidState
	FailAfterReads int
	// ShortEvery makes every n-th read short
	ShortEvery int
	// PanicOnRead makes the first Read panic
	PanicOnRead bool
	// ReadDelay overrides the real-time pacing of Read when non-zero
	ReadDelay time.Duration

	mu         sync.Mutex
	lastParams audio.OpenParams

	opens    atomic.Int32
	starts   atomic.Int32
	stops    atomic.Int32
	releases atomic.Int32
	reads    atomic.Int32
}

func (p *Platform) MinBufferSize(sampleRate int, format audio.Format) (int, error) {
	return p.MinBuffer, nil
}

func (p *Platform) Open(params audio.OpenParams) (audio.Session, error) {
	p.opens.Add(1)

	p.mu.Lock()
	p.lastParams = params
	p.mu.Unlock()

	if p.OpenErr != nil {
		return nil, p.OpenErr
	}

	minRate, maxRate := p.MinSampleRate, p.MaxSampleRate
	if minRate == 0 {
		minRate = DefaultMinSampleRate
	}
	if maxRate == 0 {
		maxRate = DefaultMaxSampleRate
	}
	if params.SampleRate < minRate || params.SampleRate > maxRate {
		return nil, fmt.Errorf("%w: %d Hz outside %d-%d Hz", audio.ErrUnsupportedFormat, params.SampleRate, minRate, maxRate)
	}

	delay := p.ReadDelay
	if delay == 0 {
		delay = time.Duration(params.FrameLength) * time.Second / time.Duration(params.SampleRate)
	}

	return &session{platform: p, delay: delay}, nil
}

// LastOpenParams returns the parameters of the most recent Open call
func (p *Platform) LastOpenParams() audio.OpenParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastParams
}

func (p *Platform) Opens() int    { return int(p.opens.Load()) }
func (p *Platform) Starts() int   { return int(p.starts.Load()) }
func (p *Platform) Stops() int    { return int(p.stops.Load()) }
func (p *Platform) Releases() int { return int(p.releases.Load()) }
func (p *Platform) Reads() int    { return int(p.reads.Load()) }

type session struct {
	platform *Platform
	delay    time.Duration

	started  bool
	released bool
	reads    int
	frames   int
}

func (s *session) Start() error {
	if s.platform.StartErr != nil {
		return s.platform.StartErr
	}
	s.platform.starts.Add(1)
	s.started = true
	return nil
}

func (s *session) Read(buf []int16) (int, error) {
	if !s.started || s.released {
		return 0, fmt.Errorf("%w: read before start", audio.ErrInvalidState)
	}
	if s.platform.PanicOnRead {
		panic("audiotest: read panic")
	}

	time.Sleep(s.delay)
	s.reads++
	s.platform.reads.Add(1)

	if s.platform.FailAfterReads > 0 && s.reads > s.platform.FailAfterReads {
		return 0, fmt.Errorf("%w: device disconnected", audio.ErrInvalidState)
	}
	if s.platform.ShortEvery > 0 && s.reads%s.platform.ShortEvery == 0 {
		return len(buf) / 2, nil
	}

	for i := range buf {
		if i%2 == 0 {
			buf[i] = Amplitude
		} else {
			buf[i] = -Amplitude
		}
	}
	buf[0] = int16(s.frames)
	s.frames++
	return len(buf), nil
}

func (s *session) Stop() error {
	s.platform.stops.Add(1)
	if !s.started {
		return fmt.Errorf("%w: stop before start", audio.ErrInvalidState)
	}
	s.started = false
	return nil
}

func (s *session) Release() error {
	if s.released {
		return fmt.Errorf("%w: double release", audio.ErrInvalidState)
	}
	s.released = true
	s.platform.releases.Add(1)
	return nil
}
