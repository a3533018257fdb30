// Package capture drives one microphone session at a time and fans its frames
// and failures out to registered listeners.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/petems/voice-processor/internal/audio"
	"github.com/petems/voice-processor/internal/dispatch"
	"github.com/petems/voice-processor/internal/listener"
	"github.com/rs/zerolog"
)

const (
	DefaultFrameLength = 512
	DefaultSampleRate  = 16000
)

// Priority is a scheduling hint for the capture worker
type Priority int

const (
	PriorityNormal Priority = iota
	// PriorityAudio pins the worker to an OS thread and raises that thread's priority
	PriorityAudio
)

// PermissionChecker reports whether microphone access is granted
type PermissionChecker func() (bool, error)

// Config is the capture configuration applied at the next Start
type Config struct {
	FrameLength int
	SampleRate  int
}

// Options configures an Engine. Platform is required; everything else has a usable zero value.
type Options struct {
	Platform audio.Platform
	// Delivery runs listener callbacks. When nil the engine owns a private loop, released by Close.
	Delivery   dispatch.Poster
	Logger     zerolog.Logger
	Source     audio.Source
	Permission PermissionChecker
	Priority   Priority
	Config     Config
}

// Engine controls the capture lifecycle. Construct it once in the composition
// root and share it; it is safe for concurrent use.
type Engine struct {
	platform   audio.Platform
	delivery   dispatch.Poster
	ownedLoop  *dispatch.Loop
	log        zerolog.Logger
	source     audio.Source
	permission PermissionChecker
	priority   Priority

	listenerMu     sync.Mutex
	frameListeners *listener.Registry[FrameListener]
	errorListeners *listener.Registry[ErrorListener]

	configMu sync.Mutex
	config   Config

	// lifecycleMu serializes Start and Stop
	lifecycleMu   sync.Mutex
	closed        bool
	recording     atomic.Bool
	stopRequested atomic.Bool
	worker        *worker
}

// New validates opts.Config, filling zero fields with the defaults, and returns an idle engine.
func New(opts Options) (*Engine, error) {
	if opts.Platform == nil {
		return nil, errors.New("capture: platform is required")
	}

	cfg := opts.Config
	if cfg.FrameLength == 0 {
		cfg.FrameLength = DefaultFrameLength
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		platform:   opts.Platform,
		delivery:   opts.Delivery,
		log:        opts.Logger,
		source:     opts.Source,
		permission: opts.Permission,
		priority:   opts.Priority,
		config:     cfg,
	}
	e.frameListeners = listener.NewRegistry[FrameListener](&e.listenerMu)
	e.errorListeners = listener.NewRegistry[ErrorListener](&e.listenerMu)

	if e.delivery == nil {
		e.ownedLoop = dispatch.NewLoop(opts.Logger)
		e.delivery = e.ownedLoop
	}

	return e, nil
}

// Configure stores the frame length and sample rate for the next Start. A
// running session keeps the values it was started with.
func (e *Engine) Configure(frameLength, sampleRate int) error {
	cfg := Config{FrameLength: frameLength, SampleRate: sampleRate}
	if err := cfg.validate(); err != nil {
		return err
	}

	e.configMu.Lock()
	defer e.configMu.Unlock()
	e.config = cfg
	return nil
}

// Config returns the configuration the next Start will use
func (e *Engine) Config() Config {
	e.configMu.Lock()
	defer e.configMu.Unlock()
	return e.config
}

// Start launches a capture worker and returns without waiting for the device.
// It does nothing if the engine is already recording or has been closed.
// Device failures are reported to error listeners, never returned.
func (e *Engine) Start() {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.closed {
		e.log.Warn().Msg("Start called on closed engine")
		return
	}
	if e.recording.Load() {
		return
	}

	w := newWorker(workerParams{
		config:   e.Config(),
		source:   e.source,
		platform: e.platform,
		priority: e.priority,
		stop:     &e.stopRequested,
		onFrame:  e.dispatchFrame,
		onError:  e.dispatchError,
		log:      e.log,
	})
	e.worker = w
	e.recording.Store(true)

	e.log.Info().
		Str("session", w.id).
		Int("frame_length", w.config.FrameLength).
		Int("sample_rate", w.config.SampleRate).
		Msg("Starting capture")

	go w.run()
}

// Stop asks the worker to finish and blocks until it has released the device.
// It does nothing if the engine is idle. The engine is idle when Stop returns,
// even when it returns a *LifecycleError.
func (e *Engine) Stop() error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if !e.recording.Load() {
		return nil
	}

	w := e.worker
	e.stopRequested.Store(true)
	<-w.done
	e.stopRequested.Store(false)

	e.worker = nil
	e.recording.Store(false)

	if w.err != nil {
		e.log.Error().Err(w.err).Str("session", w.id).Msg("Capture worker failed")
		return w.err
	}

	e.log.Info().Str("session", w.id).Msg("Capture stopped")
	return nil
}

func (e *Engine) IsRecording() bool {
	return e.recording.Load()
}

// MicrophonePermitted reports the platform's microphone permission state.
// It never prompts the user.
func (e *Engine) MicrophonePermitted() (bool, error) {
	if e.permission == nil {
		return true, nil
	}
	return e.permission()
}

// Close stops any running capture and shuts down the engine's own delivery
// loop, if it created one. Later calls to Start do nothing.
func (e *Engine) Close() error {
	e.lifecycleMu.Lock()
	e.closed = true
	e.lifecycleMu.Unlock()

	err := e.Stop()
	if e.ownedLoop != nil {
		e.ownedLoop.Close()
	}
	return err
}

func (e *Engine) AddFrameListener(l FrameListener)         { e.frameListeners.Add(l) }
func (e *Engine) AddFrameListeners(ls ...FrameListener)    { e.frameListeners.AddAll(ls...) }
func (e *Engine) RemoveFrameListener(l FrameListener)      { e.frameListeners.Remove(l) }
func (e *Engine) RemoveFrameListeners(ls ...FrameListener) { e.frameListeners.RemoveAll(ls...) }
func (e *Engine) ClearFrameListeners()                     { e.frameListeners.Clear() }
func (e *Engine) FrameListenerCount() int                  { return e.frameListeners.Len() }

func (e *Engine) AddErrorListener(l ErrorListener)         { e.errorListeners.Add(l) }
func (e *Engine) AddErrorListeners(ls ...ErrorListener)    { e.errorListeners.AddAll(ls...) }
func (e *Engine) RemoveErrorListener(l ErrorListener)      { e.errorListeners.Remove(l) }
func (e *Engine) RemoveErrorListeners(ls ...ErrorListener) { e.errorListeners.RemoveAll(ls...) }
func (e *Engine) ClearErrorListeners()                     { e.errorListeners.Clear() }
func (e *Engine) ErrorListenerCount() int                  { return e.errorListeners.Len() }

func (e *Engine) dispatchFrame(frame []int16) {
	dispatch.Deliver(e.delivery, e.frameListeners, func(l FrameListener) {
		l.OnFrame(frame)
	})
}

func (e *Engine) dispatchError(err *CaptureError) {
	dispatch.Deliver(e.delivery, e.errorListeners, func(l ErrorListener) {
		l.OnError(err)
	})
}

func (c Config) validate() error {
	if c.FrameLength <= 0 {
		return fmt.Errorf("%w: frame length %d must be positive", ErrInvalidConfig, c.FrameLength)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d must be positive", ErrInvalidConfig, c.SampleRate)
	}
	return nil
}
