package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/petems/voice-processor/internal/capture"
	"github.com/petems/voice-processor/internal/dispatch"
	"github.com/petems/voice-processor/internal/meter"
	"github.com/rs/zerolog"
)

// ErrPermissionDenied is returned by Record when the OS has not granted microphone access
var ErrPermissionDenied = errors.New("microphone permission not granted")

// logEvery is how many frames pass between volume log lines
const logEvery = 32

const defaultFlushTimeout = 5 * time.Second

// StatusUpdater is an interface for reporting recording state (e.g., a console indicator)
type StatusUpdater interface {
	SetIdle()
	SetRecording()
	SetError(err error)
}

type Config struct {
	Engine        *capture.Engine
	Delivery      *dispatch.Loop
	Logger        zerolog.Logger
	StatusUpdater StatusUpdater // Optional - can be nil
	// FlushTimeout bounds the wait for pending deliveries after Stop. Zero means 5s.
	FlushTimeout time.Duration
}

// Summary describes one recording
type Summary struct {
	Frames     int
	Errors     []*capture.CaptureError
	PeakVolume float64
	Elapsed    time.Duration
}

type App struct {
	engine   *capture.Engine
	delivery *dispatch.Loop
	log      zerolog.Logger
	status   StatusUpdater
	flushTO  time.Duration

	// mu serializes recordings
	mu sync.Mutex
}

func New(cfg Config) *App {
	flushTO := cfg.FlushTimeout
	if flushTO <= 0 {
		flushTO = defaultFlushTimeout
	}
	return &App{
		engine:   cfg.Engine,
		delivery: cfg.Delivery,
		log:      cfg.Logger,
		status:   cfg.StatusUpdater,
		flushTO:  flushTO,
	}
}

// Record captures until d elapses or ctx is done, whichever comes first. A
// non-positive d records until ctx is done. Device failures are collected in
// the summary; only permission and lifecycle failures are returned as errors.
func (a *App) Record(ctx context.Context, d time.Duration) (Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	granted, err := a.engine.MicrophonePermitted()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to check microphone permission: %w", err)
	}
	if !granted {
		a.setError(ErrPermissionDenied)
		return Summary{}, ErrPermissionDenied
	}

	// Listeners may still be running on the delivery goroutine if the flush
	// below times out, so every access to summary holds summaryMu.
	var (
		summaryMu sync.Mutex
		summary   Summary
	)
	vu := meter.New()

	frames := capture.FrameFunc(func(frame []int16) {
		summaryMu.Lock()
		defer summaryMu.Unlock()
		summary.Frames++
		volume := vu.Add(frame)
		if volume > summary.PeakVolume {
			summary.PeakVolume = volume
		}
		if summary.Frames%logEvery == 0 {
			a.log.Debug().
				Int("frames", summary.Frames).
				Float64("volume", volume).
				Msg("Frame received")
		}
	})
	failures := capture.ErrorFunc(func(err *capture.CaptureError) {
		summaryMu.Lock()
		summary.Errors = append(summary.Errors, err)
		summaryMu.Unlock()
		a.log.Error().Err(err).Str("kind", err.Kind.String()).Msg("Capture error")
		a.setError(err)
	})

	a.engine.AddFrameListener(frames)
	a.engine.AddErrorListener(failures)
	defer a.engine.RemoveFrameListener(frames)
	defer a.engine.RemoveErrorListener(failures)

	cfg := a.engine.Config()
	a.log.Info().
		Int("frame_length", cfg.FrameLength).
		Int("sample_rate", cfg.SampleRate).
		Dur("duration", d).
		Msg("Recording")

	if a.status != nil {
		a.status.SetRecording()
	}

	started := time.Now()
	a.engine.Start()

	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
	case <-timeout:
	}

	stopErr := a.engine.Stop()

	flushCtx, cancel := context.WithTimeout(context.Background(), a.flushTO)
	defer cancel()
	if err := a.delivery.Flush(flushCtx); err != nil {
		a.log.Warn().Err(err).Msg("Pending deliveries not drained")
	}

	summaryMu.Lock()
	result := summary
	result.Errors = append([]*capture.CaptureError(nil), summary.Errors...)
	summaryMu.Unlock()
	result.Elapsed = time.Since(started)

	if stopErr != nil {
		a.setError(stopErr)
		return result, stopErr
	}

	if len(result.Errors) == 0 && a.status != nil {
		a.status.SetIdle()
	}

	a.log.Info().
		Int("frames", result.Frames).
		Int("errors", len(result.Errors)).
		Float64("peak_volume", result.PeakVolume).
		Dur("elapsed", result.Elapsed).
		Msg("Recording finished")

	return result, nil
}

func (a *App) IsRecording() bool {
	return a.engine.IsRecording()
}

func (a *App) setError(err error) {
	if a.status != nil {
		a.status.SetError(err)
	}
}
