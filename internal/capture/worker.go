package capture

import (
	"errors"
	"runtime"
	"runtime/debug"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/petems/voice-processor/internal/audio"
	"github.com/petems/voice-processor/internal/sched"
	"github.com/rs/zerolog"
)

type workerParams struct {
	config   Config
	source   audio.Source
	platform audio.Platform
	priority Priority
	stop     *atomic.Bool
	onFrame  func(frame []int16)
	onError  func(err *CaptureError)
	log      zerolog.Logger
}

// worker owns exactly one audio session for the duration of run
type worker struct {
	workerParams
	id string

	done chan struct{}
	// err is written before done is closed
	err *LifecycleError

	failed     bool
	frames     int
	shortReads int
}

func newWorker(p workerParams) *worker {
	id := uuid.NewString()
	p.log = p.log.With().Str("session", id).Logger()
	return &worker{
		workerParams: p,
		id:           id,
		done:         make(chan struct{}),
	}
}

func (w *worker) run() {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil {
			w.err = &LifecycleError{SessionID: w.id, Panic: r, Stack: debug.Stack()}
		}
	}()

	if w.priority == PriorityAudio {
		// Never unlocked: the thread is discarded when run returns, taking its priority with it.
		runtime.LockOSThread()
		if err := sched.Elevate(); err != nil {
			w.log.Warn().Err(err).Msg("Running capture at normal priority")
		}
	}

	w.capture()

	w.log.Debug().
		Int("frames", w.frames).
		Int("short_reads", w.shortReads).
		Msg("Capture worker exited")
}

func (w *worker) capture() {
	format := audio.PCM16Mono
	minimum, err := w.platform.MinBufferSize(w.config.SampleRate, format)
	if err != nil {
		w.log.Debug().Err(err).Msg("Minimum buffer size unavailable")
		minimum = 0
	}

	session, err := w.platform.Open(audio.OpenParams{
		Source:         w.source,
		SampleRate:     w.config.SampleRate,
		Format:         format,
		BufferCapacity: bufferCapacity(minimum, w.config.SampleRate),
		FrameLength:    w.config.FrameLength,
	})
	if err != nil {
		if errors.Is(err, audio.ErrUnsupportedFormat) {
			w.fail(ConfigurationError, "unable to initialize audio recorder with required parameters", err)
		} else {
			w.fail(InitializationError, "audio recorder did not initialize successfully", err)
		}
		return
	}

	started := false
	defer func() {
		if started {
			if err := session.Stop(); err != nil {
				w.fail(RuntimeCaptureError, "audio recorder failed to stop", err)
			}
		}
		if err := session.Release(); err != nil {
			w.log.Warn().Err(err).Msg("Failed to release audio session")
		}
	}()

	if err := session.Start(); err != nil {
		w.fail(InitializationError, "audio recorder failed to start", err)
		return
	}
	started = true

	buf := make([]int16, w.config.FrameLength)
	for !w.stop.Load() {
		n, err := session.Read(buf)
		if err != nil {
			w.fail(RuntimeCaptureError, "audio recorder entered invalid state", err)
			return
		}
		if n != len(buf) {
			w.shortReads++
			continue
		}

		frame := make([]int16, n)
		copy(frame, buf)
		w.frames++
		w.onFrame(frame)
	}
}

// fail reports the first failure of this session; later ones are only logged
func (w *worker) fail(kind ErrorKind, msg string, cause error) {
	if w.failed {
		w.log.Warn().Err(cause).Str("kind", kind.String()).Msg(msg)
		return
	}
	w.failed = true

	w.log.Error().Err(cause).Str("kind", kind.String()).Msg(msg)
	w.onError(&CaptureError{
		Kind:      kind,
		Message:   msg,
		Cause:     cause,
		SessionID: w.id,
	})
}

// bufferCapacity never goes below half a second of samples; some devices
// reject their own reported minimum at low sample rates.
func bufferCapacity(minimum, sampleRate int) int {
	return max(minimum, sampleRate/2)
}
