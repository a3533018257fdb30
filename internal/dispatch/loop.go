// Package dispatch runs listener callbacks on a single delivery goroutine,
// decoupled from the goroutine that produced the event.
package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrClosed is returned by Flush once the loop no longer accepts work
var ErrClosed = errors.New("delivery loop closed")

// Poster accepts units of work for asynchronous execution
type Poster interface {
	Post(fn func()) bool
}

// Loop executes posted functions one at a time, in post order, on its own
// goroutine. Post never blocks; the queue is unbounded.
type Loop struct {
	log zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	done chan struct{}
}

// NewLoop starts a delivery loop
func NewLoop(log zerolog.Logger) *Loop {
	l := &Loop{
		log:  log,
		done: make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Post enqueues fn. It reports false, and drops fn, once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return true
}

// Flush blocks until every unit posted before the call has run
func (l *Loop) Flush(ctx context.Context) error {
	reached := make(chan struct{})
	if !l.Post(func() { close(reached) }) {
		return ErrClosed
	}

	select {
	case <-reached:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued units not yet started
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Close stops accepting posts, runs what is already queued and waits for the
// loop goroutine to exit. It is safe to call more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.cond.Signal()
	l.mu.Unlock()

	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.invoke(fn)
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Msg("Listener panicked")
		}
	}()
	fn()
}
