// package ratelimit provides per-service request pacing. Each limiter
// owns a FIFO queue of pending operations and a dispatcher that
// releases up to a burst of them per interval, so callers never need to
// coordinate timing themselves.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter releases queued operations in FIFO order. Up to Burst
// operations run concurrently per release, and releases are spaced at
// least 1/rate seconds apart. Once enqueued an operation always runs.
type Limiter struct {
	pacer *rate.Limiter
	burst int

	mu      sync.Mutex
	queue   []chan struct{}
	running bool
}

// New builds a limiter that releases bursts of burst operations no more
// often than perSecond times per second.
func New(perSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		pacer: rate.NewLimiter(rate.Limit(perSecond), 1),
		burst: burst,
	}
}

// Lidarr paces calls against the Lidarr API at one request per second.
func Lidarr() *Limiter { return New(1, 1) }

// MusicBrainz paces calls at one request per second, as their API terms
// require for anonymous clients.
func MusicBrainz() *Limiter { return New(1, 1) }

// Spotify allows bursts of three requests, six per second overall.
func Spotify() *Limiter { return New(6, 3) }

// Go enqueues fn and returns a channel that receives its error once the
// limiter has released and run it. The channel is buffered, so the
// result never blocks the dispatcher.
func (l *Limiter) Go(fn func() error) <-chan error {
	out := make(chan error, 1)
	release := make(chan struct{})

	l.mu.Lock()
	l.queue = append(l.queue, release)
	if !l.running {
		l.running = true
		go l.dispatch()
	}
	l.mu.Unlock()

	go func() {
		<-release
		out <- fn()
	}()
	return out
}

// Wait enqueues fn and blocks until it has run, returning its error.
func (l *Limiter) Wait(fn func() error) error {
	return <-l.Go(fn)
}

// dispatch drains the queue a burst at a time, pacing each release with
// the underlying token bucket. It exits when the queue empties.
func (l *Limiter) dispatch() {
	for {
		l.pacer.Wait(context.Background()) //nolint:errcheck // background context never expires

		l.mu.Lock()
		n := min(l.burst, len(l.queue))
		batch := l.queue[:n]
		l.queue = l.queue[n:]
		if len(l.queue) == 0 {
			l.running = false
		}
		done := !l.running
		l.mu.Unlock()

		for _, release := range batch {
			close(release)
		}
		if done {
			return
		}
	}
}

// Pending reports how many operations are queued but not yet released.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
