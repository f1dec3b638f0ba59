package ai

import (
	"context"
	"sync"
	"time"
)

const (
	defaultMaxRequests = 50
	defaultWindow      = time.Minute
)

// Limiter bounds outbound analysis-service calls to at most maxRequests per
// trailing window. It is the one shared resource between concurrent pipeline
// invocations; all admission decisions are serialized on its internal mutex.
// Admission is strictly FIFO: waiters are granted slots in Acquire order.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	grants []time.Time // timestamps of granted slots, oldest first
	queue  []chan struct{}
}

// NewLimiter creates a Limiter allowing maxRequests per window.
// Non-positive arguments fall back to the defaults (50 per minute).
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequests
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &Limiter{max: maxRequests, window: window}
}

// Acquire blocks until issuing another call would not exceed the limit, then
// returns having reserved a slot. It cannot fail other than by ctx
// cancellation. Waiting is cooperative: no spinning, waiters park on a
// channel and are nudged when they reach the head of the queue.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	l.prune(now)
	if len(l.queue) == 0 && len(l.grants) < l.max {
		l.grants = append(l.grants, now)
		l.mu.Unlock()
		return nil
	}
	ready := make(chan struct{}, 1)
	l.queue = append(l.queue, ready)
	l.mu.Unlock()

	timer := time.NewTimer(l.waitHint())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.dequeue(ready)
			l.nudgeHead()
			l.mu.Unlock()
			return ctx.Err()
		case <-ready:
		case <-timer.C:
		}

		l.mu.Lock()
		now := time.Now()
		l.prune(now)
		if len(l.queue) > 0 && l.queue[0] == ready && len(l.grants) < l.max {
			l.grants = append(l.grants, now)
			l.queue = l.queue[1:]
			if len(l.grants) < l.max {
				l.nudgeHead()
			}
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(l.waitHint())
	}
}

// InFlight returns the number of slots granted within the current window.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(time.Now())
	return len(l.grants)
}

// prune drops grant timestamps older than the trailing window.
// Caller must hold mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.grants) && !l.grants[i].After(cutoff) {
		i++
	}
	l.grants = l.grants[i:]
}

// waitHint returns how long to sleep before the next admission check:
// until the oldest grant leaves the window, or a short poll when idle.
func (l *Limiter) waitHint() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.grants) == 0 {
		return 10 * time.Millisecond
	}
	wait := time.Until(l.grants[0].Add(l.window))
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait
}

// dequeue removes a waiter from the queue. Caller must hold mu.
func (l *Limiter) dequeue(ch chan struct{}) {
	for i, c := range l.queue {
		if c == ch {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			return
		}
	}
}

// nudgeHead wakes the waiter at the head of the queue. Caller must hold mu.
func (l *Limiter) nudgeHead() {
	if len(l.queue) == 0 {
		return
	}
	select {
	case l.queue[0] <- struct{}{}:
	default:
	}
}
