// Package loop drives a battle engine from a clock: a real-time ticker for
// interactive runs and a fixed-step simulator for headless ones.
package loop

import (
	"context"
	"time"
)

// DefaultDeltaCap bounds a single update after a stall.
const DefaultDeltaCap = 50 * time.Millisecond

// UpdateFunc advances the world by delta and reports whether the loop should
// keep running.
type UpdateFunc func(delta time.Duration) bool

// Loop invokes an UpdateFunc at a fixed interval with the measured wall delta.
//
// Invariant: every delta passed to the UpdateFunc is in [0, deltaCap].
type Loop struct {
	interval time.Duration
	deltaCap time.Duration
	now      func() time.Time
}

// New returns a loop that ticks every interval.
//
// Precondition: interval must be > 0. A non-positive deltaCap uses DefaultDeltaCap.
func New(interval, deltaCap time.Duration) *Loop {
	if interval <= 0 {
		panic("loop.New: interval must be > 0")
	}
	if deltaCap <= 0 {
		deltaCap = DefaultDeltaCap
	}
	return &Loop{interval: interval, deltaCap: deltaCap, now: time.Now}
}

// Interval returns the tick interval.
func (l *Loop) Interval() time.Duration { return l.interval }

// Clamp limits d to [0, deltaCap].
func (l *Loop) Clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > l.deltaCap {
		return l.deltaCap
	}
	return d
}

// Run blocks, calling update once per tick, until update returns false or ctx
// is cancelled.
//
// Postcondition: Returns nil when update stopped the loop, ctx.Err() otherwise.
func (l *Loop) Run(ctx context.Context, update UpdateFunc) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	last := l.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := l.now()
			delta := l.Clamp(now.Sub(last))
			last = now
			if !update(delta) {
				return nil
			}
		}
	}
}

// Simulate calls update with a constant step until it returns false or
// maxDuration of simulated time has passed. A non-positive maxDuration means
// no limit.
//
// Precondition: step must be > 0.
// Postcondition: Returns the simulated time consumed and whether update
// stopped on its own.
func Simulate(step, maxDuration time.Duration, update UpdateFunc) (time.Duration, bool) {
	if step <= 0 {
		panic("loop.Simulate: step must be > 0")
	}
	var elapsed time.Duration
	for maxDuration <= 0 || elapsed < maxDuration {
		elapsed += step
		if !update(step) {
			return elapsed, true
		}
	}
	return elapsed, false
}
