package combat

import "time"

// Window measures a fixed span of simulation time.
type Window struct {
	duration time.Duration
	elapsed  time.Duration
}

// Start restarts the window with the given length.
func (w *Window) Start(d time.Duration) {
	w.duration = d
	w.elapsed = 0
}

// Advance adds delta to the elapsed time. Negative deltas are ignored.
func (w *Window) Advance(delta time.Duration) {
	if delta > 0 {
		w.elapsed += delta
	}
}

// Elapsed returns the simulation time since Start.
func (w *Window) Elapsed() time.Duration { return w.elapsed }

// Duration returns the window length.
func (w *Window) Duration() time.Duration { return w.duration }

// PastMidpoint reports whether at least half the window has elapsed.
func (w *Window) PastMidpoint() bool { return w.elapsed >= w.duration/2 }

// Done reports whether the whole window has elapsed.
func (w *Window) Done() bool { return w.elapsed >= w.duration }
