package dice

import "sync"

// Fixed is a scripted Source that replays the given values in order, cycling
// when exhausted. Empty slices yield 0 for Intn and Float for Float64.
//
// Fixed is intended for tests that must pin a roll, e.g. forcing the damage
// variance to exactly 1.0 with Float = 0.5.
type Fixed struct {
	Ints   []int
	Floats []float64
	// Float is returned by Float64 when Floats is empty.
	Float float64

	mu     sync.Mutex
	intPos int
	fltPos int
}

// Intn returns the next scripted int reduced into [0, n).
//
// Precondition: n > 0.
func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.intPos%len(f.Ints)]
	f.intPos++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float.
func (f *Fixed) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Floats) == 0 {
		return f.Float
	}
	v := f.Floats[f.fltPos%len(f.Floats)]
	f.fltPos++
	return v
}
