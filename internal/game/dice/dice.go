// Package dice provides the randomness abstraction used by the battle core.
//
// Every random decision in a battle (variance rolls, random targets, random
// abilities, special-action success) goes through a Source so tests and replays
// can pin outcomes.
package dice

// Source is the randomness provider for battle rolls.
//
// Implementations returned by this package are safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Uniform maps a Float64 draw from src onto [lo, hi).
//
// Precondition: lo <= hi.
// Postcondition: lo <= result < hi when lo < hi; result == lo when lo == hi.
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Chance reports whether a roll on src succeeds with probability p.
//
// Postcondition: always false for p <= 0; always true for p >= 1.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
