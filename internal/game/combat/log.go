package combat

import "time"

// BattleLog keeps the most recent human-readable battle events.
type BattleLog struct {
	capacity int
	lines    []string
}

// NewBattleLog returns an empty log retaining at most capacity lines.
func NewBattleLog(capacity int) *BattleLog {
	if capacity <= 0 {
		capacity = DefaultSettings().LogCapacity
	}
	return &BattleLog{capacity: capacity}
}

// Add appends msg, discarding the oldest line when full.
func (l *BattleLog) Add(msg string) {
	l.lines = append(l.lines, msg)
	if over := len(l.lines) - l.capacity; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
}

// Lines returns a copy of the retained lines, oldest first.
func (l *BattleLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// DamageNumber is a transient floating number shown over a combatant.
type DamageNumber struct {
	TargetID string
	X        float64
	Y        float64
	Value    string
	Color    string
	Age      time.Duration
	Lifetime time.Duration
}

// Expired reports whether the number has outlived its lifetime.
func (n DamageNumber) Expired() bool { return n.Age >= n.Lifetime }

const (
	healColor   = "#44ff44"
	damageColor = "#ffffff"
)

// ageNumbers advances every number by delta and drops the expired ones.
func ageNumbers(nums []DamageNumber, delta time.Duration) []DamageNumber {
	if delta <= 0 {
		return nums
	}
	kept := nums[:0]
	for _, n := range nums {
		n.Age += delta
		if !n.Expired() {
			kept = append(kept, n)
		}
	}
	return kept
}
