package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

func TestScheduler_FillRate(t *testing.T) {
	s := combat.NewScheduler(combat.DefaultSettings())
	u := unit("a", 1, 1, 1, 1, 10)
	u.Speed = 255
	s.Update(16670*time.Microsecond, []*combat.Combatant{u})
	assert.InDelta(t, 1.0, u.Gauge, 1e-9)

	s.Multiplier = 2
	s.Update(16670*time.Microsecond, []*combat.Combatant{u})
	assert.InDelta(t, 3.0, u.Gauge, 1e-9)
}

func TestScheduler_ClampsAndReadies(t *testing.T) {
	s := combat.NewScheduler(combat.DefaultSettings())
	u := unit("a", 1, 1, 1, 1, 10)
	s.Update(10*time.Second, []*combat.Combatant{u})
	assert.Equal(t, u.GaugeMax, u.Gauge)
	assert.True(t, u.Ready)

	u.Defending = true
	s.Reset(u)
	assert.Zero(t, u.Gauge)
	assert.False(t, u.Ready)
	assert.False(t, u.Defending, "acting again ends the defensive stance")
}

func TestScheduler_SkipsDeadAndReady(t *testing.T) {
	s := combat.NewScheduler(combat.DefaultSettings())
	dead := unit("dead", 1, 1, 1, 1, 10)
	dead.TakeDamage(10)
	s.Update(time.Second, []*combat.Combatant{dead, nil})
	assert.Zero(t, dead.Gauge)
}

func TestScheduler_PauseFreezes(t *testing.T) {
	s := combat.NewScheduler(combat.DefaultSettings())
	u := unit("a", 1, 1, 1, 1, 10)
	s.Pause()
	assert.True(t, s.Paused())
	s.Update(time.Second, []*combat.Combatant{u})
	assert.Zero(t, u.Gauge)
	s.Resume()
	s.Update(time.Second, []*combat.Combatant{u})
	assert.Positive(t, u.Gauge)
}

func TestPropertyScheduler_MonotonicAndBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := combat.NewScheduler(combat.DefaultSettings())
		u := unit("a", 1, 1, 1, 1, 10)
		u.Speed = rapid.IntRange(1, 255).Draw(rt, "speed")
		steps := rapid.SliceOfN(rapid.IntRange(-10, 50), 1, 200).Draw(rt, "steps")
		pauses := rapid.SliceOfN(rapid.Bool(), len(steps), len(steps)).Draw(rt, "pauses")

		for i, ms := range steps {
			if pauses[i] {
				s.Pause()
			} else {
				s.Resume()
			}
			before := u.Gauge
			s.Update(time.Duration(ms)*time.Millisecond, []*combat.Combatant{u})
			if u.Gauge < before {
				rt.Fatalf("gauge decreased %v -> %v", before, u.Gauge)
			}
			if pauses[i] && u.Gauge != before {
				rt.Fatalf("gauge moved while paused")
			}
			if u.Gauge < 0 || u.Gauge > u.GaugeMax {
				rt.Fatalf("gauge %v out of range", u.Gauge)
			}
			if u.Ready != (u.Gauge >= u.GaugeMax) {
				rt.Fatalf("ready %v with gauge %v", u.Ready, u.Gauge)
			}
		}
	})
}
