package combat

import "time"

// Scheduler fills each living combatant's action gauge in proportion to its
// speed and the elapsed simulation time.
type Scheduler struct {
	// Multiplier scales every fill; 1.0 is normal speed.
	Multiplier float64

	speedNorm float64
	tickNorm  time.Duration
	paused    bool
}

// NewScheduler returns an unpaused scheduler using the normalization constants in settings.
func NewScheduler(settings Settings) *Scheduler {
	settings = settings.withDefaults()
	return &Scheduler{
		Multiplier: settings.GlobalMultiplier,
		speedNorm:  settings.SpeedNormalization,
		tickNorm:   settings.TickNormalization,
	}
}

// Update fills the gauges of living, not-ready units by
// (speed/speedNorm) * Multiplier * (delta/tickNorm), clamped at each unit's GaugeMax.
//
// Postcondition: no gauge changes while paused or for delta <= 0; a unit whose
// gauge reaches GaugeMax becomes ready.
func (s *Scheduler) Update(delta time.Duration, units []*Combatant) {
	if s.paused || delta <= 0 {
		return
	}
	ticks := float64(delta) / float64(s.tickNorm)
	for _, u := range units {
		if u == nil || !u.Alive || u.Ready {
			continue
		}
		u.Gauge += (float64(u.Speed) / s.speedNorm) * s.Multiplier * ticks
		if u.Gauge >= u.GaugeMax {
			u.Gauge = u.GaugeMax
			u.Ready = true
		}
	}
}

// Reset empties u's gauge after it has acted and ends any defensive stance.
func (s *Scheduler) Reset(u *Combatant) {
	u.Gauge = 0
	u.Ready = false
	u.Defending = false
}

// Pause stops all filling until Resume.
func (s *Scheduler) Pause() { s.paused = true }

// Resume restarts filling.
func (s *Scheduler) Resume() { s.paused = false }

// Paused reports whether filling is stopped.
func (s *Scheduler) Paused() bool { return s.paused }
