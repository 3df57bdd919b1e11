package combat

import "time"

// Settings holds the tunable timing and balance constants of a battle.
type Settings struct {
	// IntroDelay is how long STARTING lasts before the gauges begin to fill.
	IntroDelay time.Duration
	// ExecuteWindow is the length of one EXECUTING phase; the action resolves at its midpoint.
	ExecuteWindow time.Duration
	// EntranceDuration is how long an arriving squad takes to slide in.
	EntranceDuration time.Duration
	// ApproachRange is the Manhattan distance within which overworld enemies converge on a battle.
	ApproachRange int
	// LogCapacity is the number of battle log lines retained.
	LogCapacity int
	// NumberLifetime is how long a floating damage number lives.
	NumberLifetime time.Duration

	GaugeMax           float64
	SpeedNormalization float64
	TickNormalization  time.Duration
	GlobalMultiplier   float64

	// CancelRefund is the fraction of GaugeMax restored when a player backs out of the menu.
	// Zero selects the default.
	CancelRefund float64
	// StealChance is the success probability of special abilities. Zero selects the default.
	StealChance float64
}

// DefaultSettings returns the stock battle tuning.
func DefaultSettings() Settings {
	return Settings{
		IntroDelay:         800 * time.Millisecond,
		ExecuteWindow:      600 * time.Millisecond,
		EntranceDuration:   500 * time.Millisecond,
		ApproachRange:      12,
		LogCapacity:        8,
		NumberLifetime:     800 * time.Millisecond,
		GaugeMax:           100,
		SpeedNormalization: 255,
		TickNormalization:  16670 * time.Microsecond,
		GlobalMultiplier:   1.0,
		CancelRefund:       0.8,
		StealChance:        0.4,
	}
}

// withDefaults fills zero-valued fields from DefaultSettings. The two
// probabilities also fall back when outside (0, 1].
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.IntroDelay <= 0 {
		s.IntroDelay = d.IntroDelay
	}
	if s.ExecuteWindow <= 0 {
		s.ExecuteWindow = d.ExecuteWindow
	}
	if s.EntranceDuration <= 0 {
		s.EntranceDuration = d.EntranceDuration
	}
	if s.ApproachRange <= 0 {
		s.ApproachRange = d.ApproachRange
	}
	if s.LogCapacity <= 0 {
		s.LogCapacity = d.LogCapacity
	}
	if s.NumberLifetime <= 0 {
		s.NumberLifetime = d.NumberLifetime
	}
	if s.GaugeMax <= 0 {
		s.GaugeMax = d.GaugeMax
	}
	if s.SpeedNormalization <= 0 {
		s.SpeedNormalization = d.SpeedNormalization
	}
	if s.TickNormalization <= 0 {
		s.TickNormalization = d.TickNormalization
	}
	if s.GlobalMultiplier <= 0 {
		s.GlobalMultiplier = d.GlobalMultiplier
	}
	if s.CancelRefund <= 0 || s.CancelRefund > 1 {
		s.CancelRefund = d.CancelRefund
	}
	if s.StealChance <= 0 || s.StealChance > 1 {
		s.StealChance = d.StealChance
	}
	return s
}
