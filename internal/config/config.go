// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds battle timing and balance settings.
type BattleConfig struct {
	IntroDelay       time.Duration `mapstructure:"intro_delay"`
	ExecuteWindow    time.Duration `mapstructure:"execute_window"`
	EntranceDuration time.Duration `mapstructure:"entrance_duration"`
	// ApproachRange is the Manhattan radius within which map enemies join a battle.
	ApproachRange int `mapstructure:"approach_range"`
	// ApproachStep is how long an approaching map enemy takes per tile.
	ApproachStep time.Duration `mapstructure:"approach_step"`
	// DeltaCap bounds the elapsed time fed into one update.
	DeltaCap           time.Duration `mapstructure:"delta_cap"`
	LogCapacity        int           `mapstructure:"log_capacity"`
	NumberLifetime     time.Duration `mapstructure:"number_lifetime"`
	GaugeMax           float64       `mapstructure:"gauge_max"`
	SpeedNormalization float64       `mapstructure:"speed_normalization"`
	TickNormalization  time.Duration `mapstructure:"tick_normalization"`
	GlobalMultiplier   float64       `mapstructure:"global_multiplier"`
	CancelRefund       float64       `mapstructure:"cancel_refund"`
	StealChance        float64       `mapstructure:"steal_chance"`
}

// Settings projects the battle section onto the engine's settings.
//
// Postcondition: Zero fields fall back to combat.DefaultSettings inside the engine.
func (b BattleConfig) Settings() combat.Settings {
	return combat.Settings{
		IntroDelay:         b.IntroDelay,
		ExecuteWindow:      b.ExecuteWindow,
		EntranceDuration:   b.EntranceDuration,
		ApproachRange:      b.ApproachRange,
		LogCapacity:        b.LogCapacity,
		NumberLifetime:     b.NumberLifetime,
		GaugeMax:           b.GaugeMax,
		SpeedNormalization: b.SpeedNormalization,
		TickNormalization:  b.TickNormalization,
		GlobalMultiplier:   b.GlobalMultiplier,
		CancelRefund:       b.CancelRefund,
		StealChance:        b.StealChance,
	}
}

// ContentConfig locates external data. Empty values select the embedded defaults.
type ContentConfig struct {
	// Dir holds abilities.yaml, units.yaml, enemies.yaml, party.yaml and formations.yaml.
	Dir string `mapstructure:"dir"`
	// ScriptsDir holds one Lua script per enemy type plus an optional global.lua.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// Map is a YAML overworld map file.
	Map string `mapstructure:"map"`
	// InstructionLimit caps the Lua instructions one hook call may execute.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// TelemetryConfig holds tracing settings. The exporter itself is configured
// through the standard OTEL_* environment variables.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// SimConfig controls how cmd/battlesim advances time.
type SimConfig struct {
	// Seed fixes the dice; 0 selects the crypto-backed source.
	Seed int64 `mapstructure:"seed"`
	// Tick is the update interval.
	Tick time.Duration `mapstructure:"tick"`
	// MaxDuration bounds one battle; 0 means unbounded.
	MaxDuration time.Duration `mapstructure:"max_duration"`
	// Realtime paces updates against the wall clock instead of simulating.
	Realtime bool `mapstructure:"realtime"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Content   ContentConfig   `mapstructure:"content"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Sim       SimConfig       `mapstructure:"sim"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelemetry(c.Telemetry); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"battle.intro_delay", b.IntroDelay},
		{"battle.execute_window", b.ExecuteWindow},
		{"battle.entrance_duration", b.EntranceDuration},
		{"battle.approach_step", b.ApproachStep},
		{"battle.delta_cap", b.DeltaCap},
		{"battle.number_lifetime", b.NumberLifetime},
		{"battle.tick_normalization", b.TickNormalization},
	}
	for _, d := range durations {
		if d.d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0, got %s", d.name, d.d))
		}
	}
	if b.ApproachRange < 0 {
		errs = append(errs, fmt.Sprintf("battle.approach_range must be >= 0, got %d", b.ApproachRange))
	}
	if b.LogCapacity < 1 {
		errs = append(errs, fmt.Sprintf("battle.log_capacity must be >= 1, got %d", b.LogCapacity))
	}
	if b.GaugeMax <= 0 {
		errs = append(errs, fmt.Sprintf("battle.gauge_max must be > 0, got %g", b.GaugeMax))
	}
	if b.SpeedNormalization <= 0 {
		errs = append(errs, fmt.Sprintf("battle.speed_normalization must be > 0, got %g", b.SpeedNormalization))
	}
	if b.GlobalMultiplier <= 0 {
		errs = append(errs, fmt.Sprintf("battle.global_multiplier must be > 0, got %g", b.GlobalMultiplier))
	}
	if b.CancelRefund <= 0 || b.CancelRefund > 1 {
		errs = append(errs, fmt.Sprintf("battle.cancel_refund must be in (0, 1], got %g", b.CancelRefund))
	}
	if b.StealChance <= 0 || b.StealChance > 1 {
		errs = append(errs, fmt.Sprintf("battle.steal_chance must be in (0, 1], got %g", b.StealChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.InstructionLimit < 0 {
		return fmt.Errorf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit)
	}
	return nil
}

func validateTelemetry(t TelemetryConfig) error {
	if t.Enabled && t.ServiceName == "" {
		return errors.New("telemetry.service_name must not be empty when telemetry is enabled")
	}
	return nil
}

func validateSim(s SimConfig) error {
	var errs []string
	if s.Tick <= 0 {
		errs = append(errs, fmt.Sprintf("sim.tick must be > 0, got %s", s.Tick))
	}
	if s.MaxDuration < 0 {
		errs = append(errs, "sim.max_duration must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by an empty config file.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config.Default: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	d := combat.DefaultSettings()
	v.SetDefault("battle.intro_delay", d.IntroDelay)
	v.SetDefault("battle.execute_window", d.ExecuteWindow)
	v.SetDefault("battle.entrance_duration", d.EntranceDuration)
	v.SetDefault("battle.approach_range", d.ApproachRange)
	v.SetDefault("battle.approach_step", "500ms")
	v.SetDefault("battle.delta_cap", "50ms")
	v.SetDefault("battle.log_capacity", d.LogCapacity)
	v.SetDefault("battle.number_lifetime", d.NumberLifetime)
	v.SetDefault("battle.gauge_max", d.GaugeMax)
	v.SetDefault("battle.speed_normalization", d.SpeedNormalization)
	v.SetDefault("battle.tick_normalization", d.TickNormalization)
	v.SetDefault("battle.global_multiplier", d.GlobalMultiplier)
	v.SetDefault("battle.cancel_refund", d.CancelRefund)
	v.SetDefault("battle.steal_chance", d.StealChance)

	v.SetDefault("content.dir", "")
	v.SetDefault("content.scripts_dir", "")
	v.SetDefault("content.map", "")
	v.SetDefault("content.instruction_limit", 100000)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "skirmish")

	v.SetDefault("sim.seed", 0)
	v.SetDefault("sim.tick", "16ms")
	v.SetDefault("sim.max_duration", "10m")
	v.SetDefault("sim.realtime", false)
}
