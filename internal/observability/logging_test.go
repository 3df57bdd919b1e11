package observability_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := observability.NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := observability.NewLogger(cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := observability.NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := observability.NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_LevelFilters(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := observability.NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		want, _ := zapcore.ParseLevel(level)
		assert.True(t, logger.Core().Enabled(want))
		if want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(want-1), "level %q", level)
		}
	}
}

func TestNewLogger_WritesJSONWithISOTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := observability.NewLoggerTo(config.LoggingConfig{Level: "info", Format: "json"}, []string{path})
	require.NoError(t, err)
	logger.Info("hello", zap.Int("n", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"n":3`)
	assert.Regexp(t, `"ts":"\d{4}-\d{2}-\d{2}T`, string(data))
}

func TestBattleLogger_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	observability.BattleLogger(zap.New(core), "b-1", "enemy_0").Info("start")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "battle", entry.LoggerName)
	assert.Equal(t, "b-1", entry.ContextMap()["battle_id"])
	assert.Equal(t, "enemy_0", entry.ContextMap()["trigger"])
}
