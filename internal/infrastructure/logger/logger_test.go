package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fintrack/backend/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	t.Run("creates json logger", func(t *testing.T) {
		logger, err := New(&Config{Level: "info", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		require.NotNil(t, logger)

		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("creates console logger at debug level", func(t *testing.T) {
		logger, err := New(&Config{Level: "debug", Format: "console", Output: "stderr"})
		require.NoError(t, err)

		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("writes to a file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		logger, err := New(&Config{Level: "info", Format: "json", Output: path})
		require.NoError(t, err)

		logger.Info("hello")
		require.NoError(t, logger.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		logger, err := New(&Config{Level: "verbose", Format: "json", Output: "stdout"})
		require.NoError(t, err)

		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestNewFromAppConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"
	cfg.Log.Output = "stdout"

	logger, err := NewFromAppConfig(cfg)
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), "level %q", tt.input)
	}
}
