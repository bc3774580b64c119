package logger_test

import (
	"path/filepath"
	"testing"

	"novel-relay/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("Debug level is enabled", func(t *testing.T) {
		l, err := logger.New(logger.Config{Level: "DEBUG", Encoding: "console"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zap.DebugLevel))
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		l, err := logger.New(logger.Config{Level: "verbose"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zap.DebugLevel))
		assert.True(t, l.Core().Enabled(zap.InfoLevel))
	})

	t.Run("Writes to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rounds.log")
		l, err := logger.New(logger.Config{OutputPath: path})
		require.NoError(t, err)
		l.Info("hello")
		assert.NoError(t, l.Sync())
		assert.FileExists(t, path)
	})
}
