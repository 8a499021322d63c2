package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"INFO", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"warning", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want.Level(), got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), {Level: "debug", JSON: true}} {
		logger, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, cfg.Level == "debug", logger.Core().Enabled(zap.DebugLevel))
		_ = logger.Sync()
	}

	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)
}
