package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbose, quiet int
		expected       string
	}{
		{0, 0, "info"},
		{1, 0, "debug"},
		{3, 0, "debug"},
		{0, 1, "warn"},
		{0, 2, "error"},
		{1, 1, "info"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelFromVerbosity(tt.verbose, tt.quiet), "v=%d q=%d", tt.verbose, tt.quiet)
	}
}

func TestNew(t *testing.T) {
	logger, err := New("warn", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	_, err = New("loud", "console")
	assert.Error(t, err)
}

func TestWarner_Dedupes(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := NewWarner(zap.New(core), 0)

	assert.True(t, w.Warn("label", "foo", "unknown label"))
	assert.False(t, w.Warn("label", "foo", "unknown label"))
	assert.True(t, w.Warn("label", "bar", "unknown label"))
	assert.True(t, w.Warn("other", "foo", "unknown other"))

	require.Equal(t, 3, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "unknown label", entry.Message)
	assert.Equal(t, "foo", entry.ContextMap()["label"])
}
