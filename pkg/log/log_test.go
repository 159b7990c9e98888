package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLogger(t *testing.T) {
	cfg := defaultConfig()
	cfg.Level = "debug"

	l, p, err := InitLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, zapcore.DebugLevel, p.Level.Level())
	assert.Same(t, l, L())
}

func TestInitLoggerBadLevel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Level = "not-a-level"

	_, _, err := InitLogger(cfg)
	require.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	_, _, err := InitLogger(defaultConfig())
	require.NoError(t, err)

	SetLevel(zapcore.ErrorLevel)
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))

	SetLevel(zapcore.DebugLevel)
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))
}

func TestGlobalHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ReplaceGlobals(zap.New(core), &Properties{Level: zap.NewAtomicLevel()})

	Info("hello", zap.String("k", "v"))
	Warn("watch out")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "hello", logs.All()[0].Message)
}
