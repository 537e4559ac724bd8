package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	core, logs := observer.New(atomicLevel)
	return &Logger{zapLogger: zap.New(core), zapLevel: atomicLevel}, logs
}

func TestLoggerFields(t *testing.T) {
	logger, logs := observed(LevelDebug)

	logger.With(String("component", "session")).Info("packet",
		Int("size", 12),
		Uint16("port", 4242),
		Uint8("slot", 1),
		Error(errors.New("boom")),
		Error(nil),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "packet", entry.Message)
	assert.Equal(t, "session", fields["component"])
	assert.EqualValues(t, 12, fields["size"])
	assert.EqualValues(t, 4242, fields["port"])
	assert.EqualValues(t, 1, fields["slot"])
	assert.Equal(t, "boom", fields["error"])
}

func TestLoggerSetLevelSharedWithChildren(t *testing.T) {
	logger, logs := observed(LevelInfo)
	child := logger.With(String("component", "world"))

	child.Debug("hidden")
	logger.SetLevel(LevelDebug)
	child.Debug("visible")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "visible", logs.All()[0].Message)
	assert.Equal(t, LevelDebug, child.GetLevel())
}

func TestLoggerLogRespectsLevel(t *testing.T) {
	logger, logs := observed(LevelWarn)

	logger.Log(LevelInfo, "dropped")
	logger.Log(LevelError, "kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal, LevelNone} {
		parsed, err := ParseLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithConfigRejectsUnknownEncoding(t *testing.T) {
	_, err := NewWithConfig(Config{Level: "info", Encoding: "xml"})
	assert.Error(t, err)

	logger, err := NewWithConfig(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, logger.GetLevel())
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Info("nothing")
	assert.Equal(t, LevelNone, logger.GetLevel())
}
