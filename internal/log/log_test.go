package log_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
)

func TestLogger_WritesTypedFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := log.NewWithCore(core)

	l.Debug("hidden")
	l.With(log.String("reader", "csv")).Info("record read", log.Int("index", 3), log.Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "record read", entries[0].Message)
	assert.Equal(t, "csv", ctx["reader"])
	assert.Equal(t, int64(3), ctx["index"])
	assert.Equal(t, "boom", ctx["error"])

	assert.False(t, l.Enabled(log.LevelDebug))
	assert.True(t, l.Enabled(log.LevelWarn))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, log.ParseLevel("DEBUG"))
	assert.Equal(t, log.LevelWarn, log.ParseLevel("warning"))
	assert.Equal(t, log.LevelInfo, log.ParseLevel("loud"))
}

func TestNop_DiscardsEverything(t *testing.T) {
	l := log.Nop()
	l.Error("ignored")
	assert.False(t, l.Enabled(log.LevelError))
}
