package messaging_test

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/shortener-demo-go/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := messaging.NewZapAdapter(zap.New(core))

	adapter.Info("info msg", watermill.LogFields{"topic": "a"})
	adapter.Debug("debug msg", nil)
	adapter.Trace("trace msg", nil)
	adapter.With(watermill.LogFields{"sub": "x"}).Error("error msg", errors.New("boom"), nil)

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "a", entries[0].ContextMap()["topic"])
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "x", entries[3].ContextMap()["sub"])
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}
