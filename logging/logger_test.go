package logging

import (
	"testing"

	"github.com/restlog/request-log-recorder/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerPrintf(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var logger framework.Logger = WrapZap(zap.New(core).With(zap.String("component", "restlog")))

	logger.Printf("Request log for %s written to %s", "users/get", "/tmp/x.html")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "Request log for users/get written to /tmp/x.html", entries[0].Message)
	assert.Equal(t, "restlog", entries[0].ContextMap()["component"])
}

func TestNewZapLoggerHonorsLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "1")
	logger, err := NewZapLogger()
	require.NoError(t, err)
	assert.False(t, logger.logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.logger.Core().Enabled(zapcore.WarnLevel))
}
