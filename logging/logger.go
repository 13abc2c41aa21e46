// Package logging adapts zap to the Printf-style logger used by the framework and the
// request log recorder.
package logging

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements framework.Logger on top of a zap logger. Every message is
// logged at info level with the fields given to NewZapLogger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger builds a JSON logger writing to stdout. The level is read from the
// LOG_LEVEL environment variable as a zapcore level number and defaults to info.
func NewZapLogger(fields ...zap.Field) (*ZapLogger, error) {
	level, err := strconv.Atoi(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = int(zapcore.InfoLevel)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(level))
	cfg.EncoderConfig.CallerKey = ""
	cfg.EncoderConfig.FunctionKey = ""
	cfg.EncoderConfig.LevelKey = "severity"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stdout"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return WrapZap(logger.With(fields...)), nil
}

// WrapZap returns a ZapLogger that writes to an existing zap logger.
func WrapZap(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

func (l *ZapLogger) Printf(message string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(message, args...))
}

// Sync flushes buffered output. Errors from syncing stdout are ignored.
func (l *ZapLogger) Sync() {
	_ = l.logger.Sync()
}
