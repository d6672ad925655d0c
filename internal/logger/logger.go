// Package logger builds the zap logger used by the CLI. Library packages
// receive a *zap.SugaredLogger by injection and default to a nop logger, so
// no logging state lives at package level.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/samvad-llm-client/internal/config"
)

// Init initializes a zap SugaredLogger using settings from config. Output
// goes to stderr so streamed model text owns stdout. Callers should defer
// Sync on the returned logger.
func Init(cfg *config.Config) (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stderr)),
		parseLevel(cfg.LogLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger.Sugar(), nil
}

// parseLevel maps a configured level name to a zap level, defaulting to info
// for unknown names.
func parseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
