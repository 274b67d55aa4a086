package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the optional log file
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 14
)

// New creates a zap logger for the given environment. local gets the example
// logger, development the development preset and anything else production.
// When logFile is set every entry is also written as JSON to a rotating file.
func New(env, logFile string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
		level  zapcore.Level
	)
	switch env {
	case "", "local":
		logger = zap.NewExample()
		level = zapcore.DebugLevel
	case "development":
		logger, err = zap.NewDevelopment()
		level = zapcore.DebugLevel
	default:
		logger, err = zap.NewProduction()
		level = zapcore.InfoLevel
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build %s logger: %w", env, err)
	}

	if logFile == "" {
		return logger, nil
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}),
		level,
	)
	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}
