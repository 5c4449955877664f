package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func parseLevel(s string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("must be one of 'debug', 'info', 'warn', or 'error': %q", s)
	}
	return lvl, nil
}

// Logger builds the logger described by the Log config. With no file set, a
// logger that discards everything is returned.
func (l Log) Logger() (*zap.Logger, error) {
	if l.File == "" {
		return zap.NewNop(), nil
	}

	lvl, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{l.File}
	zc.ErrorOutputPaths = []string{l.File}
	zc.Sampling = nil

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
