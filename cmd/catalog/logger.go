package main

import (
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the zap logger and routes log/slog through it so library
// packages share its encoder and level.
func newLogger(encoding string, verbose bool) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	if encoding == "" || encoding == "auto" {
		encoding = "json"
		if isTerminal(os.Stderr) {
			encoding = "console"
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = encoding
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if encoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Sampling = nil
	}

	lg, err := cfg.Build(zap.Fields(zap.String("app", appName)))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	slog.SetDefault(slog.New(zapslog.NewHandler(lg.Core(), zapslog.WithName(appName))))
	return lg, nil
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
