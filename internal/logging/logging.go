// Package logging builds the zap loggers used by the reader binaries.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// File is the rotated JSON log file. Empty disables the file core.
	File string
	// Console tees human-readable output to stderr.
	Console bool
	Debug   bool
}

func rotator(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func fileEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.MessageKey = "message"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(cfg)
}

// New returns a logger writing to the configured outputs. With no output
// configured it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	var cores []zapcore.Core
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(fileEncoder(), zapcore.AddSync(rotator(opts.File)), level))
	}
	if opts.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stderr),
			level,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// FileOnly builds a logger that never touches the terminal, for programs
// that own stdout.
func FileOnly(path string, debug bool) (*zap.Logger, error) {
	return New(Options{File: path, Debug: debug})
}

// DefaultFile is where logs go when no path is configured.
func DefaultFile(name string) string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "docreader", "logs", name+".log")
}
