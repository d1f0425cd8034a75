package utils

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns a process-wide logger configured from LOG_FILE and
// LOG_LEVEL.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		l, err := NewLogger(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL"))
		if err != nil {
			l, _ = zap.NewProduction()
		}
		logger = l
	})
	return logger
}

// NewLogger builds a JSON logger on stdout, teed into file when one is
// given. An empty or unknown level means info.
func NewLogger(file, level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if l, err := zapcore.ParseLevel(level); err == nil {
			lvl = l
		}
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
	if file == "" {
		return zap.New(consoleCore), nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
