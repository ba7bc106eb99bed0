// Package logging provides category-based file logging for the interactive
// app. The TUI owns the terminal, so nothing may write to stdout or stderr
// while a session is attached; logs go to per-category files under the
// config directory, and only when debug mode is on.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names one log stream.
type Category string

const (
	CategorySession Category = "session" // login, logout, track selection
	CategoryWizard  Category = "wizard"  // state transitions
	CategoryLookup  Category = "lookup"  // directory and audit lookups
	CategoryReport  Category = "report"  // checklist and email generation
	CategoryUI      Category = "ui"      // page lifecycle, resize
)

var (
	mu      sync.RWMutex
	loggers = make(map[Category]*zap.Logger)
	logsDir string
	enabled bool
)

// Initialize sets the log directory and debug gate. With debug off every
// logger is a no-op and no directory is created.
func Initialize(dir string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	enabled = debug
	logsDir = dir
	loggers = make(map[Category]*zap.Logger)

	if !enabled {
		return nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

// L returns the logger for a category, creating its file on first use.
func L(cat Category) *zap.Logger {
	mu.RLock()
	if !enabled {
		mu.RUnlock()
		return zap.NewNop()
	}
	if l, ok := loggers[cat]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[cat]; ok {
		return l
	}

	path := filepath.Join(logsDir, string(cat)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		// A category that cannot open its file degrades to a no-op
		// rather than surfacing into the UI.
		l := zap.NewNop()
		loggers[cat] = l
		return l
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	l := zap.New(core).With(zap.String("category", string(cat)))
	loggers[cat] = l
	return l
}

// Sync flushes all open category loggers. Called at shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	for _, l := range loggers {
		_ = l.Sync()
	}
}
