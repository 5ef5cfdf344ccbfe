package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LevelTrace sits below Debug for per-event output such as pointer motion.
const LevelTrace slog.Level = -8

var (
	file    *os.File
	logger  *slog.Logger
	mu      sync.Mutex
	enabled bool
)

// ParseLevel accepts trace, debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// DefaultPath is ~/.config/go-keyboard/debug.log.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "go-keyboard", "debug.log")
}

// Enable starts logging to path (DefaultPath when empty). The terminal
// belongs to the UI, so logs always go to a file.
func Enable(path string, level slog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	enabled = true
	logger.Info("debug logging started", "category", "debug")
	return nil
}

// EnableWriter logs to w instead of a file. Used by tests.
func EnableWriter(w io.Writer, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
	enabled = false
}

func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Logger returns the debug logger, or one that discards everything when
// logging is off.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

// Log writes a debug record tagged with category. args are slog key/value
// pairs.
func Log(category, msg string, args ...any) {
	logAt(slog.LevelDebug, category, msg, args...)
}

// Trace is Log at LevelTrace.
func Trace(category, msg string, args ...any) {
	logAt(LevelTrace, category, msg, args...)
}

// Warn is for recoverable problems such as skipped config entries.
func Warn(category, msg string, args ...any) {
	logAt(slog.LevelWarn, category, msg, args...)
}

func logAt(level slog.Level, category, msg string, args ...any) {
	mu.Lock()
	l := logger
	on := enabled
	mu.Unlock()

	if !on || l == nil {
		return
	}
	l.Log(context.Background(), level, msg, append([]any{"category", category}, args...)...)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, msg string, args ...any) {
	mu.Lock()
	key := category + msg
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n <= 1 || count%n == 0 {
		logAt(LevelTrace, category, msg, append(args, "every", n, "count", count)...)
	}
}
