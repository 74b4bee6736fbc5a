// Package logger provides the leveled, structured logger used across vaultkit.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/term"
)

// Logger is the structured logger components receive through options. Name it per component,
// e.g. lggr.Named("provider"), and log with key/value pairs.
type Logger interface {
	Name() string
	Named(name string) Logger
	With(keysAndValues ...any) Logger

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	// Sync flushes any buffered log entries.
	Sync() error
}

// NewConsole returns the CLI logger: human readable lines on stderr at level, with colored
// levels when stderr is a terminal.
func NewConsole(level zapcore.Level) Logger {
	color := term.IsTerminal(int(os.Stderr.Fd()))

	return newConsole(zapcore.Lock(os.Stderr), level, color)
}

func newConsole(w io.Writer, level zapcore.Level, color bool) Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.CallerKey = ""
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)

	return &logger{zap.New(core).Sugar()}
}

// ParseLevel converts a textual level ("debug", "info", "warn", "error") to a zap level.
// An empty string yields info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return lvl, nil
}

// Test returns a debug Logger writing to tb.
func Test(tb testing.TB) Logger {
	tb.Helper()

	return &logger{zaptest.NewLogger(tb).Sugar()}
}

// TestObserved returns a Logger writing to tb whose entries at lvl and above are also captured.
func TestObserved(tb testing.TB, lvl zapcore.Level) (Logger, *observer.ObservedLogs) {
	tb.Helper()
	core, logs := observer.New(lvl)
	tee := zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, core)
	})

	return &logger{zaptest.NewLogger(tb, zaptest.WrapOptions(tee)).Sugar()}, logs
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &logger{zap.NewNop().Sugar()}
}

type logger struct {
	*zap.SugaredLogger
}

func (l *logger) Name() string {
	return l.Desugar().Name()
}

func (l *logger) Named(name string) Logger {
	return &logger{l.SugaredLogger.Named(name)}
}

func (l *logger) With(keysAndValues ...any) Logger {
	return &logger{l.SugaredLogger.With(keysAndValues...)}
}
