// Package log provides the structured, leveled logging used throughout
// this module, in the spirit of go-ethereum's log package: callers log
// key/value pairs against a message, e.g.
//
//	log.Info("increase maxBlockCanSeal", "attempt", id, "newCap", cap)
package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Level mirrors the handful of levels the rest of the module cares about.
type Level = slog.Level

const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger is a context-carrying structured logger. The zero value is not
// usable; construct one with New or use the package-level root logger.
type Logger struct {
	inner *slog.Logger
}

// New returns a Logger that prefixes every record with ctx, a sequence
// of alternating keys and values, e.g. New("component", "sealer").
func New(ctx ...any) Logger {
	return Logger{inner: root.Load().(*slog.Logger).With(ctx...)}
}

func (l Logger) With(ctx ...any) Logger {
	return Logger{inner: l.inner.With(ctx...)}
}

func (l Logger) Trace(msg string, ctx ...any) { l.inner.Log(context.Background(), LevelTrace, msg, ctx...) }
func (l Logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l Logger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l Logger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l Logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }

var root atomic.Value

func init() {
	root.Store(slog.New(NewTerminalHandler(os.Stderr, LevelInfo)))
}

// SetDefault replaces the root logger. Package-level functions use the
// new root from the next call on, as do Loggers created after
// SetDefault; a Logger created before the call keeps the handler it
// already captured.
func SetDefault(l *slog.Logger) { root.Store(l) }

// Root returns the current root *slog.Logger, for callers that want to
// compose it into their own handler chain (e.g. adding a rotating file
// handler alongside it with NewMultiHandler).
func Root() *slog.Logger { return root.Load().(*slog.Logger) }

func Trace(msg string, ctx ...any) { root.Load().(*slog.Logger).Log(context.Background(), LevelTrace, msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Load().(*slog.Logger).Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Load().(*slog.Logger).Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Load().(*slog.Logger).Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Load().(*slog.Logger).Error(msg, ctx...) }
