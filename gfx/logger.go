package gfx

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every log record. Enabled reports false so callers
// skip attribute formatting entirely when logging is off.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger used by this package and its collaborators.
// By default no output is produced. Pass nil to restore the silent default.
//
// Levels used:
//   - [slog.LevelDebug]: buffer growth, shader cache fills, flush sizes
//   - [slog.LevelInfo]: context creation (GL version, renderer string)
//   - [slog.LevelWarn]: context invalidation, release of live resources at shutdown
//
// Safe for concurrent use; the pointer is swapped atomically.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger. Collaborating packages
// (texture, text, engine) call this so one configuration covers the
// whole module.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
