package tileterm

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Enabled reports false, so log calls return
// before any attribute is built.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var (
	silent = slog.New(discard{})
	logger atomic.Pointer[slog.Logger]
)

// SetLogger routes the diagnostics of tileterm and its backends to l.
// The package is silent until SetLogger is called; nil silences it again.
// It may be called while other goroutines are logging.
//
// Records by level:
//   - [slog.LevelDebug]: frame statistics, layer growth, atlas decoding
//   - [slog.LevelInfo]: backend selection, atlas loading, GPU adapter
//   - [slog.LevelWarn]: errors from releasing backend resources
//
// A command-line program typically does:
//
//	tileterm.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger set by SetLogger, or a silent one.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return silent
}
