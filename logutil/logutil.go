// logutil.go - Logger-Setup fuer slog
//
// Enthaelt:
// - NewLogger: Text-Handler mit Source-Info und TRACE-Level
// - LevelTrace, Trace, TraceContext: zusaetzliches Log-Level unter DEBUG
package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
)

// LevelTrace liegt unter slog.LevelDebug und wird mit BPE_DEBUG=2 aktiviert
const LevelTrace slog.Level = -8

// NewLogger erstellt einen Text-Logger mit gekuerztem Source-Pfad
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				switch attr.Value.Any().(slog.Level) {
				case LevelTrace:
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}

// Trace loggt auf TRACE-Level mit dem Default-Logger
func Trace(msg string, args ...any) {
	TraceContext(context.Background(), msg, args...)
}

// TraceContext loggt auf TRACE-Level mit Context
func TraceContext(ctx context.Context, msg string, args ...any) {
	if logger := slog.Default(); logger.Enabled(ctx, LevelTrace) {
		logger.Log(ctx, LevelTrace, msg, args...)
	}
}
