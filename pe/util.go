package pe

import (
	"context"
	"log/slog"
)

// LevelTrace is the level of the per-edge trace records. It sits just above
// Info so that a handler set to LevelTrace drops ordinary info logs.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace emits a key/value trace record through the default slog logger.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// LogState records the state of a PE at debug level.
func LogState(p *PE) {
	slog.Debug("PEState",
		"Name", p.name,
		"Acc", p.state.Acc,
		"Right", p.state.Right,
		"Bottom", p.state.Bottom,
	)
}
