// Package diag is the analyses' shared diagnostic-logging collaborator.
// It follows the "optional logger, checked before every call" shape
// common across the call-graph/pointer literature's reference
// implementations, but backs it with structured log/slog records: the
// message is formatted printf-style from its arguments and the
// component is attached as a separate "component" field. See DESIGN.md
// for why log/slog (stdlib) was chosen over a third-party logging
// library here.
package diag

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger is the narrow logging type every analysis accepts; a nil Logger
// means "do not log".
type Logger struct {
	h *slog.Logger
}

// NewLogger wraps h. Passing nil h yields a Logger whose methods are
// no-ops, so call sites need no nil Logger nil-check of their own.
func NewLogger(h *slog.Logger) *Logger { return &Logger{h: h} }

// Discard is the zero-cost default used when no logging is requested.
var Discard = &Logger{}

func (l *Logger) Debugf(component string, msg string, args ...any) {
	if l == nil || l.h == nil {
		return
	}
	l.h.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(msg, args...), "component", component)
}

func (l *Logger) Infof(component string, msg string, args ...any) {
	if l == nil || l.h == nil {
		return
	}
	l.h.Log(context.Background(), slog.LevelInfo, fmt.Sprintf(msg, args...), "component", component)
}

func (l *Logger) Warnf(component string, msg string, args ...any) {
	if l == nil || l.h == nil {
		return
	}
	l.h.Log(context.Background(), slog.LevelWarn, fmt.Sprintf(msg, args...), "component", component)
}
