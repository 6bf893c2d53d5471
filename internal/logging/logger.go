// Package logging defines the structured-logging interface used across the
// service and its slog and zap backends.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "token rejected", "method", method, "reason", "not_found")
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

type ctxArgsKey struct{}

// ContextWith returns a copy of ctx carrying key–value pairs that every
// backend adds to records logged with it, e.g. a request id set once at the
// transport boundary.
func ContextWith(ctx context.Context, args ...any) context.Context {
	base := contextArgs(ctx)
	return context.WithValue(ctx, ctxArgsKey{}, append(base[:len(base):len(base)], args...))
}

func contextArgs(ctx context.Context) []any {
	args, _ := ctx.Value(ctxArgsKey{}).([]any)
	return args
}

func withContextArgs(ctx context.Context, args []any) []any {
	base := contextArgs(ctx)
	if len(base) == 0 {
		return args
	}
	out := make([]any, 0, len(base)+len(args))
	return append(append(out, base...), args...)
}

// New builds a JSON logger writing to w using the named backend.
func New(backend string, w io.Writer) (Logger, error) {
	switch backend {
	case "", BackendSlog:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil))), nil
	case BackendZap:
		return NewZapLogger(newZapJSON(w)), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
