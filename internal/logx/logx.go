package logx

import (
	"context"

	"pkt.systems/pslog"
)

type contextKey int

const listKey contextKey = iota

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithList annotates the logger with the list id unless the context already
// carries the same marker.
func WithList(ctx context.Context, listID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if listID != "" {
		if current, ok := ctx.Value(listKey).(string); ok && current == listID {
			return log
		}
		log = log.With("list", listID)
	}
	return log
}

// WithWidget annotates the logger with a widget id when available.
func WithWidget(log pslog.Logger, widgetID string) pslog.Logger {
	if widgetID != "" {
		log = log.With("widget", widgetID)
	}
	return log
}

// WithOperation annotates the logger with a REST operation name.
func WithOperation(log pslog.Logger, op string) pslog.Logger {
	if op != "" {
		log = log.With("op", op)
	}
	return log
}

// ContextWithList stores the list marker on the context for log de-duplication.
func ContextWithList(ctx context.Context, listID string) context.Context {
	if ctx == nil || listID == "" {
		return ctx
	}
	return context.WithValue(ctx, listKey, listID)
}

// ContextWithListLogger attaches the logger, annotated with the list id, and
// the list marker to the context.
func ContextWithListLogger(ctx context.Context, log pslog.Logger, listID string) context.Context {
	if listID != "" {
		log = log.With("list", listID)
	}
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithList(ctx, listID)
}
