package controller

import (
	"context"
	"errors"

	"github.com/goliatone/go-widgetlist/internal/logx"
)

var (
	// ErrNoList is returned when an operation needs a list id and none is set.
	ErrNoList = errors.New("controller: list id is required")
	// ErrNoFetch is returned by New when no fetch function was configured.
	ErrNoFetch = errors.New("controller: fetch function is required")
	// ErrNoSession is returned when a form operation runs while no form is open.
	ErrNoSession = errors.New("controller: no form session is open")
	// ErrSchemaPending is returned when a form is open but its schema has not
	// been loaded.
	ErrSchemaPending = errors.New("controller: form schema not loaded")
)

// ErrorHandler receives every network-originated failure exactly once.
type ErrorHandler func(ctx context.Context, err error)

// LogErrors is the default ErrorHandler. It logs through the context logger.
func LogErrors(ctx context.Context, err error) {
	logx.Ctx(ctx).With("err", err).Error("widget list request failed")
}
