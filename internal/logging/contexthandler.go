package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns attributes sampled at log time, such as the
// pipeline counts of the status monitor.
type ContextProvider func() []slog.Attr

// ContextHandler appends the provider's attributes to every record at or
// above minLevel. Debug records from the per-event dispatch path stay
// below it so they do not sample the registry on each line.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
	minLevel slog.Level
}

// NewContextHandler wraps inner. A nil provider adds nothing.
func NewContextHandler(inner slog.Handler, provider ContextProvider, minLevel slog.Level) *ContextHandler {
	return &ContextHandler{inner: inner, provider: provider, minLevel: minLevel}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil && r.Level >= h.minLevel {
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.wrap(h.inner.WithAttrs(attrs))
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.wrap(h.inner.WithGroup(name))
}

func (h *ContextHandler) wrap(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner, provider: h.provider, minLevel: h.minLevel}
}
