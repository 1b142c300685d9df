package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context, reporting whether
// the context carried it.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextValue builds an extractor for a plain context value stored under
// key, logged under the given attribute name.
func ContextValue(name string, key any) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := ctx.Value(key); v != nil {
			return slog.Any(name, v), true
		}
		return slog.Attr{}, false
	}
}

// decoratedHandler runs the extractors on each record before delegating.
// Extraction happens per log call so request-scoped values stay fresh.
type decoratedHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func decorate(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	if len(extractors) == 0 {
		return next
	}
	return &decoratedHandler{next: next, extractors: extractors}
}

func (h *decoratedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *decoratedHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *decoratedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &decoratedHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *decoratedHandler) WithGroup(name string) slog.Handler {
	return &decoratedHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
