package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a record's context, for
// example the request id stored by requestid.Middleware.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// contextHandler appends extracted context attributes to every record.
type contextHandler struct {
	slog.Handler
	extractors []ContextExtractor
}

// withContextAttrs wraps next when at least one non-nil extractor is given.
func withContextAttrs(next slog.Handler, extractors []ContextExtractor) slog.Handler {
	var kept []ContextExtractor
	for _, ex := range extractors {
		if ex != nil {
			kept = append(kept, ex)
		}
	}
	if len(kept) == 0 {
		return next
	}
	return &contextHandler{Handler: next, extractors: kept}
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		for _, ex := range h.extractors {
			if attr, ok := ex(ctx); ok {
				rec.AddAttrs(attr)
			}
		}
	}
	return h.Handler.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), extractors: h.extractors}
}
