package log

import (
	"context"
	"log/slog"
)

// contextHandler adds the correlation and request IDs carried by the context
// to each record, unless the record already has them.
type contextHandler struct {
	slog.Handler
}

// Handle implements slog.Handler.
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		addIfMissing(&r, string(CorrelationIDKey), CorrelationID(ctx))
		addIfMissing(&r, string(RequestIDKey), RequestID(ctx))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

func addIfMissing(r *slog.Record, key, value string) {
	if value == "" {
		return
	}
	present := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			present = true
			return false
		}
		return true
	})
	if !present {
		r.AddAttrs(slog.String(key, value))
	}
}
