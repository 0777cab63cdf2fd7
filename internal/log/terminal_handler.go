package log

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// shortIDLen is how much of a correlation ID the terminal tag shows.
const shortIDLen = 8

// TerminalHandler writes one coloured line per record:
//
//	15:04:05.000 INF [3f2a9c1e] translation complete mode=nt-to-nd cached=true
//
// A top-level correlation_id attribute becomes the bracketed tag instead of a
// key=value pair. Attributes added through WithAttrs are rendered once and
// reused for every record.
type TerminalHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	prefix string
	pre    []byte
	corrID string
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	h := &TerminalHandler{w: w, mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	corr := h.corrID
	var body []byte
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == string(CorrelationIDKey) {
			corr = a.Value.String()
			return true
		}
		body = appendAttr(body, h.prefix, a)
		return true
	})

	line := make([]byte, 0, 128+len(h.pre)+len(body))
	line = append(line, ansiDim...)
	line = ts.AppendFormat(line, "15:04:05.000")
	line = append(line, ansiReset...)

	color, label := levelStyle(r.Level)
	line = append(line, ' ')
	line = append(line, color...)
	line = append(line, label...)
	line = append(line, ansiReset...)

	if corr != "" {
		line = append(line, ' ')
		line = append(line, ansiDim...)
		line = append(line, '[')
		line = append(line, shortID(corr)...)
		line = append(line, ']')
		line = append(line, ansiReset...)
	}

	line = append(line, ' ')
	line = append(line, ansiBold...)
	line = append(line, r.Message...)
	line = append(line, ansiReset...)
	line = append(line, h.pre...)
	line = append(line, body...)
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

// WithAttrs implements slog.Handler.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.pre = append([]byte(nil), h.pre...)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == string(CorrelationIDKey) {
			next.corrID = a.Value.String()
			continue
		}
		next.pre = appendAttr(next.pre, h.prefix, a)
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return ansiRed, "ERR"
	case level >= slog.LevelWarn:
		return ansiYellow, "WRN"
	case level >= slog.LevelInfo:
		return ansiGreen, "INF"
	default:
		return ansiCyan, "DBG"
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// appendAttr renders " prefix.key=value", flattening groups into dotted keys.
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, inner, ga)
		}
		return buf
	}

	a = redactAttr(nil, a)

	buf = append(buf, ' ')
	buf = append(buf, ansiDim...)
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	buf = append(buf, ansiReset...)

	value := a.Value.String()
	if needsQuote(value) {
		value = strconv.Quote(value)
	}
	if a.Key == "error" {
		buf = append(buf, ansiRed...)
		buf = append(buf, value...)
		return append(buf, ansiReset...)
	}
	return append(buf, value...)
}

func needsQuote(s string) bool {
	return s == "" || strings.ContainsAny(s, " \t\n\"\\=")
}
