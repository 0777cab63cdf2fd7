package log

import (
	"log/slog"
	"strings"
)

// Redacted replaces the value of any sensitive attribute.
const Redacted = "[redacted]"

// sensitiveKeys name attributes whose values are never written. User text
// is logged by length only; credentials not at all.
var sensitiveKeys = map[string]struct{}{
	"text":          {},
	"input_text":    {},
	"phrase":        {},
	"prompt":        {},
	"completion":    {},
	"result":        {},
	"api_key":       {},
	"apikey":        {},
	"authorization": {},
	"x-api-key":     {},
	"password":      {},
}

// IsSensitive reports whether an attribute key is redacted.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}

// redactAttr is a slog ReplaceAttr hook.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if IsSensitive(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	return a
}
