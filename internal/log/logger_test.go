package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/plainspeak/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestNew_JSONLevels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
	}{
		{"DEBUG", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"warning", []string{"WARN", "ERROR"}},
		{"ERROR", []string{"ERROR"}},
		{"nonsense", []string{"INFO", "WARN", "ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, config.LogFormatJSON, tt.level)

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			var got []string
			for _, rec := range decodeLines(t, &buf) {
				got = append(got, rec["level"].(string))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_PrettyFormatIsNotJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, config.LogFormatPretty, "INFO").Info("ready", "port", 8080)

	out := buf.String()
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "port=")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))))
}

func TestNew_ContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "INFO")

	ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-123"), "req-456")
	logger.With("component", "translator").InfoContext(ctx, "translation completed")
	logger.InfoContext(context.Background(), "no ids")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 2)

	assert.Equal(t, "corr-123", recs[0]["correlation_id"])
	assert.Equal(t, "req-456", recs[0]["request_id"])
	assert.Equal(t, "translator", recs[0]["component"])

	assert.NotContains(t, recs[1], "correlation_id")
	assert.NotContains(t, recs[1], "request_id")
}

func TestNew_ExplicitCorrelationIDNotDuplicated(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "corr-1")
	logger.InfoContext(ctx, "request completed", "correlation_id", "corr-1")

	assert.Equal(t, 1, strings.Count(buf.String(), `"correlation_id"`), buf.String())
}

func TestNew_RedactsSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatJSON, "INFO")

	logger.Info("translate", "text", "my boss said we should circle back", "api_key", "sk-123", "text_len", 34)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, Redacted, recs[0]["text"])
	assert.Equal(t, Redacted, recs[0]["api_key"])
	assert.InDelta(t, 34, recs[0]["text_len"], 0)
	assert.NotContains(t, buf.String(), "circle back")
}

func TestNew_RedactsInPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LogFormatPretty, "INFO")

	logger.With("prompt", "secret prompt").Info("call", "Authorization", "Bearer abc")

	out := buf.String()
	assert.NotContains(t, out, "secret prompt")
	assert.NotContains(t, out, "Bearer abc")
	assert.Contains(t, out, Redacted)
}

func TestConfigure_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)

	logger := Configure(cfg)
	require.NotNil(t, logger)
	assert.Same(t, logger, slog.Default())
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestContextIDs_NotSet(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationID(ctx))
	assert.Empty(t, RequestID(ctx))

	ctx = WithCorrelationID(ctx, "c")
	ctx = WithRequestID(ctx, "r")
	assert.Equal(t, "c", CorrelationID(ctx))
	assert.Equal(t, "r", RequestID(ctx))
}

func TestIsSensitive(t *testing.T) {
	for _, key := range []string{"text", "INPUT_TEXT", "api_key", "X-API-KEY"} {
		assert.True(t, IsSensitive(key), key)
	}
	for _, key := range []string{"text_len", "cache_key_prefix", "mode", "status"} {
		assert.False(t, IsSensitive(key), key)
	}
}
