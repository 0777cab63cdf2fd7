package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"nil", nil, FailureNone},
		{"no choices", NewProviderError("completion", 0, "empty response", ErrNoChoices), FailureNoChoices},
		{"retries exhausted", fmt.Errorf("%w: %w", ErrRetriesExhausted, errors.New("x")), FailureServiceUnavailable},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), FailureServiceUnavailable},
		{"rate limited", NewProviderError("completion", http.StatusTooManyRequests, "slow down", nil), FailureServiceUnavailable},
		{"bad gateway", NewProviderError("completion", http.StatusBadGateway, "bad gateway", nil), FailureServiceUnavailable},
		{"bad request", NewProviderError("completion", http.StatusBadRequest, "invalid", nil), FailureUnknown},
		{"plain", errors.New("boom"), FailureUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFailureKind_String(t *testing.T) {
	assert.Equal(t, "service_unavailable", FailureServiceUnavailable.String())
	assert.Equal(t, "no_choices", FailureNoChoices.String())
	assert.Equal(t, "unknown", FailureUnknown.String())
}

func TestProviderError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewProviderError("chat_completion", 0, "request failed", cause)
	assert.Equal(t, "chat_completion: request failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.IsRateLimited())
}

func TestCompletionRequest_Immutable(t *testing.T) {
	base := NewCompletionRequest("p")
	tuned := base.WithMaxTokens(10).WithTemperature(0.2).WithFrequencyPenalty(0.1)

	assert.Equal(t, 0, base.MaxTokens())
	assert.Equal(t, 10, tuned.MaxTokens())
	assert.InDelta(t, 0.2, tuned.Temperature(), 1e-9)
	assert.InDelta(t, 0.1, tuned.FrequencyPenalty(), 1e-9)
	assert.Equal(t, "p", tuned.Prompt())
}

func TestBackoff_StopsOnNonRetryable(t *testing.T) {
	b := newBackoff(5, time.Millisecond, 2)
	calls := 0
	err := b.do(context.Background(), func() error {
		calls++
		return errors.New("fatal")
	}, func(error) bool { return false })

	assert.EqualError(t, err, "fatal")
	assert.Equal(t, 1, calls)
}

func TestBackoff_Defaults(t *testing.T) {
	b := newBackoff(-1, 0, 0)
	assert.Equal(t, DefaultMaxRetries, b.maxRetries)
	assert.Equal(t, DefaultInitialDelay, b.initialDelay)
	assert.InDelta(t, DefaultBackoffFactor, b.factor, 1e-9)
}

func TestBackoff_ZeroRetriesMakesOneAttempt(t *testing.T) {
	b := newBackoff(0, time.Millisecond, 2)
	assert.Equal(t, 0, b.maxRetries)

	calls := 0
	err := b.do(context.Background(), func() error {
		calls++
		return errors.New("overloaded")
	}, func(error) bool { return true })

	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, 1, calls)
}
