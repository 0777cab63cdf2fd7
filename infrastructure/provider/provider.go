// Package provider adapts hosted language models to a single completion
// interface used by the translation service.
package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// Common errors.
var (
	// ErrNoChoices indicates the provider answered without any generated text.
	ErrNoChoices = errors.New("no choices in response")

	// ErrRetriesExhausted indicates every retry attempt failed with a retryable error.
	ErrRetriesExhausted = errors.New("max retries exceeded")

	// ErrMissingAPIKey indicates the provider was configured without credentials.
	ErrMissingAPIKey = errors.New("api key is required")
)

// CompletionRequest is a single-prompt text completion request.
type CompletionRequest struct {
	prompt           string
	maxTokens        int
	temperature      float64
	frequencyPenalty float64
}

// NewCompletionRequest creates a request for prompt using provider defaults.
func NewCompletionRequest(prompt string) CompletionRequest {
	return CompletionRequest{prompt: prompt}
}

// WithMaxTokens returns a new request with the specified max tokens.
func (r CompletionRequest) WithMaxTokens(n int) CompletionRequest {
	r.maxTokens = n
	return r
}

// WithTemperature returns a new request with the specified temperature.
func (r CompletionRequest) WithTemperature(t float64) CompletionRequest {
	r.temperature = t
	return r
}

// WithFrequencyPenalty returns a new request with the specified frequency penalty.
func (r CompletionRequest) WithFrequencyPenalty(p float64) CompletionRequest {
	r.frequencyPenalty = p
	return r
}

// Prompt returns the prompt text.
func (r CompletionRequest) Prompt() string { return r.prompt }

// MaxTokens returns the max tokens setting.
func (r CompletionRequest) MaxTokens() int { return r.maxTokens }

// Temperature returns the temperature setting.
func (r CompletionRequest) Temperature() float64 { return r.temperature }

// FrequencyPenalty returns the frequency penalty setting.
func (r CompletionRequest) FrequencyPenalty() float64 { return r.frequencyPenalty }

// CompletionResponse is the generated text and its accounting.
type CompletionResponse struct {
	content      string
	finishReason string
	usage        Usage
}

// NewCompletionResponse creates a new CompletionResponse.
func NewCompletionResponse(content, finishReason string, usage Usage) CompletionResponse {
	return CompletionResponse{
		content:      content,
		finishReason: finishReason,
		usage:        usage,
	}
}

// Content returns the generated text.
func (r CompletionResponse) Content() string { return r.content }

// FinishReason returns why generation stopped.
func (r CompletionResponse) FinishReason() string { return r.finishReason }

// Usage returns token usage information.
func (r CompletionResponse) Usage() Usage { return r.usage }

// Usage represents token usage information.
type Usage struct {
	promptTokens     int
	completionTokens int
	totalTokens      int
}

// NewUsage creates a new Usage.
func NewUsage(prompt, completion, total int) Usage {
	return Usage{
		promptTokens:     prompt,
		completionTokens: completion,
		totalTokens:      total,
	}
}

// PromptTokens returns the number of prompt tokens.
func (u Usage) PromptTokens() int { return u.promptTokens }

// CompletionTokens returns the number of completion tokens.
func (u Usage) CompletionTokens() int { return u.completionTokens }

// TotalTokens returns the total number of tokens.
func (u Usage) TotalTokens() int { return u.totalTokens }

// TextGenerator generates text completions.
type TextGenerator interface {
	// Complete generates a completion for the request prompt.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// Provider is a named, closable TextGenerator.
type Provider interface {
	TextGenerator

	// Name identifies the backend, e.g. "openai".
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// ProviderError wraps provider errors with additional context.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewProviderError creates a new ProviderError.
func NewProviderError(operation string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.cause != nil {
		return e.operation + ": " + e.message + ": " + e.cause.Error()
	}
	return e.operation + ": " + e.message
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.cause
}

// Operation returns the operation that failed.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the HTTP status code if available.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Message returns the error message.
func (e *ProviderError) Message() string { return e.message }

// IsRateLimited returns true if the error is due to rate limiting.
func (e *ProviderError) IsRateLimited() bool {
	return e.statusCode == http.StatusTooManyRequests
}

// FailureKind groups completion failures for logging and status decisions.
type FailureKind int

// FailureKind values.
const (
	FailureNone FailureKind = iota
	FailureServiceUnavailable
	FailureNoChoices
	FailureUnknown
)

// String returns the kind as a log-friendly token.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureServiceUnavailable:
		return "service_unavailable"
	case FailureNoChoices:
		return "no_choices"
	default:
		return "unknown"
	}
}

// Classify maps a provider error onto a FailureKind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, ErrNoChoices) {
		return FailureNoChoices
	}
	if errors.Is(err, ErrRetriesExhausted) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return FailureServiceUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureServiceUnavailable
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) && retryableStatus(provErr.StatusCode()) {
		return FailureServiceUnavailable
	}
	return FailureUnknown
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
