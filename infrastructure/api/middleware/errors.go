package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/helixml/plainspeak/domain/translation"
)

// ErrAuthentication is matched by every AuthenticationError.
var ErrAuthentication = errors.New("authentication failed")

// APIError carries the HTTP status and user-facing message chosen by the
// handler that raised it. StatusFor passes both through unchanged.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError. cause is logged but never sent.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

func (e *APIError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%d %s", e.code, e.message)
	}
	return fmt.Sprintf("%d %s: %v", e.code, e.message, e.cause)
}

func (e *APIError) Unwrap() error { return e.cause }

// Code returns the HTTP status.
func (e *APIError) Code() int { return e.code }

// Message returns the user-facing message.
func (e *APIError) Message() string { return e.message }

// AuthenticationError is a rejected or missing API key.
type AuthenticationError struct {
	reason string
}

// NewAuthenticationError creates an AuthenticationError.
func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{reason: reason}
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.reason
}

func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an error to its HTTP status and user-facing message.
//
//	input errors            400
//	authentication          401
//	*APIError               its own code
//	degenerate output       422
//	rate limited            429
//	upstream unavailable    503
//	anything else           500
func StatusFor(err error) (int, string) {
	var apiErr *APIError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code(), apiErr.Message()
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized, "Invalid or missing API key."
	case translation.IsInputError(err):
		return http.StatusBadRequest, translation.UserMessage(err)
	case translation.IsRejection(err):
		return http.StatusUnprocessableEntity, translation.UserMessage(err)
	case errors.Is(err, translation.ErrRateLimited):
		return http.StatusTooManyRequests, translation.UserMessage(err)
	case errors.Is(err, translation.ErrServiceUnavailable),
		errors.Is(err, translation.ErrExtractionUnavailable):
		return http.StatusServiceUnavailable, translation.UserMessage(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, translation.UserMessage(translation.ErrServiceUnavailable)
	default:
		return http.StatusInternalServerError, translation.UserMessage(err)
	}
}

// WriteError writes {"error": message} with the status StatusFor chooses.
// Only the user-facing message reaches the client; the error itself is logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, message := StatusFor(err)

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			slog.String("correlation_id", GetCorrelationID(r.Context())),
			slog.Int("status", status),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
