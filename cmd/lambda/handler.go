package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/api/middleware"
	v1 "github.com/helixml/plainspeak/infrastructure/api/v1"
	"github.com/helixml/plainspeak/infrastructure/api/v1/dto"
	"github.com/helixml/plainspeak/internal/log"
)

// WarmupSource identifies scheduled keep-warm events sent as
// {"source":"warmup"}. {"warmup":true} is accepted too.
const WarmupSource = "warmup"

// Handler turns API Gateway proxy events into translations.
type Handler struct {
	client *plainspeak.Client
	auth   middleware.AuthConfig
	logger *slog.Logger
}

// NewHandler creates a Handler backed by client.
func NewHandler(client *plainspeak.Client) *Handler {
	return &Handler{
		client: client,
		auth:   middleware.NewAuthConfigWithKeys(client.APIKeys()),
		logger: client.Logger(),
	}
}

// Handle accepts API Gateway proxy events and warm-up pings.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	if isWarmup(event) {
		return jsonResponse(http.StatusOK, "", dto.HealthResponse{Status: "warm"}), nil
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return h.errorResponse(ctx, "", middleware.NewAPIError(http.StatusBadRequest, "The request could not be read. Please try again.", err)), nil
	}
	return h.HandleProxy(ctx, req), nil
}

// HandleProxy serves one proxy request. GET answers a health check and POST
// translates a form or JSON body with the same fields as the HTTP API.
func (h *Handler) HandleProxy(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	id := header(req.Headers, middleware.CorrelationIDHeader)
	if id == "" || len(id) > 128 {
		id = req.RequestContext.RequestID
	}
	ctx = log.WithCorrelationID(ctx, id)

	switch req.HTTPMethod {
	case http.MethodGet, http.MethodHead:
		return jsonResponse(http.StatusOK, id, dto.HealthResponse{Status: "healthy"})
	case http.MethodPost:
	default:
		return h.errorResponse(ctx, id, middleware.NewAPIError(http.StatusMethodNotAllowed, "Method not allowed.", nil))
	}

	if h.auth.Enabled() && !h.auth.Valid(header(req.Headers, middleware.APIKeyHeader)) {
		return h.errorResponse(ctx, id, middleware.NewAuthenticationError("invalid or missing api key"))
	}

	fields, err := parseBody(req)
	if err != nil {
		return h.errorResponse(ctx, id, err)
	}

	result, err := h.client.Translate(ctx, fields)
	if err != nil {
		return h.errorResponse(ctx, id, err)
	}
	return jsonResponse(http.StatusOK, id, v1.NewTranslateResponse(result))
}

func (h *Handler) errorResponse(ctx context.Context, id string, err error) events.APIGatewayProxyResponse {
	if errors.Is(err, plainspeak.ErrClientClosed) {
		err = middleware.NewAPIError(http.StatusServiceUnavailable, translation.UserMessage(translation.ErrServiceUnavailable), err)
	}
	status, message := middleware.StatusFor(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "request error",
		slog.String("correlation_id", id),
		slog.Int("status", status),
		slog.Any("error", err),
	)

	return jsonResponse(status, id, middleware.ErrorResponse{Error: message})
}

func parseBody(req events.APIGatewayProxyRequest) (translation.Fields, error) {
	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return translation.Fields{}, unreadable(err)
		}
		body = string(decoded)
	}

	mediaType, _, _ := mime.ParseMediaType(header(req.Headers, "Content-Type"))
	if mediaType == "application/json" || (mediaType == "" && strings.HasPrefix(strings.TrimSpace(body), "{")) {
		var in dto.TranslateRequest
		if err := json.Unmarshal([]byte(body), &in); err != nil {
			return translation.Fields{}, unreadable(err)
		}
		return translation.Fields{
			Text:           in.InputText,
			Mode:           in.Mode,
			Tone:           in.Tone,
			ExplainContext: in.ExplainContext,
		}, nil
	}

	values, err := url.ParseQuery(body)
	if err != nil {
		return translation.Fields{}, unreadable(err)
	}
	return translation.Fields{
		Text:           values.Get(v1.FieldInputText),
		Mode:           values.Get(v1.FieldMode),
		Tone:           values.Get(v1.FieldTone),
		ExplainContext: values.Get(v1.FieldExplainContext),
	}, nil
}

func unreadable(err error) error {
	return middleware.NewAPIError(http.StatusBadRequest, "The request could not be read. Please try again.", err)
}

// header looks a header up case-insensitively; API Gateway preserves the
// caller's casing.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func isWarmup(event json.RawMessage) bool {
	var ping struct {
		Source string `json:"source"`
		Warmup bool   `json:"warmup"`
	}
	if err := json.Unmarshal(event, &ping); err != nil {
		return false
	}
	return ping.Warmup || ping.Source == WarmupSource
}

func jsonResponse(status int, correlationID string, body any) events.APIGatewayProxyResponse {
	headers := map[string]string{"Content-Type": "application/json"}
	if correlationID != "" {
		headers[middleware.CorrelationIDHeader] = correlationID
	}

	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"error":"Something went wrong. Please try again."}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(raw),
	}
}
