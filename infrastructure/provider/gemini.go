package provider

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey        string
	Model         string
	Timeout       time.Duration
	MaxRetries    int // 0 disables retries, negative uses DefaultMaxRetries
	InitialDelay  time.Duration
	BackoffFactor float64
}

// GeminiProvider implements text generation using Google Gemini.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	retry   backoff
}

// NewGeminiProvider creates a Gemini provider. The client holds a connection
// pool and must be released with Close.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, opts ...option.ClientOption) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, NewProviderError("new_client", 0, "gemini", ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, NewProviderError("new_client", 0, "gemini", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &GeminiProvider{
		client:  client,
		model:   model,
		timeout: timeout,
		retry:   newBackoff(cfg.MaxRetries, cfg.InitialDelay, cfg.BackoffFactor),
	}, nil
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return "gemini" }

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Complete generates a completion. Gemini has no frequency penalty, so that
// setting is ignored.
func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	m := p.client.GenerativeModel(p.model)
	if t := req.Temperature(); t > 0 {
		m.SetTemperature(float32(t))
	}
	if n := req.MaxTokens(); n > 0 {
		m.SetMaxOutputTokens(int32(n))
	}

	var resp *genai.GenerateContentResponse
	err := p.retry.do(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		var err error
		resp, err = m.GenerateContent(callCtx, genai.Text(req.Prompt()))
		return err
	}, isGeminiRetryable)
	if err != nil {
		return CompletionResponse{}, wrapGeminiError("generate_content", err)
	}

	return geminiCompletion(resp)
}

// geminiCompletion extracts the first candidate's text parts.
func geminiCompletion(resp *genai.GenerateContentResponse) (CompletionResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return CompletionResponse{}, NewProviderError("generate_content", 0, "empty response", ErrNoChoices)
	}

	candidate := resp.Candidates[0]
	text := GeminiText(resp)
	if text == "" {
		return CompletionResponse{}, NewProviderError("generate_content", 0, "empty response", ErrNoChoices)
	}

	var usage Usage
	if md := resp.UsageMetadata; md != nil {
		usage = NewUsage(int(md.PromptTokenCount), int(md.CandidatesTokenCount), int(md.TotalTokenCount))
	}
	return NewCompletionResponse(text, candidate.FinishReason.String(), usage), nil
}

// GeminiText concatenates the text parts of the first candidate that has content.
func GeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func isGeminiRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return retryableStatus(gErr.Code)
	}
	return false
}

func wrapGeminiError(operation string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return NewProviderError(operation, gErr.Code, gErr.Message, err)
	}
	return NewProviderError(operation, 0, "request failed", err)
}

var _ Provider = (*GeminiProvider)(nil)
