package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// APIStyle selects which OpenAI endpoint serves completions.
type APIStyle string

// APIStyle values.
const (
	APIStyleChat        APIStyle = "chat"
	APIStyleCompletions APIStyle = "completions"
)

// ParseAPIStyle maps a configuration token to an APIStyle, defaulting to chat.
func ParseAPIStyle(s string) APIStyle {
	if APIStyle(strings.ToLower(strings.TrimSpace(s))) == APIStyleCompletions {
		return APIStyleCompletions
	}
	return APIStyleChat
}

// Default OpenAI models per API style.
const (
	DefaultOpenAIChatModel        = "gpt-4o-mini"
	DefaultOpenAICompletionsModel = "gpt-3.5-turbo-instruct"
)

// OpenAIProvider implements text generation against any OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client   *openai.Client
	model    string
	apiStyle APIStyle
	retry    backoff
}

// OpenAIConfig holds configuration for OpenAI provider.
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	APIStyle      APIStyle
	Timeout       time.Duration
	MaxRetries    int // 0 disables retries, negative uses DefaultMaxRetries
	InitialDelay  time.Duration
	BackoffFactor float64
}

// NewOpenAIProvider creates a provider from configuration.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)

	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	style := cfg.APIStyle
	if style == "" {
		style = APIStyleChat
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIChatModel
		if style == APIStyleCompletions {
			model = DefaultOpenAICompletionsModel
		}
	}

	return &OpenAIProvider{
		client:   openai.NewClientWithConfig(config),
		model:    model,
		apiStyle: style,
		retry:    newBackoff(cfg.MaxRetries, cfg.InitialDelay, cfg.BackoffFactor),
	}
}

// Name returns "openai".
func (p *OpenAIProvider) Name() string { return "openai" }

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string { return p.model }

// APIStyle returns the endpoint style in use.
func (p *OpenAIProvider) APIStyle() APIStyle { return p.apiStyle }

// Close is a no-op for the OpenAI provider.
func (p *OpenAIProvider) Close() error {
	return nil
}

// Complete generates a completion for the request prompt.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if p.apiStyle == APIStyleCompletions {
		return p.completion(ctx, req)
	}
	return p.chatCompletion(ctx, req)
}

func (p *OpenAIProvider) chatCompletion(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	openaiReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt()},
		},
		MaxTokens:        req.MaxTokens(),
		Temperature:      float32(req.Temperature()),
		FrequencyPenalty: float32(req.FrequencyPenalty()),
	}

	var resp openai.ChatCompletionResponse
	err := p.retry.do(ctx, func() error {
		var err error
		resp, err = p.client.CreateChatCompletion(ctx, openaiReq)
		return err
	}, p.isRetryable)
	if err != nil {
		return CompletionResponse{}, p.wrapError("chat_completion", err)
	}

	if len(resp.Choices) == 0 {
		return CompletionResponse{}, NewProviderError("chat_completion", 0, "empty response", ErrNoChoices)
	}

	return NewCompletionResponse(
		resp.Choices[0].Message.Content,
		string(resp.Choices[0].FinishReason),
		NewUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens),
	), nil
}

func (p *OpenAIProvider) completion(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	openaiReq := openai.CompletionRequest{
		Model:            p.model,
		Prompt:           req.Prompt(),
		MaxTokens:        req.MaxTokens(),
		Temperature:      float32(req.Temperature()),
		FrequencyPenalty: float32(req.FrequencyPenalty()),
	}

	var resp openai.CompletionResponse
	err := p.retry.do(ctx, func() error {
		var err error
		resp, err = p.client.CreateCompletion(ctx, openaiReq)
		return err
	}, p.isRetryable)
	if err != nil {
		return CompletionResponse{}, p.wrapError("completion", err)
	}

	if len(resp.Choices) == 0 {
		return CompletionResponse{}, NewProviderError("completion", 0, "empty response", ErrNoChoices)
	}

	return NewCompletionResponse(
		resp.Choices[0].Text,
		resp.Choices[0].FinishReason,
		NewUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens),
	), nil
}

// isRetryable determines if an error should be retried.
func (p *OpenAIProvider) isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 0 || retryableStatus(reqErr.HTTPStatusCode)
	}

	return false
}

// wrapError wraps an OpenAI error into a ProviderError.
func (p *OpenAIProvider) wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, "request failed", err)
	}

	return NewProviderError(operation, 0, "request failed", err)
}

var _ Provider = (*OpenAIProvider)(nil)
