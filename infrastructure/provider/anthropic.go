package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Anthropic defaults.
const (
	DefaultAnthropicBaseURL   = "https://api.anthropic.com"
	DefaultAnthropicModel     = "claude-3-5-haiku-latest"
	defaultAnthropicMaxTokens = 300
	anthropicVersion          = "2023-06-01"
)

// AnthropicProvider implements text generation using the Anthropic Messages API.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	retry      backoff
	httpClient *http.Client
}

// AnthropicConfig holds configuration for Anthropic provider.
type AnthropicConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxRetries    int // 0 disables retries, negative uses DefaultMaxRetries
	InitialDelay  time.Duration
	BackoffFactor float64
}

// NewAnthropicProvider creates a provider from configuration.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultAnthropicBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &AnthropicProvider{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		retry:      newBackoff(cfg.MaxRetries, cfg.InitialDelay, cfg.BackoffFactor),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns "anthropic".
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Close is a no-op for the Anthropic provider.
func (p *AnthropicProvider) Close() error {
	return nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content    []anthropicBlock `json:"content"`
	StopReason string           `json:"stop_reason"`
	Usage      anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete generates a completion. The Messages API has no frequency
// penalty, so that setting is ignored.
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	maxTokens := req.MaxTokens()
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	apiReq := anthropicRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt()}},
	}
	if t := req.Temperature(); t > 0 {
		apiReq.Temperature = &t
	}

	var resp anthropicResponse
	err := p.retry.do(ctx, func() error {
		var err error
		resp, err = p.doRequest(ctx, apiReq)
		return err
	}, p.isRetryable)
	if err != nil {
		return CompletionResponse{}, err
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return CompletionResponse{}, NewProviderError("messages", 0, "empty response", ErrNoChoices)
	}

	usage := NewUsage(
		resp.Usage.InputTokens,
		resp.Usage.OutputTokens,
		resp.Usage.InputTokens+resp.Usage.OutputTokens,
	)
	return NewCompletionResponse(content.String(), resp.StopReason, usage), nil
}

func (p *AnthropicProvider) doRequest(ctx context.Context, req anthropicRequest) (anthropicResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return anthropicResponse{}, NewProviderError("messages", 0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return anthropicResponse{}, NewProviderError("messages", 0, "failed to create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return anthropicResponse{}, NewProviderError("messages", 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return anthropicResponse{}, NewProviderError("messages", resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicErrorBody
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return anthropicResponse{}, NewProviderError("messages", resp.StatusCode, apiErr.Error.Message, nil)
		}
		return anthropicResponse{}, NewProviderError("messages", resp.StatusCode, http.StatusText(resp.StatusCode), nil)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return anthropicResponse{}, NewProviderError("messages", 0, "failed to unmarshal response", err)
	}
	return apiResp, nil
}

func (p *AnthropicProvider) isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		return false
	}
	return retryableStatus(provErr.StatusCode())
}

var _ Provider = (*AnthropicProvider)(nil)
