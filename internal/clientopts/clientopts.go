// Package clientopts maps application configuration to plainspeak client
// options for the command line and Lambda entry points.
package clientopts

import (
	"fmt"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/application/service"
	"github.com/helixml/plainspeak/infrastructure/ocr"
	"github.com/helixml/plainspeak/infrastructure/provider"
	"github.com/helixml/plainspeak/infrastructure/ratelimit"
	"github.com/helixml/plainspeak/internal/config"
)

// Completion provider names accepted in COMPLETION_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Options returns the plainspeak.Option slice derived from AppConfig:
// completion provider, result cache and text extraction. Callers append
// entrypoint-specific options (logger, API keys) before calling plainspeak.New.
func Options(cfg config.AppConfig) ([]plainspeak.Option, error) {
	var opts []plainspeak.Option

	completion, err := completionOptions(cfg.Completion())
	if err != nil {
		return nil, fmt.Errorf("completion config: %w", err)
	}
	opts = append(opts, completion...)

	opts = append(opts,
		plainspeak.WithCacheURL(cfg.Cache().URL(), cfg.Cache().TTL()),
		plainspeak.WithCachePurgeInterval(cfg.Cache().PurgeInterval()),
	)
	opts = append(opts, ocrOptions(cfg.OCR())...)

	return opts, nil
}

// completionOptions returns the provider option for the completion endpoint,
// or nothing when no API key or base URL is configured.
func completionOptions(endpoint config.Endpoint) ([]plainspeak.Option, error) {
	if !endpoint.IsConfigured() {
		return nil, nil
	}

	opts := []plainspeak.Option{
		plainspeak.WithCompletionParams(service.CompletionParams{
			MaxTokens:        endpoint.MaxTokens(),
			Temperature:      endpoint.Temperature(),
			FrequencyPenalty: endpoint.FrequencyPenalty(),
		}),
	}

	switch endpoint.Provider() {
	case ProviderOpenAI, "":
		opts = append(opts, plainspeak.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:        endpoint.APIKey(),
			BaseURL:       endpoint.BaseURL(),
			Model:         endpoint.Model(),
			APIStyle:      provider.ParseAPIStyle(endpoint.APIStyle()),
			Timeout:       endpoint.Timeout(),
			MaxRetries:    endpoint.MaxRetries(),
			InitialDelay:  endpoint.InitialDelay(),
			BackoffFactor: endpoint.BackoffFactor(),
		}))
	case ProviderAnthropic:
		opts = append(opts, plainspeak.WithAnthropicConfig(provider.AnthropicConfig{
			APIKey:        endpoint.APIKey(),
			BaseURL:       endpoint.BaseURL(),
			Model:         endpoint.Model(),
			Timeout:       endpoint.Timeout(),
			MaxRetries:    endpoint.MaxRetries(),
			InitialDelay:  endpoint.InitialDelay(),
			BackoffFactor: endpoint.BackoffFactor(),
		}))
	case ProviderGemini:
		opts = append(opts, plainspeak.WithGeminiConfig(provider.GeminiConfig{
			APIKey:        endpoint.APIKey(),
			Model:         endpoint.Model(),
			Timeout:       endpoint.Timeout(),
			MaxRetries:    endpoint.MaxRetries(),
			InitialDelay:  endpoint.InitialDelay(),
			BackoffFactor: endpoint.BackoffFactor(),
		}))
	default:
		return nil, fmt.Errorf("unknown completion provider %q", endpoint.Provider())
	}

	return opts, nil
}

// ocrOptions configures text extraction. The Gemini vision engine is only
// registered when an OCR API key is present.
func ocrOptions(o config.OCRConfig) []plainspeak.Option {
	opts := []plainspeak.Option{
		plainspeak.WithOCRSelection(o.Engine()),
		plainspeak.WithTesseractLanguages(o.Languages()...),
		plainspeak.WithMaxImageBytes(o.MaxImageBytes()),
	}
	if o.APIKey() != "" {
		opts = append(opts, plainspeak.WithGeminiOCR(ocr.GeminiConfig{
			APIKey: o.APIKey(),
			Model:  o.Model(),
		}))
	}
	return opts
}

// RateLimiter builds the per-client limiter, or nil when rate limiting is off.
func RateLimiter(cfg config.RateLimitConfig) (*ratelimit.Limiter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	limiter, err := ratelimit.New(ratelimit.Config{
		Requests:   cfg.Requests(),
		Window:     cfg.Window(),
		MaxClients: cfg.MaxClients(),
	})
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return limiter, nil
}
