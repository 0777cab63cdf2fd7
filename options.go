package plainspeak

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/plainspeak/application/service"
	"github.com/helixml/plainspeak/infrastructure/cache"
	"github.com/helixml/plainspeak/infrastructure/ocr"
	"github.com/helixml/plainspeak/infrastructure/provider"
	"github.com/helixml/plainspeak/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	textProvider           provider.TextGenerator
	ownedProvider          bool
	geminiProvider         *provider.GeminiConfig
	completionParams       service.CompletionParams
	store                  cache.Store
	cacheURL               string
	cacheTTL               time.Duration
	cachePurgeInterval     time.Duration
	ocrEngine              string
	ocrEngines             []ocr.Engine
	tesseractLanguages     []string
	geminiOCR              *ocr.GeminiConfig
	maxImageBytes          int64
	logger                 *slog.Logger
	apiKeys                []string
	skipProviderValidation bool
	closers                []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		completionParams: service.CompletionParams{
			MaxTokens:        config.DefaultCompletionMaxTokens,
			Temperature:      config.DefaultCompletionTemperature,
			FrequencyPenalty: config.DefaultCompletionFrequencyPenalty,
		},
		cacheURL:           config.DefaultCacheURL,
		cacheTTL:           config.DefaultCacheTTL,
		cachePurgeInterval: config.DefaultCachePurgeInterval,
		ocrEngine:          config.DefaultOCREngine,
		tesseractLanguages: []string{config.DefaultOCRLanguages},
		maxImageBytes:      config.DefaultMaxImageBytes,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithOpenAI sets OpenAI chat completions as the completion provider, with
// the default retry policy.
func WithOpenAI(apiKey string) Option {
	return WithOpenAIConfig(provider.OpenAIConfig{APIKey: apiKey, MaxRetries: provider.DefaultMaxRetries})
}

// WithOpenAIConfig sets an OpenAI-compatible endpoint with custom configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProvider(cfg)
		c.ownedProvider = true
		c.geminiProvider = nil
	}
}

// WithAnthropicConfig sets Anthropic Claude as the completion provider.
func WithAnthropicConfig(cfg provider.AnthropicConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewAnthropicProvider(cfg)
		c.ownedProvider = true
		c.geminiProvider = nil
	}
}

// WithGeminiConfig sets Google Gemini as the completion provider. The client
// is created by New, which reports configuration errors.
func WithGeminiConfig(cfg provider.GeminiConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = nil
		c.ownedProvider = false
		c.geminiProvider = &cfg
	}
}

// WithTextProvider sets a custom completion provider. The caller keeps
// ownership; register it with WithCloser to have Close release it.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
		c.ownedProvider = false
		c.geminiProvider = nil
	}
}

// WithCompletionParams overrides the sampling parameters sent with every prompt.
func WithCompletionParams(p service.CompletionParams) Option {
	return func(c *clientConfig) {
		c.completionParams = p
	}
}

// WithCache sets the result cache. The caller keeps ownership of store.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.store = store
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithCacheURL selects the result cache by URL (memory://, redis://,
// sqlite:///path, postgres://, none://). New opens it and Close releases it.
func WithCacheURL(url string, ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.store = nil
		c.cacheURL = url
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithCachePurgeInterval sets how often expired rows are deleted from a
// database-backed cache. Other backends expire entries themselves.
func WithCachePurgeInterval(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.cachePurgeInterval = d
		}
	}
}

// WithoutCache disables result caching.
func WithoutCache() Option {
	return WithCacheURL("none://", 0)
}

// WithOCREngine registers an OCR engine candidate. Engines registered this
// way are tried before the built-in ones.
func WithOCREngine(e ocr.Engine) Option {
	return func(c *clientConfig) {
		c.ocrEngines = append(c.ocrEngines, e)
	}
}

// WithOCRSelection picks the engine by name: auto, tesseract, gemini or none.
func WithOCRSelection(name string) Option {
	return func(c *clientConfig) {
		c.ocrEngine = name
	}
}

// WithTesseractLanguages sets the Tesseract language codes.
func WithTesseractLanguages(langs ...string) Option {
	return func(c *clientConfig) {
		if len(langs) > 0 {
			c.tesseractLanguages = langs
		}
	}
}

// WithGeminiOCR enables Gemini vision as an OCR engine.
func WithGeminiOCR(cfg ocr.GeminiConfig) Option {
	return func(c *clientConfig) {
		c.geminiOCR = &cfg
	}
}

// WithMaxImageBytes sets the upload size limit for text extraction.
func WithMaxImageBytes(n int64) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxImageBytes = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAPIKeys sets the API keys for HTTP API authentication.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

// WithSkipProviderValidation allows a client without a completion provider.
// Translations then fail with the service-unavailable error. Intended for
// tests and extraction-only deployments.
func WithSkipProviderValidation() Option {
	return func(c *clientConfig) {
		c.skipProviderValidation = true
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(c io.Closer) Option {
	return func(cfg *clientConfig) {
		cfg.closers = append(cfg.closers, c)
	}
}
