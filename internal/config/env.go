package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., COMPLETION_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of valid API keys.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// CORSAllowedOrigins is a comma-separated list of origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// RequestTimeout is the per-request timeout in seconds.
	// Env: REQUEST_TIMEOUT (default: 60)
	RequestTimeout float64 `envconfig:"REQUEST_TIMEOUT" default:"60"`

	// Completion configures the completion service.
	Completion CompletionEnv `envconfig:"COMPLETION"`

	// OCR configures text extraction from images.
	OCR OCREnv `envconfig:"OCR"`

	// Cache configures the result cache.
	Cache CacheEnv `envconfig:"CACHE"`

	// RateLimit configures request throttling.
	RateLimit RateLimitEnv `envconfig:"RATE_LIMIT"`
}

// CompletionEnv holds environment configuration for the completion service.
type CompletionEnv struct {
	// Provider is openai, anthropic or gemini.
	// Env: COMPLETION_PROVIDER (default: openai)
	Provider string `envconfig:"PROVIDER" default:"openai"`

	// BaseURL is the base URL for the endpoint.
	// Env: COMPLETION_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier.
	// Env: COMPLETION_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: COMPLETION_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// APIStyle is chat or completions (OpenAI only).
	// Env: COMPLETION_API_STYLE (default: chat)
	APIStyle string `envconfig:"API_STYLE" default:"chat"`

	// Timeout is the request timeout in seconds.
	// Env: COMPLETION_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`

	// MaxRetries is the maximum number of retries. 0 disables retrying.
	// Env: COMPLETION_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: COMPLETION_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: COMPLETION_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// MaxTokens is the completion token limit.
	// Env: COMPLETION_MAX_TOKENS (default: 300)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"300"`

	// Temperature is the sampling temperature.
	// Env: COMPLETION_TEMPERATURE (default: 0.7)
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.7"`

	// FrequencyPenalty discourages repetition.
	// Env: COMPLETION_FREQUENCY_PENALTY (default: 0.5)
	FrequencyPenalty float64 `envconfig:"FREQUENCY_PENALTY" default:"0.5"`
}

// OCREnv holds environment configuration for text extraction.
type OCREnv struct {
	// Engine is auto, tesseract, gemini or none.
	// Env: OCR_ENGINE (default: auto)
	Engine string `envconfig:"ENGINE" default:"auto"`

	// Languages is a comma-separated list of Tesseract languages.
	// Env: OCR_LANGUAGES (default: eng)
	Languages string `envconfig:"LANGUAGES" default:"eng"`

	// MaxImageBytes is the upload size limit.
	// Env: OCR_MAX_IMAGE_BYTES (default: 5242880)
	MaxImageBytes int64 `envconfig:"MAX_IMAGE_BYTES" default:"5242880"`

	// APIKey is the Gemini key for vision OCR.
	// Env: OCR_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Model is the Gemini vision model.
	// Env: OCR_MODEL
	Model string `envconfig:"MODEL"`
}

// CacheEnv holds environment configuration for the result cache.
type CacheEnv struct {
	// URL selects the backend: memory://, redis://, sqlite:///path, postgres://, none://.
	// Env: CACHE_URL (default: memory://)
	URL string `envconfig:"URL" default:"memory://"`

	// TTL is the entry lifetime in seconds.
	// Env: CACHE_TTL (default: 1800)
	TTL float64 `envconfig:"TTL" default:"1800"`

	// PurgeInterval is how often expired rows are deleted from a database cache, in seconds.
	// Env: CACHE_PURGE_INTERVAL (default: 600)
	PurgeInterval float64 `envconfig:"PURGE_INTERVAL" default:"600"`
}

// RateLimitEnv holds environment configuration for throttling.
type RateLimitEnv struct {
	// Enabled controls whether throttling is active.
	// Env: RATE_LIMIT_ENABLED (default: true)
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// Requests is the quota per window.
	// Env: RATE_LIMIT_REQUESTS (default: 10)
	Requests int `envconfig:"REQUESTS" default:"10"`

	// Window is the quota window in seconds.
	// Env: RATE_LIMIT_WINDOW (default: 60)
	Window float64 `envconfig:"WINDOW" default:"60"`

	// MaxClients bounds the number of tracked clients.
	// Env: RATE_LIMIT_MAX_CLIENTS (default: 10000)
	MaxClients int `envconfig:"MAX_CLIENTS" default:"10000"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "PLAINSPEAK" would require PLAINSPEAK_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	if e.CORSAllowedOrigins != "" {
		cfg = applyOption(cfg, WithCORSAllowedOrigins(ParseList(e.CORSAllowedOrigins)))
	}
	cfg = applyOption(cfg, WithRequestTimeout(seconds(e.RequestTimeout)))

	cfg = applyOption(cfg, WithCompletionEndpoint(e.Completion.ToEndpoint()))
	cfg = applyOption(cfg, WithOCRConfig(e.OCR.ToOCRConfig()))
	cfg = applyOption(cfg, WithCacheConfig(e.Cache.ToCacheConfig()))
	cfg = applyOption(cfg, WithRateLimitConfig(e.RateLimit.ToRateLimitConfig()))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToEndpoint converts CompletionEnv to Endpoint.
func (c CompletionEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithTimeout(seconds(c.Timeout)),
		WithMaxRetries(c.MaxRetries),
		WithInitialDelay(seconds(c.InitialDelay)),
		WithBackoffFactor(c.BackoffFactor),
		WithMaxTokens(c.MaxTokens),
		WithTemperature(c.Temperature),
		WithFrequencyPenalty(c.FrequencyPenalty),
	}

	if c.Provider != "" {
		opts = append(opts, WithProvider(c.Provider))
	}
	if c.APIStyle != "" {
		opts = append(opts, WithAPIStyle(strings.ToLower(c.APIStyle)))
	}
	if c.BaseURL != "" {
		opts = append(opts, WithBaseURL(c.BaseURL))
	}
	if c.Model != "" {
		opts = append(opts, WithModel(c.Model))
	}
	if c.APIKey != "" {
		opts = append(opts, WithAPIKey(c.APIKey))
	}

	return NewEndpointWithOptions(opts...)
}

// ToOCRConfig converts OCREnv to OCRConfig.
func (o OCREnv) ToOCRConfig() OCRConfig {
	cfg := NewOCRConfig().
		WithMaxImageBytes(o.MaxImageBytes).
		WithAPIKey(o.APIKey).
		WithModel(o.Model).
		WithLanguages(ParseList(o.Languages)...)
	if o.Engine != "" {
		cfg = cfg.WithEngine(o.Engine)
	}
	return cfg
}

// ToCacheConfig converts CacheEnv to CacheConfig.
func (c CacheEnv) ToCacheConfig() CacheConfig {
	cfg := NewCacheConfig().
		WithTTL(seconds(c.TTL)).
		WithPurgeInterval(seconds(c.PurgeInterval))
	if c.URL != "" {
		cfg = cfg.WithURL(c.URL)
	}
	return cfg
}

// ToRateLimitConfig converts RateLimitEnv to RateLimitConfig.
func (r RateLimitEnv) ToRateLimitConfig() RateLimitConfig {
	return NewRateLimitConfig().
		WithEnabled(r.Enabled).
		WithRequests(r.Requests).
		WithWindow(seconds(r.Window)).
		WithMaxClients(r.MaxClients)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
