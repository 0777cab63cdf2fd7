// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                       = "0.0.0.0"
	DefaultPort                       = 8080
	DefaultLogLevel                   = "INFO"
	DefaultRequestTimeout             = 60 * time.Second
	DefaultCompletionProvider         = "openai"
	DefaultCompletionAPIStyle         = "chat"
	DefaultCompletionTimeout          = 30 * time.Second
	DefaultCompletionMaxRetries       = 3
	DefaultCompletionInitialDelay     = 2 * time.Second
	DefaultCompletionBackoffFactor    = 2.0
	DefaultCompletionMaxTokens        = 300
	DefaultCompletionTemperature      = 0.7
	DefaultCompletionFrequencyPenalty = 0.5
	DefaultOCREngine                  = "auto"
	DefaultOCRLanguages               = "eng"
	DefaultMaxImageBytes              = 5 << 20
	DefaultCacheURL                   = "memory://"
	DefaultCacheTTL                   = 1800 * time.Second
	DefaultCachePurgeInterval         = 10 * time.Minute
	DefaultRateLimitRequests          = 10
	DefaultRateLimitWindow            = 60 * time.Second
	DefaultRateLimitMaxClients        = 10000
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures the completion service.
type Endpoint struct {
	provider         string
	baseURL          string
	model            string
	apiKey           string
	apiStyle         string
	timeout          time.Duration
	maxRetries       int
	initialDelay     time.Duration
	backoffFactor    float64
	maxTokens        int
	temperature      float64
	frequencyPenalty float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		provider:         DefaultCompletionProvider,
		apiStyle:         DefaultCompletionAPIStyle,
		timeout:          DefaultCompletionTimeout,
		maxRetries:       DefaultCompletionMaxRetries,
		initialDelay:     DefaultCompletionInitialDelay,
		backoffFactor:    DefaultCompletionBackoffFactor,
		maxTokens:        DefaultCompletionMaxTokens,
		temperature:      DefaultCompletionTemperature,
		frequencyPenalty: DefaultCompletionFrequencyPenalty,
	}
}

// Provider returns the backend name: openai, anthropic or gemini.
func (e Endpoint) Provider() string { return e.provider }

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// APIStyle returns "chat" or "completions".
func (e Endpoint) APIStyle() string { return e.apiStyle }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// MaxTokens returns the completion token limit.
func (e Endpoint) MaxTokens() int { return e.maxTokens }

// Temperature returns the sampling temperature.
func (e Endpoint) Temperature() float64 { return e.temperature }

// FrequencyPenalty returns the frequency penalty.
func (e Endpoint) FrequencyPenalty() float64 { return e.frequencyPenalty }

// IsConfigured returns true if the endpoint has credentials or a base URL.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != "" || e.baseURL != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithProvider sets the backend name.
func WithProvider(name string) EndpointOption {
	return func(e *Endpoint) { e.provider = strings.ToLower(strings.TrimSpace(name)) }
}

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithAPIStyle sets the OpenAI endpoint style.
func WithAPIStyle(style string) EndpointOption {
	return func(e *Endpoint) { e.apiStyle = style }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retries.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(n int) EndpointOption {
	return func(e *Endpoint) { e.maxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) EndpointOption {
	return func(e *Endpoint) { e.temperature = t }
}

// WithFrequencyPenalty sets the frequency penalty.
func WithFrequencyPenalty(p float64) EndpointOption {
	return func(e *Endpoint) { e.frequencyPenalty = p }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// OCRConfig configures text extraction from images.
type OCRConfig struct {
	engine        string
	languages     []string
	maxImageBytes int64
	apiKey        string
	model         string
}

// NewOCRConfig creates a new OCRConfig with defaults.
func NewOCRConfig() OCRConfig {
	return OCRConfig{
		engine:        DefaultOCREngine,
		languages:     []string{DefaultOCRLanguages},
		maxImageBytes: DefaultMaxImageBytes,
	}
}

// Engine returns the engine name: auto, tesseract, gemini or none.
func (o OCRConfig) Engine() string { return o.engine }

// Languages returns the Tesseract language codes.
func (o OCRConfig) Languages() []string {
	out := make([]string, len(o.languages))
	copy(out, o.languages)
	return out
}

// MaxImageBytes returns the upload size limit.
func (o OCRConfig) MaxImageBytes() int64 { return o.maxImageBytes }

// APIKey returns the Gemini API key used for vision OCR.
func (o OCRConfig) APIKey() string { return o.apiKey }

// Model returns the Gemini vision model.
func (o OCRConfig) Model() string { return o.model }

// WithEngine returns a new config with the specified engine.
func (o OCRConfig) WithEngine(name string) OCRConfig {
	o.engine = strings.ToLower(strings.TrimSpace(name))
	return o
}

// WithLanguages returns a new config with the specified languages.
func (o OCRConfig) WithLanguages(langs ...string) OCRConfig {
	if len(langs) > 0 {
		o.languages = append([]string(nil), langs...)
	}
	return o
}

// WithMaxImageBytes returns a new config with the specified size limit.
func (o OCRConfig) WithMaxImageBytes(n int64) OCRConfig {
	if n > 0 {
		o.maxImageBytes = n
	}
	return o
}

// WithAPIKey returns a new config with the specified API key.
func (o OCRConfig) WithAPIKey(key string) OCRConfig {
	o.apiKey = key
	return o
}

// WithModel returns a new config with the specified model.
func (o OCRConfig) WithModel(model string) OCRConfig {
	o.model = model
	return o
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	url           string
	ttl           time.Duration
	purgeInterval time.Duration
}

// NewCacheConfig creates a new CacheConfig with defaults.
func NewCacheConfig() CacheConfig {
	return CacheConfig{url: DefaultCacheURL, ttl: DefaultCacheTTL, purgeInterval: DefaultCachePurgeInterval}
}

// URL returns the cache backend URL.
func (c CacheConfig) URL() string { return c.url }

// TTL returns the entry lifetime.
func (c CacheConfig) TTL() time.Duration { return c.ttl }

// PurgeInterval returns how often expired database entries are deleted.
func (c CacheConfig) PurgeInterval() time.Duration { return c.purgeInterval }

// WithURL returns a new config with the specified URL.
func (c CacheConfig) WithURL(u string) CacheConfig {
	c.url = u
	return c
}

// WithTTL returns a new config with the specified TTL.
func (c CacheConfig) WithTTL(d time.Duration) CacheConfig {
	if d > 0 {
		c.ttl = d
	}
	return c
}

// WithPurgeInterval returns a new config with the specified purge interval.
func (c CacheConfig) WithPurgeInterval(d time.Duration) CacheConfig {
	if d > 0 {
		c.purgeInterval = d
	}
	return c
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	enabled    bool
	requests   int
	window     time.Duration
	maxClients int
}

// NewRateLimitConfig creates a new RateLimitConfig with defaults.
func NewRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		enabled:    true,
		requests:   DefaultRateLimitRequests,
		window:     DefaultRateLimitWindow,
		maxClients: DefaultRateLimitMaxClients,
	}
}

// Enabled returns whether throttling is active.
func (r RateLimitConfig) Enabled() bool { return r.enabled }

// Requests returns the quota per window.
func (r RateLimitConfig) Requests() int { return r.requests }

// Window returns the quota window.
func (r RateLimitConfig) Window() time.Duration { return r.window }

// MaxClients returns how many clients are tracked at once.
func (r RateLimitConfig) MaxClients() int { return r.maxClients }

// WithEnabled returns a new config with the specified enabled state.
func (r RateLimitConfig) WithEnabled(enabled bool) RateLimitConfig {
	r.enabled = enabled
	return r
}

// WithRequests returns a new config with the specified quota.
func (r RateLimitConfig) WithRequests(n int) RateLimitConfig {
	if n > 0 {
		r.requests = n
	}
	return r
}

// WithWindow returns a new config with the specified window.
func (r RateLimitConfig) WithWindow(d time.Duration) RateLimitConfig {
	if d > 0 {
		r.window = d
	}
	return r
}

// WithMaxClients returns a new config with the specified client bound.
func (r RateLimitConfig) WithMaxClients(n int) RateLimitConfig {
	if n > 0 {
		r.maxClients = n
	}
	return r
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	logLevel           string
	logFormat          LogFormat
	apiKeys            []string
	corsAllowedOrigins []string
	requestTimeout     time.Duration
	completion         Endpoint
	ocr                OCRConfig
	cache              CacheConfig
	rateLimit          RateLimitConfig
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		logLevel:           DefaultLogLevel,
		logFormat:          LogFormatPretty,
		apiKeys:            []string{},
		corsAllowedOrigins: []string{"*"},
		requestTimeout:     DefaultRequestTimeout,
		completion:         NewEndpoint(),
		ocr:                NewOCRConfig(),
		cache:              NewCacheConfig(),
		rateLimit:          NewRateLimitConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns a copy of the accepted API keys.
func (c AppConfig) APIKeys() []string {
	result := make([]string, len(c.apiKeys))
	copy(result, c.apiKeys)
	return result
}

// CORSAllowedOrigins returns the origins allowed by CORS.
func (c AppConfig) CORSAllowedOrigins() []string {
	result := make([]string, len(c.corsAllowedOrigins))
	copy(result, c.corsAllowedOrigins)
	return result
}

// RequestTimeout bounds the handling time of one HTTP request.
func (c AppConfig) RequestTimeout() time.Duration { return c.requestTimeout }

// Completion returns the completion endpoint configuration.
func (c AppConfig) Completion() Endpoint { return c.completion }

// OCR returns the OCR configuration.
func (c AppConfig) OCR() OCRConfig { return c.ocr }

// Cache returns the result cache configuration.
func (c AppConfig) Cache() CacheConfig { return c.cache }

// RateLimit returns the rate limit configuration.
func (c AppConfig) RateLimit() RateLimitConfig { return c.rateLimit }

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithCORSAllowedOrigins sets the CORS origins.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		if len(origins) > 0 {
			c.corsAllowedOrigins = append([]string(nil), origins...)
		}
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithCompletionEndpoint sets the completion endpoint.
func WithCompletionEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.completion = e }
}

// WithOCRConfig sets the OCR configuration.
func WithOCRConfig(o OCRConfig) AppConfigOption {
	return func(c *AppConfig) { c.ocr = o }
}

// WithCacheConfig sets the cache configuration.
func WithCacheConfig(cc CacheConfig) AppConfigOption {
	return func(c *AppConfig) { c.cache = cc }
}

// WithRateLimitConfig sets the rate limit configuration.
func WithRateLimitConfig(r RateLimitConfig) AppConfigOption {
	return func(c *AppConfig) { c.rateLimit = r }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are never included; API keys appear as counts and URLs lose
// their credentials.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("log_level", c.logLevel),
		slog.Int("api_keys_count", len(c.apiKeys)),
		slog.String("completion_provider", c.completion.Provider()),
		slog.String("completion_base_url", orDefault(c.completion.BaseURL())),
		slog.String("completion_model", orDefault(c.completion.Model())),
		slog.String("completion_api_style", c.completion.APIStyle()),
		slog.Bool("completion_api_key_set", c.completion.APIKey() != ""),
		slog.String("ocr_engine", c.ocr.Engine()),
		slog.Int64("max_image_bytes", c.ocr.MaxImageBytes()),
		slog.String("cache_url", MaskURL(c.cache.URL())),
		slog.Duration("cache_ttl", c.cache.TTL()),
		slog.Bool("rate_limit_enabled", c.rateLimit.Enabled()),
		slog.Int("rate_limit_requests", c.rateLimit.Requests()),
		slog.Duration("rate_limit_window", c.rateLimit.Window()),
	}
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

// MaskURL removes user info from a connection URL.
func MaskURL(raw string) string {
	if raw == "" {
		return "(default)"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid)"
	}
	if u.User != nil {
		u.User = url.User("redacted")
	}
	return u.String()
}

// ParseList parses a comma-separated string, dropping blanks.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	return ParseList(s)
}
