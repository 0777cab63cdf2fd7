package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/cache"
	"github.com/helixml/plainspeak/infrastructure/provider"
)

// CompletionParams are the fixed sampling parameters sent with every prompt.
type CompletionParams struct {
	MaxTokens        int
	Temperature      float64
	FrequencyPenalty float64
}

// DefaultCompletionParams returns the parameters used unless configured otherwise.
func DefaultCompletionParams() CompletionParams {
	return CompletionParams{
		MaxTokens:        300,
		Temperature:      0.7,
		FrequencyPenalty: 0.5,
	}
}

// Translation is a formatted result and whether it came from the cache.
type Translation struct {
	result translation.Result
	cached bool
}

// NewTranslation creates a Translation.
func NewTranslation(result translation.Result, cached bool) Translation {
	return Translation{result: result, cached: cached}
}

// Result returns the formatted result.
func (t Translation) Result() translation.Result { return t.result }

// Cached reports whether the result was served from the cache.
func (t Translation) Cached() bool { return t.cached }

// Translator turns validated requests into formatted results.
// It is safe for concurrent use.
type Translator struct {
	generator provider.TextGenerator
	store     cache.Store
	ttl       time.Duration
	params    CompletionParams
	logger    *slog.Logger
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithResultCache caches formatted results in store for ttl.
func WithResultCache(store cache.Store, ttl time.Duration) TranslatorOption {
	return func(t *Translator) {
		if store != nil {
			t.store = store
		}
		t.ttl = ttl
	}
}

// WithCompletionParams overrides the sampling parameters.
func WithCompletionParams(p CompletionParams) TranslatorOption {
	return func(t *Translator) { t.params = p }
}

// WithTranslatorLogger sets the logger.
func WithTranslatorLogger(l *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTranslator creates a Translator. A nil generator makes every
// translation fail with translation.ErrServiceUnavailable.
func NewTranslator(generator provider.TextGenerator, opts ...TranslatorOption) *Translator {
	t := &Translator{
		generator: generator,
		store:     cache.NewNone(),
		ttl:       cache.DefaultTTL,
		params:    DefaultCompletionParams(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranslateFields runs the request pipeline on raw form fields and translates
// the result.
func (t *Translator) TranslateFields(ctx context.Context, fields translation.Fields) (Translation, error) {
	req, err := translation.ParseRequest(fields)
	if err != nil {
		return Translation{}, err
	}
	return t.Translate(ctx, req)
}

// Translate returns the formatted result for req, from the cache when possible.
// Errors are translation sentinels suitable for translation.UserMessage.
func (t *Translator) Translate(ctx context.Context, req translation.Request) (Translation, error) {
	key := translation.CacheKey(req)
	logger := t.logger.With(
		slog.String("key", keyPrefix(key)),
		slog.String("mode", req.Mode().String()),
		slog.String("tone", req.Tone().String()),
		slog.Bool("explain", req.Explain()),
	)

	if result, ok := t.lookup(ctx, logger, key); ok {
		logger.DebugContext(ctx, "translation served from cache")
		return NewTranslation(result, true), nil
	}

	if t.generator == nil {
		return Translation{}, translation.ErrServiceUnavailable
	}

	completionReq := provider.NewCompletionRequest(translation.BuildPrompt(req)).
		WithMaxTokens(t.params.MaxTokens).
		WithTemperature(t.params.Temperature).
		WithFrequencyPenalty(t.params.FrequencyPenalty)

	start := time.Now()
	resp, err := t.generator.Complete(ctx, completionReq)
	if err != nil {
		logger.WarnContext(ctx, "completion failed",
			slog.String("failure", provider.Classify(err).String()),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return Translation{}, translation.ErrServiceUnavailable
	}

	result, err := translation.Normalize(resp.Content())
	if err != nil {
		logger.WarnContext(ctx, "completion rejected",
			slog.Int("response_length", len(resp.Content())),
			slog.Any("error", err),
		)
		return Translation{}, err
	}

	t.save(ctx, logger, key, result)

	logger.InfoContext(ctx, "translation completed",
		slog.Int("text_length", len([]rune(req.Text()))),
		slog.Int("sections", len(result.Sections())),
		slog.Int("total_tokens", resp.Usage().TotalTokens()),
		slog.Duration("duration", time.Since(start)),
	)
	return NewTranslation(result, false), nil
}

type cachedSection struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type cachedResult struct {
	Sections []cachedSection `json:"sections"`
}

// lookup treats every cache failure as a miss.
func (t *Translator) lookup(ctx context.Context, logger *slog.Logger, key string) (translation.Result, bool) {
	raw, ok, err := t.store.Get(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "cache lookup failed", slog.Any("error", err))
		return translation.Result{}, false
	}
	if !ok {
		return translation.Result{}, false
	}

	result, err := decodeResult(raw)
	if err != nil {
		logger.WarnContext(ctx, "discarding unreadable cache entry", slog.Any("error", err))
		return translation.Result{}, false
	}
	return result, true
}

func (t *Translator) save(ctx context.Context, logger *slog.Logger, key string, result translation.Result) {
	raw, err := encodeResult(result)
	if err != nil {
		logger.WarnContext(ctx, "cache encode failed", slog.Any("error", err))
		return
	}
	if err := t.store.Set(ctx, key, raw, t.ttl); err != nil {
		logger.WarnContext(ctx, "cache store failed", slog.Any("error", err))
	}
}

func encodeResult(result translation.Result) ([]byte, error) {
	sections := result.Sections()
	entry := cachedResult{Sections: make([]cachedSection, len(sections))}
	for i, s := range sections {
		entry.Sections[i] = cachedSection{Name: string(s.Name()), Content: s.Content()}
	}
	return json.Marshal(entry)
}

func decodeResult(raw []byte) (translation.Result, error) {
	var entry cachedResult
	if err := json.Unmarshal(raw, &entry); err != nil {
		return translation.Result{}, fmt.Errorf("decode cache entry: %w", err)
	}
	if len(entry.Sections) == 0 {
		return translation.Result{}, fmt.Errorf("decode cache entry: no sections")
	}

	sections := make([]translation.Section, len(entry.Sections))
	for i, s := range entry.Sections {
		name := translation.SectionName(s.Name)
		if name != translation.SectionAnalysis && name != translation.SectionTranslation {
			return translation.Result{}, fmt.Errorf("decode cache entry: unknown section %q", s.Name)
		}
		sections[i] = translation.NewSection(name, s.Content)
	}
	return translation.NewResult(sections...)
}

// keyPrefix shortens a cache key for logs.
func keyPrefix(key string) string {
	const n = 24
	if len(key) <= n {
		return key
	}
	return key[:n]
}
