// Package plainspeak rewrites phrases from everyday social language into
// plain, literal language with an optional explanation of the context.
//
// Basic usage:
//
//	client, err := plainspeak.New(
//	    plainspeak.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    plainspeak.WithCacheURL("memory://", 30*time.Minute),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	out, err := client.Translate(ctx, translation.Fields{
//	    Text: "Let's touch base next week.",
//	    Mode: "nt-to-nd",
//	    Tone: "neutral",
//	    ExplainContext: "yes",
//	})
//	if err != nil {
//	    fmt.Println(translation.UserMessage(err))
//	    return
//	}
//	fmt.Println(out.Result().HTML())
package plainspeak

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/helixml/plainspeak/application/service"
	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/cache"
	"github.com/helixml/plainspeak/infrastructure/ocr"
	"github.com/helixml/plainspeak/infrastructure/provider"
	"github.com/helixml/plainspeak/internal/config"
)

// Capabilities describes what the running client can do.
type Capabilities struct {
	CompletionProvider string `json:"completion_provider"`
	OCREngine          string `json:"ocr_engine"`
	OCRAvailable       bool   `json:"ocr_available"`
	CacheBackend       string `json:"cache_backend"`
	MaxImageBytes      int64  `json:"max_image_bytes"`
	MaxTextLength      int    `json:"max_text_length"`
}

// Client is the main entry point for the plainspeak library.
//
// Access services via struct fields or the convenience methods:
//
//	client.Translator.Translate(ctx, req)
//	client.Extractor.Extract(ctx, imageBytes)
type Client struct {
	Translator *service.Translator
	Extractor  *service.Extractor

	capabilities Capabilities
	apiKeys      []string
	closers      []io.Closer
	logger       *slog.Logger
	closed       atomic.Bool
	mu           sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	ctx := context.Background()
	closers := append([]io.Closer(nil), cfg.closers...)
	fail := func(err error) (*Client, error) {
		return nil, errors.Join(err, closeAll(closers))
	}

	generator := cfg.textProvider
	if cfg.geminiProvider != nil {
		p, err := provider.NewGeminiProvider(ctx, *cfg.geminiProvider)
		if err != nil {
			return fail(fmt.Errorf("gemini provider: %w", err))
		}
		generator = p
		closers = append(closers, p)
	} else if p, ok := generator.(provider.Provider); ok && cfg.ownedProvider {
		closers = append(closers, p)
	}
	if generator == nil && !cfg.skipProviderValidation {
		return fail(ErrNoProvider)
	}

	store := cfg.store
	if store == nil {
		s, err := cache.Open(ctx, cfg.cacheURL, cfg.cacheTTL, logger)
		if err != nil {
			return fail(fmt.Errorf("open cache: %w", err))
		}
		store = s
		closers = append(closers, s)
	}
	if p, ok := store.(service.Purger); ok {
		purge := service.NewCachePurge(p, cfg.cachePurgeInterval, logger)
		purge.Start(ctx)
		closers = append(closers, purge)
	}

	engines := append([]ocr.Engine(nil), cfg.ocrEngines...)
	engines = append(engines, ocr.NewTesseract(cfg.tesseractLanguages...))
	if cfg.geminiOCR != nil {
		g, err := ocr.NewGemini(ctx, *cfg.geminiOCR)
		if err != nil {
			logger.Warn("gemini ocr disabled", slog.Any("error", err))
		} else {
			engines = append(engines, g)
			closers = append(closers, g)
		}
	}
	engine, err := ocr.Select(cfg.ocrEngine, engines...)
	if err != nil {
		logger.Warn("text extraction disabled",
			slog.String("requested_engine", cfg.ocrEngine),
			slog.Any("error", err),
		)
		engine = nil
	}
	if v, ok := engine.(interface{ Version() string }); ok {
		logger.Debug("ocr engine selected",
			slog.String("engine", engine.Name()),
			slog.String("version", v.Version()),
		)
	}

	translator := service.NewTranslator(generator,
		service.WithResultCache(store, cfg.cacheTTL),
		service.WithCompletionParams(cfg.completionParams),
		service.WithTranslatorLogger(logger),
	)
	extractor := service.NewExtractor(engine,
		service.WithMaxImageBytes(cfg.maxImageBytes),
		service.WithExtractorLogger(logger),
	)

	caps := Capabilities{
		CompletionProvider: providerName(generator),
		OCREngine:          extractor.EngineName(),
		OCRAvailable:       extractor.Available(),
		CacheBackend:       store.Name(),
		MaxImageBytes:      extractor.MaxImageBytes(),
		MaxTextLength:      translation.MaxTextLength,
	}

	logger.Info("plainspeak client ready",
		slog.String("completion_provider", caps.CompletionProvider),
		slog.String("ocr_engine", caps.OCREngine),
		slog.String("cache_backend", caps.CacheBackend),
	)

	return &Client{
		Translator:   translator,
		Extractor:    extractor,
		capabilities: caps,
		apiKeys:      cfg.apiKeys,
		closers:      closers,
		logger:       logger,
	}, nil
}

// Translate parses raw fields and returns the formatted result.
func (c *Client) Translate(ctx context.Context, fields translation.Fields) (service.Translation, error) {
	if c.closed.Load() {
		return service.Translation{}, ErrClientClosed
	}
	return c.Translator.TranslateFields(ctx, fields)
}

// ExtractText returns the text found in an uploaded image.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	if c.closed.Load() {
		return "", ErrClientClosed
	}
	return c.Extractor.Extract(ctx, image)
}

// TranslateImage extracts text from image and translates it using the mode,
// tone and explanation settings in fields. fields.Text is ignored.
func (c *Client) TranslateImage(ctx context.Context, image []byte, fields translation.Fields) (service.Translation, error) {
	text, err := c.ExtractText(ctx, image)
	if err != nil {
		return service.Translation{}, err
	}
	fields.Text = text
	return c.Translate(ctx, fields)
}

// Capabilities returns what this client can do.
func (c *Client) Capabilities() Capabilities {
	return c.capabilities
}

// APIKeys returns the configured API keys for HTTP authentication.
func (c *Client) APIKeys() []string {
	result := make([]string, len(c.apiKeys))
	copy(result, c.apiKeys)
	return result
}

// Close releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := closeAll(c.closers); err != nil {
		c.logger.Error("failed to close resource", slog.Any("error", err))
		return err
	}

	c.logger.Info("plainspeak client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func providerName(g provider.TextGenerator) string {
	if g == nil {
		return "none"
	}
	if p, ok := g.(provider.Provider); ok {
		return p.Name()
	}
	return "custom"
}
