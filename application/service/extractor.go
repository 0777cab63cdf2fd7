package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/ocr"
)

// DefaultMaxImageBytes caps image uploads at 5 MiB.
const DefaultMaxImageBytes int64 = 5 << 20

// Extractor reads text out of uploaded images.
type Extractor struct {
	engine   ocr.Engine
	maxBytes int64
	logger   *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMaxImageBytes sets the upload size limit.
func WithMaxImageBytes(n int64) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// WithExtractorLogger sets the logger.
func WithExtractorLogger(l *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor. A nil engine disables extraction.
func NewExtractor(engine ocr.Engine, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		engine:   engine,
		maxBytes: DefaultMaxImageBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Available reports whether an OCR engine can serve requests.
func (e *Extractor) Available() bool {
	return e.engine != nil && e.engine.Available()
}

// EngineName returns the active engine name, or "none".
func (e *Extractor) EngineName() string {
	if !e.Available() {
		return ocr.EngineNone
	}
	return e.engine.Name()
}

// MaxImageBytes returns the upload size limit.
func (e *Extractor) MaxImageBytes() int64 { return e.maxBytes }

// Extract validates data and returns the sanitised text found in it.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	if int64(len(data)) > e.maxBytes {
		return "", translation.ErrImageTooLarge
	}
	if !e.Available() {
		return "", translation.ErrExtractionUnavailable
	}

	img, err := ocr.NewImage(data)
	if err != nil {
		return "", translation.ErrUnsupportedImage
	}

	raw, err := e.engine.Extract(ctx, img)
	if err != nil {
		e.logger.WarnContext(ctx, "text extraction failed",
			slog.String("engine", e.engine.Name()),
			slog.String("mime_type", img.MIMEType()),
			slog.Int("size", img.Size()),
			slog.Any("error", err),
		)
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", translation.ErrExtractionUnavailable
	}

	text := translation.Sanitize(raw)
	if text == "" {
		return "", translation.ErrNoTextFound
	}

	e.logger.DebugContext(ctx, "text extracted",
		slog.String("engine", e.engine.Name()),
		slog.Int("text_length", len([]rune(text))),
	)
	return text, nil
}
