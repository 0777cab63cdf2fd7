//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract extracts text with a local Tesseract installation.
type Tesseract struct {
	languages []string
}

// NewTesseract creates a Tesseract engine for the given language codes
// (e.g. "eng"). No languages means Tesseract's default.
func NewTesseract(languages ...string) *Tesseract {
	return &Tesseract{languages: languages}
}

// Name returns "tesseract".
func (t *Tesseract) Name() string { return EngineTesseract }

// Available returns true; builds without the tesseract tag use a stub.
func (t *Tesseract) Available() bool { return true }

// Version returns the linked Tesseract version.
func (t *Tesseract) Version() string {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()
	return client.Version()
}

// Extract runs OCR on img. A client is created per call because gosseract
// clients are not safe for concurrent use.
func (t *Tesseract) Extract(ctx context.Context, img Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return "", fmt.Errorf("tesseract set language: %w", err)
		}
	}
	if err := client.SetImageFromBytes(img.Data()); err != nil {
		return "", fmt.Errorf("tesseract set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var _ Engine = (*Tesseract)(nil)
