//go:build !tesseract

package ocr

import "context"

// Tesseract is unavailable in builds without the tesseract tag, which need
// the Tesseract and Leptonica C libraries.
type Tesseract struct {
	languages []string
}

// NewTesseract creates an unavailable Tesseract engine.
func NewTesseract(languages ...string) *Tesseract {
	return &Tesseract{languages: languages}
}

// Name returns "tesseract".
func (t *Tesseract) Name() string { return EngineTesseract }

// Available returns false.
func (t *Tesseract) Available() bool { return false }

// Version returns an empty string.
func (t *Tesseract) Version() string { return "" }

// Extract always fails with ErrEngineUnavailable.
func (t *Tesseract) Extract(context.Context, Image) (string, error) {
	return "", ErrEngineUnavailable
}

var _ Engine = (*Tesseract)(nil)
