// Package ocr extracts text from uploaded images.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Errors returned by engines.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
	ErrNoEngine          = errors.New("no ocr engine available")
)

// Engine names.
const (
	EngineAuto      = "auto"
	EngineTesseract = "tesseract"
	EngineGemini    = "gemini"
	EngineNone      = "none"
)

// Engine extracts text from an image.
type Engine interface {
	// Name identifies the engine, e.g. "tesseract".
	Name() string

	// Available reports whether the engine can serve requests in this build
	// and configuration.
	Available() bool

	// Extract returns the text found in img. An image with no text yields an
	// empty string, not an error.
	Extract(ctx context.Context, img Image) (string, error)
}

// Image is a validated image upload.
type Image struct {
	data     []byte
	mimeType string
}

// NewImage sniffs data and returns an Image, or ErrUnsupportedFormat when the
// bytes are not one of the supported raster formats.
func NewImage(data []byte) (Image, error) {
	mimeType, ok := DetectMIME(data)
	if !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	return Image{data: data, mimeType: mimeType}, nil
}

// Data returns the raw image bytes.
func (i Image) Data() []byte { return i.data }

// MIMEType returns the sniffed content type.
func (i Image) MIMEType() string { return i.mimeType }

// Size returns the image size in bytes.
func (i Image) Size() int { return len(i.data) }

var supportedMIME = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/webp": true,
}

var (
	tiffLittleEndian = []byte{'I', 'I', 0x2A, 0x00}
	tiffBigEndian    = []byte{'M', 'M', 0x00, 0x2A}
)

// DetectMIME sniffs the content type of data and reports whether it is a
// supported image format. The declared upload type is never trusted.
func DetectMIME(data []byte) (string, bool) {
	if bytes.HasPrefix(data, tiffLittleEndian) || bytes.HasPrefix(data, tiffBigEndian) {
		return "image/tiff", true
	}
	mimeType := http.DetectContentType(data)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return mimeType, supportedMIME[mimeType]
}

// Select returns the engine to use. With name "" or "auto" the first
// available engine wins; any other name pins that engine. "none" disables
// extraction.
func Select(name string, engines ...Engine) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == EngineNone {
		return nil, ErrNoEngine
	}

	for _, e := range engines {
		if e == nil || !e.Available() {
			continue
		}
		if name == "" || name == EngineAuto || e.Name() == name {
			return e, nil
		}
	}

	if name == "" || name == EngineAuto {
		return nil, ErrNoEngine
	}
	return nil, fmt.Errorf("%w: %s", ErrNoEngine, name)
}
