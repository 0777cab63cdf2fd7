package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/helixml/plainspeak/infrastructure/provider"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is the vision model used when none is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// noTextToken is what the model is asked to answer for images without text.
const noTextToken = "NO_TEXT"

const transcribeInstruction = "Transcribe all readable text in this image exactly as written. " +
	"Preserve line breaks. Do not translate, summarise or comment. " +
	"If the image contains no readable text, answer " + noTextToken + "."

// GeminiConfig configures the Gemini vision engine.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Gemini extracts text with a Gemini vision model.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Gemini vision engine. Close releases the client.
func NewGemini(ctx context.Context, cfg GeminiConfig, opts ...option.ClientOption) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini ocr: %w", provider.ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini ocr: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}
	return &Gemini{client: client, model: model, timeout: timeout}, nil
}

// Name returns "gemini".
func (g *Gemini) Name() string { return EngineGemini }

// Available returns true once the client is constructed.
func (g *Gemini) Available() bool { return g != nil && g.client != nil }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Extract transcribes the text in img.
func (g *Gemini) Extract(ctx context.Context, img Image) (string, error) {
	if !g.Available() {
		return "", ErrEngineUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0)

	resp, err := m.GenerateContent(ctx,
		genai.Text(transcribeInstruction),
		genai.Blob{MIMEType: img.MIMEType(), Data: img.Data()},
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		}
		return "", fmt.Errorf("gemini ocr: %w", err)
	}
	return cleanTranscription(provider.GeminiText(resp)), nil
}

// cleanTranscription trims the model reply and maps the no-text token to "".
func cleanTranscription(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, noTextToken) {
		return ""
	}
	return s
}

var _ Engine = (*Gemini)(nil)
