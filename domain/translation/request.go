// Package translation holds the communication style rewrite domain: request
// values, prompt construction, response normalisation and cache keys.
package translation

import (
	"fmt"
	"unicode/utf8"
)

// MaxTextLength is the maximum number of characters accepted after sanitisation.
const MaxTextLength = 1000

// Request is a validated rewrite request.
type Request struct {
	text    string
	mode    Mode
	tone    Tone
	explain bool
}

// NewRequest creates a Request. The text must already be sanitised and hold
// between 1 and MaxTextLength characters.
func NewRequest(text string, mode Mode, tone Tone, explain bool) (Request, error) {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return Request{}, ErrEmptyText
	}
	if n > MaxTextLength {
		return Request{}, fmt.Errorf("%w: %d > %d characters", ErrTextTooLong, n, MaxTextLength)
	}
	return Request{
		text:    text,
		mode:    ParseMode(string(mode)),
		tone:    ParseTone(string(tone)),
		explain: explain,
	}, nil
}

// Text returns the sanitised input text.
func (r Request) Text() string { return r.text }

// Mode returns the rewrite direction.
func (r Request) Mode() Mode { return r.mode }

// Tone returns the requested tone.
func (r Request) Tone() Tone { return r.tone }

// Explain reports whether an analysis section was requested.
func (r Request) Explain() bool { return r.explain }

// Fields are the raw request-layer values before parsing.
type Fields struct {
	Text           string
	Mode           string
	Tone           string
	ExplainContext string
}

// ParseRequest sanitises and parses raw request fields.
func ParseRequest(f Fields) (Request, error) {
	return NewRequest(
		Sanitize(f.Text),
		ParseMode(f.Mode),
		ParseTone(f.Tone),
		ParseExplain(f.ExplainContext),
	)
}
