package translation

import "strings"

// Mode is the direction of a communication style rewrite.
type Mode string

// Mode values.
const (
	ModeNTToND      Mode = "nt-to-nd"
	ModeNDToNT      Mode = "nd-to-nt"
	ModeUnspecified Mode = "unspecified"
)

// ParseMode maps a request token to a Mode. Unrecognised tokens yield
// ModeUnspecified rather than an error.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNTToND:
		return ModeNTToND
	case ModeNDToNT:
		return ModeNDToNT
	default:
		return ModeUnspecified
	}
}

// String returns the wire token for the mode.
func (m Mode) String() string {
	return string(m)
}

// Label returns a human readable description of the mode.
func (m Mode) Label() string {
	switch m {
	case ModeNTToND:
		return "Neurotypical to Neurodivergent"
	case ModeNDToNT:
		return "Neurodivergent to Neurotypical"
	default:
		return "Literal"
	}
}

// Tone is a stylistic modifier applied regardless of mode.
type Tone string

// Tone values.
const (
	ToneNeutral    Tone = "neutral"
	ToneFormal     Tone = "formal"
	ToneCasual     Tone = "casual"
	ToneEmpathetic Tone = "empathetic"
)

// ParseTone lowercases the token and maps it to a Tone. Unknown tones fall
// back to ToneNeutral so malformed input never fails a request.
func ParseTone(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case ToneFormal:
		return ToneFormal
	case ToneCasual:
		return ToneCasual
	case ToneEmpathetic:
		return ToneEmpathetic
	default:
		return ToneNeutral
	}
}

// String returns the wire token for the tone.
func (t Tone) String() string {
	return string(t)
}

// Tones returns every recognised tone in display order.
func Tones() []Tone {
	return []Tone{ToneNeutral, ToneFormal, ToneCasual, ToneEmpathetic}
}

// ParseExplain reports whether the explain_context token requests an analysis.
// Only "yes" (any case) is recognised as true.
func ParseExplain(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

func explainToken(explain bool) string {
	if explain {
		return "yes"
	}
	return "no"
}
