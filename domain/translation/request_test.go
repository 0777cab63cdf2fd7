package translation

import (
	"html"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"nt-to-nd":   ModeNTToND,
		" ND-TO-NT ": ModeNDToNT,
		"":           ModeUnspecified,
		"sideways":   ModeUnspecified,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseMode(in), "input %q", in)
	}
}

func TestParseTone(t *testing.T) {
	tests := map[string]Tone{
		"neutral":    ToneNeutral,
		"FORMAL":     ToneFormal,
		"Casual":     ToneCasual,
		"empathetic": ToneEmpathetic,
		"":           ToneNeutral,
		"sarcastic":  ToneNeutral,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseTone(in), "input %q", in)
	}
}

func TestParseExplain(t *testing.T) {
	assert.True(t, ParseExplain("yes"))
	assert.True(t, ParseExplain("YES"))
	assert.False(t, ParseExplain("no"))
	assert.False(t, ParseExplain(""))
	assert.False(t, ParseExplain("true"))
}

func TestNewRequest_Validation(t *testing.T) {
	_, err := NewRequest("", ModeNTToND, ToneNeutral, false)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = NewRequest(strings.Repeat("a", MaxTextLength+1), ModeNTToND, ToneNeutral, false)
	assert.ErrorIs(t, err, ErrTextTooLong)

	req, err := NewRequest(strings.Repeat("é", MaxTextLength), ModeNTToND, ToneNeutral, false)
	require.NoError(t, err)
	assert.Equal(t, MaxTextLength, len([]rune(req.Text())))
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest(Fields{
		Text:           "  <b>Could you</b>   possibly\n\nhelp?  ",
		Mode:           "nt-to-nd",
		Tone:           "Formal",
		ExplainContext: "Yes",
	})
	require.NoError(t, err)

	assert.Equal(t, "Could you possibly help?", req.Text())
	assert.Equal(t, ModeNTToND, req.Mode())
	assert.Equal(t, ToneFormal, req.Tone())
	assert.True(t, req.Explain())
}

func TestParseRequest_MarkupOnlyIsEmpty(t *testing.T) {
	_, err := ParseRequest(Fields{Text: "<p>   </p>"})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"plain text":                        "plain text",
		"  spaced\t\tout \n text ":          "spaced out text",
		"<b>bold</b> move":                  "bold move",
		"Tom &amp; Jerry":                   "Tom & Jerry",
		"<script>alert(1)</script>Hi there": "Hi there",
		"3 &lt; 5":                          "3 < 5",

		"&lt;img src=x onerror=alert(1)&gt;":            "",
		"&lt;script&gt;alert(1)&lt;/script&gt; hello":   "hello",
		"&amp;lt;b&amp;gt;nested&amp;lt;/b&amp;gt; ok": "nested ok",
	}
	for in, want := range tests {
		assert.Equal(t, want, Sanitize(in), "input %q", in)
	}
}

func TestSanitize_NeverReturnsTags(t *testing.T) {
	deep := "<iframe src=x></iframe>"
	for range 12 {
		deep = html.EscapeString(deep)
	}

	inputs := []string{
		"&lt;img src=x onerror=alert(1)&gt;",
		"&#60;a href=javascript:alert(1)&#62;click&#60;/a&#62;",
		deep,
	}
	for _, in := range inputs {
		out := Sanitize(in)
		assert.NotContains(t, out, "<", "input %q", in)
		assert.NotContains(t, out, ">", "input %q", in)
	}
}

func TestParseRequest_EncodedMarkupOnlyIsEmpty(t *testing.T) {
	_, err := ParseRequest(Fields{Text: "&lt;img src=x onerror=alert(1)&gt;"})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "Please enter some text.", UserMessage(ErrEmptyText))
	assert.Contains(t, UserMessage(ErrTooShort), "try again")
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(assert.AnError))
	assert.NotContains(t, UserMessage(assert.AnError), assert.AnError.Error())
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsInputError(ErrTextTooLong))
	assert.False(t, IsInputError(ErrServiceUnavailable))
	assert.True(t, IsRejection(ErrTooShort))
	assert.True(t, IsRejection(ErrFormattingFailed))
	assert.False(t, IsRejection(ErrEmptyText))
}
