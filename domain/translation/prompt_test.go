package translation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePhrase = "Would you mind maybe sending over the quarterly report by Friday if you get a chance?"

func mustRequest(t *testing.T, text string, mode Mode, tone Tone, explain bool) Request {
	t.Helper()
	req, err := NewRequest(text, mode, tone, explain)
	require.NoError(t, err)
	return req
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	for _, mode := range []Mode{ModeNTToND, ModeNDToNT, ModeUnspecified} {
		for _, tone := range Tones() {
			for _, explain := range []bool{false, true} {
				req := mustRequest(t, samplePhrase, mode, tone, explain)
				assert.Equal(t, BuildPrompt(req), BuildPrompt(req))
			}
		}
	}
}

func TestBuildPrompt_ToneFallback(t *testing.T) {
	unknown := mustRequest(t, samplePhrase, ModeNTToND, ParseTone("unknown-tone"), false)
	neutral := mustRequest(t, samplePhrase, ModeNTToND, ToneNeutral, false)

	assert.Equal(t, toneFragment(neutral), toneFragment(unknown))
	assert.Equal(t, BuildPrompt(neutral), BuildPrompt(unknown))
	assert.True(t, strings.HasSuffix(BuildPrompt(unknown), "Try to keep the result neutral and polite."))
}

func TestBuildPrompt_ToneFragmentIgnoresUnvalidatedTone(t *testing.T) {
	req := Request{text: samplePhrase, mode: ModeNDToNT, tone: Tone("shouty")}
	assert.Equal(t, toneInstructions[ToneNeutral], toneFragment(req))
}

func TestBuildPrompt_TextEmbeddedExactlyOnce(t *testing.T) {
	for _, mode := range []Mode{ModeNTToND, ModeNDToNT, ModeUnspecified} {
		for _, explain := range []bool{false, true} {
			req := mustRequest(t, samplePhrase, mode, ToneFormal, explain)
			prompt := BuildPrompt(req)
			assert.Equal(t, 1, strings.Count(prompt, samplePhrase), "mode=%s explain=%v", mode, explain)
			assert.Contains(t, prompt, `"`+samplePhrase+`"`)
		}
	}
}

func TestBuildPrompt_ModeInstructions(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want []string
	}{
		{
			name: "nt to nd",
			mode: ModeNTToND,
			want: []string{"neurotypical communication style into a neurodivergent", "explicitly", "deadline", "without bullet points"},
		},
		{
			name: "nd to nt",
			mode: ModeNDToNT,
			want: []string{"neurodivergent communication style into a neurotypical", "polite", "core message"},
		},
		{
			name: "unspecified",
			mode: ModeUnspecified,
			want: []string{"literally"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildPrompt(mustRequest(t, samplePhrase, tt.mode, ToneNeutral, false))
			for _, w := range tt.want {
				assert.Contains(t, prompt, w)
			}
		})
	}
}

func TestBuildPrompt_FragmentOrder(t *testing.T) {
	req := mustRequest(t, samplePhrase, ModeNDToNT, ToneCasual, true)
	prompt := BuildPrompt(req)

	mode := strings.Index(prompt, "Rewrite the phrase below")
	phrase := strings.Index(prompt, samplePhrase)
	tone := strings.Index(prompt, "Use a relaxed, friendly style.")

	require.NotEqual(t, -1, mode)
	assert.Less(t, strings.Index(prompt, "Before rewriting"), mode)
	assert.Less(t, mode, phrase)
	assert.Less(t, phrase, tone)
}

func TestBuildPrompt_ExplainToggle(t *testing.T) {
	for _, mode := range []Mode{ModeNTToND, ModeNDToNT, ModeUnspecified} {
		plain := BuildPrompt(mustRequest(t, samplePhrase, mode, ToneEmpathetic, false))
		explained := BuildPrompt(mustRequest(t, samplePhrase, mode, ToneEmpathetic, true))

		assert.True(t, strings.HasSuffix(explained, plain), "explain prompt must extend the plain prompt")
		assert.Greater(t, len(explained), len(plain))
		assert.Contains(t, explained, "numbered list")

		analysis := strings.Index(explained, AnalysisMarker)
		translation := strings.Index(explained, TranslationMarker)
		require.NotEqual(t, -1, analysis)
		require.NotEqual(t, -1, translation)
		assert.Less(t, analysis, translation)

		assert.NotContains(t, plain, AnalysisMarker)
		assert.NotContains(t, plain, TranslationMarker)
	}
}

func TestBuildPrompt_NoDisclaimer(t *testing.T) {
	prompt := BuildPrompt(mustRequest(t, samplePhrase, ModeNTToND, ToneNeutral, true))
	assert.NotContains(t, prompt, Disclaimer)
}
