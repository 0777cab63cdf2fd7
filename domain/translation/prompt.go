package translation

import "strings"

// fragment produces one independent piece of the prompt. An empty string
// means the fragment does not apply to the request.
type fragment func(Request) string

// promptFragments is the fixed assembly order. The explain fragment must come
// first so the analysis marker precedes the translation marker.
var promptFragments = []fragment{
	explainFragment,
	modeFragment,
	phraseFragment,
	toneFragment,
}

// BuildPrompt composes the instruction sent to the completion service.
// It is pure and deterministic: the same request always yields the same prompt.
func BuildPrompt(req Request) string {
	mustBeValid(req)

	var b strings.Builder
	for _, f := range promptFragments {
		b.WriteString(f(req))
	}
	return b.String()
}

const explainInstruction = "Before rewriting, explain the overall intent and social context of the phrase below, " +
	"especially how it might be interpreted by someone neurodivergent versus someone neurotypical. " +
	"Write the explanation as a numbered list:\n" +
	"1. The literal meaning of the words.\n" +
	"2. The implied social expectation or hidden requirement, if there is one.\n" +
	"3. Anything the reader is expected to do, including deadlines and details.\n\n" +
	"Start the explanation with the label \"" + AnalysisMarker + "\" on its own line. " +
	"After the explanation, start the rewritten phrase with the label \"" + TranslationMarker + "\" on its own line.\n\n"

func explainFragment(req Request) string {
	if !req.Explain() {
		return ""
	}
	return explainInstruction
}

var modeInstructions = map[Mode]string{
	ModeNTToND: "Rewrite the phrase below from a neurotypical communication style into a neurodivergent communication style. " +
		"Remove indirect or optional phrasing and make it straightforward and clear. " +
		"State any implicit requirement or expectation explicitly. " +
		"Keep every deadline, name and detail from the original. " +
		"Write the rewritten phrase as plain flowing prose, without bullet points or numbered lists.",
	ModeNDToNT: "Rewrite the phrase below from a neurodivergent communication style into a neurotypical communication style. " +
		"Add gentle, polite phrasing and social context where it helps, but keep it respectful. " +
		"Preserve the core message and every detail of the original.",
	ModeUnspecified: "Rewrite the phrase below literally, keeping its meaning intact and changing only the tone as described.",
}

func modeFragment(req Request) string {
	instruction, ok := modeInstructions[req.Mode()]
	if !ok {
		instruction = modeInstructions[ModeUnspecified]
	}
	return instruction + "\n\n"
}

func phraseFragment(req Request) string {
	return "Phrase: \"" + req.Text() + "\"\n\n"
}

var toneInstructions = map[Tone]string{
	ToneNeutral:    "Try to keep the result neutral and polite.",
	ToneFormal:     "Make the result formal and professional.",
	ToneCasual:     "Use a relaxed, friendly style.",
	ToneEmpathetic: "Use an empathetic tone, focusing on support and understanding.",
}

func toneFragment(req Request) string {
	if instruction, ok := toneInstructions[req.Tone()]; ok {
		return instruction
	}
	return toneInstructions[ToneNeutral]
}
