package translation

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

// MinResponseLength is the shortest trimmed completion accepted as a usable
// translation. Shorter replies are almost always truncated.
const MinResponseLength = 10

// layout is the parse state chosen for a completion.
type layout int

const (
	layoutSingle layout = iota
	layoutTwoSection
)

// detectLayout is the single lookahead that picks the parse state.
func detectLayout(escaped string) layout {
	if strings.Contains(escaped, AnalysisMarker) && strings.Contains(escaped, TranslationMarker) {
		return layoutTwoSection
	}
	return layoutSingle
}

// Normalize turns a raw completion into a render-safe Result. It returns
// ErrTooShort for degenerate replies and ErrFormattingFailed for any internal
// fault; no other error escapes.
func Normalize(raw string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = Result{}, fmt.Errorf("%w: %v", ErrFormattingFailed, r)
		}
	}()

	trimmed := strings.TrimSpace(raw)
	if utf8.RuneCountInString(trimmed) < MinResponseLength {
		return Result{}, ErrTooShort
	}
	if !utf8.ValidString(trimmed) {
		return Result{}, fmt.Errorf("%w: invalid utf-8", ErrFormattingFailed)
	}

	escaped := html.EscapeString(trimmed)

	var sections []Section
	switch detectLayout(escaped) {
	case layoutTwoSection:
		sections = splitSections(escaped)
	default:
		sections = []Section{newBodySection(SectionTranslation, escaped)}
	}

	result, err = NewResult(sections...)
	if err != nil {
		return Result{}, errors.Join(ErrFormattingFailed, err)
	}
	return result, nil
}

// splitSections splits once on the first translation marker. A missing
// translation body falls back to the single-section layout.
func splitSections(escaped string) []Section {
	before, after, found := strings.Cut(escaped, TranslationMarker)
	translation := strings.TrimSpace(after)
	if !found || translation == "" {
		return []Section{newBodySection(SectionTranslation, escaped)}
	}

	analysis := strings.TrimSpace(strings.Replace(before, AnalysisMarker, "", 1))
	if analysis == "" {
		return []Section{newBodySection(SectionTranslation, translation)}
	}
	return []Section{
		newBodySection(SectionAnalysis, analysis),
		newBodySection(SectionTranslation, translation),
	}
}

func newBodySection(name SectionName, escaped string) Section {
	return NewSection(name, lineBreaks(strings.TrimSpace(escaped)))
}

// lineBreaks replaces a run of two or more newlines with <br><br> and a
// single newline with <br>.
func lineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	run := 0
	flush := func() {
		switch {
		case run == 1:
			b.WriteString("<br>")
		case run > 1:
			b.WriteString("<br><br>")
		}
		run = 0
	}
	for _, r := range s {
		if r == '\n' {
			run++
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}
