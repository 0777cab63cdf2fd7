package translation

// Section labels shared by the prompt builder and the response normalizer.
// The builder asks the model to emit these exact tokens and the normalizer
// detects them, so both sides must read them from here.
const (
	AnalysisMarker    = "Analysis:"
	TranslationMarker = "Translation:"
)

// SectionName identifies a rendered result section.
type SectionName string

// SectionName values.
const (
	SectionAnalysis    SectionName = "Analysis"
	SectionTranslation SectionName = "Translation"
)

// Disclaimer accompanies every result shown to users. It is not part of the
// prompt sent to the completion service.
const Disclaimer = "This is a helpful suggestion, not a perfect translation. Real communication styles can vary widely."
