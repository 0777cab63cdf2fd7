// Package dto holds the request and response bodies of the v1 API.
package dto

// TranslateRequest is the JSON form of a translation request. Form and
// multipart requests use the same field names.
type TranslateRequest struct {
	InputText      string `json:"input_text"`
	Mode           string `json:"mode"`
	Tone           string `json:"tone"`
	ExplainContext string `json:"explain_context"`
}

// SectionSchema is one rendered section of a result.
type SectionSchema struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// TranslateResponse is returned by the translate endpoints.
type TranslateResponse struct {
	Result     string          `json:"result"`
	Sections   []SectionSchema `json:"sections"`
	Cached     bool            `json:"cached"`
	Disclaimer string          `json:"disclaimer"`
}

// ExtractResponse is returned by the extract endpoint.
type ExtractResponse struct {
	Text string `json:"text"`
}

// CapabilitiesResponse describes the running server.
type CapabilitiesResponse struct {
	CompletionProvider string   `json:"completion_provider"`
	OCREngine          string   `json:"ocr_engine"`
	OCRAvailable       bool     `json:"ocr_available"`
	CacheBackend       string   `json:"cache_backend"`
	MaxImageBytes      int64    `json:"max_image_bytes"`
	MaxTextLength      int      `json:"max_text_length"`
	Modes              []string `json:"modes"`
	Tones              []string `json:"tones"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status string `json:"status"`
}
