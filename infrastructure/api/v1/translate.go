package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/application/service"
	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/api/middleware"
	"github.com/helixml/plainspeak/infrastructure/api/v1/dto"
)

// TranslateRouter handles translation endpoints.
type TranslateRouter struct {
	client *plainspeak.Client
	logger *slog.Logger
}

// NewTranslateRouter creates a new TranslateRouter.
func NewTranslateRouter(client *plainspeak.Client) *TranslateRouter {
	return &TranslateRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for translation endpoints.
func (r *TranslateRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Translate)

	return router
}

// Translate handles POST / and POST /api/v1/translate.
//
// The body is a form, a JSON object or a multipart form with the fields
// input_text, mode, tone and explain_context. A multipart image replaces
// input_text with the text read from the image.
func (r *TranslateRouter) Translate(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	body, err := parseUpload(w, req, r.client.Capabilities().MaxImageBytes)
	if err != nil {
		writeError(w, req, err, r.logger)
		return
	}

	var result service.Translation
	if body.image != nil {
		result, err = r.client.TranslateImage(ctx, body.image, body.fields)
	} else {
		result, err = r.client.Translate(ctx, body.fields)
	}
	if err != nil {
		writeError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, NewTranslateResponse(result))
}

// NewTranslateResponse builds the response body for a translation.
func NewTranslateResponse(t service.Translation) dto.TranslateResponse {
	result := t.Result()
	sections := result.Sections()

	schemas := make([]dto.SectionSchema, len(sections))
	for i, s := range sections {
		schemas[i] = dto.SectionSchema{
			Name:    string(s.Name()),
			Content: s.Content(),
		}
	}

	return dto.TranslateResponse{
		Result:     result.HTML(),
		Sections:   schemas,
		Cached:     t.Cached(),
		Disclaimer: translation.Disclaimer,
	}
}
