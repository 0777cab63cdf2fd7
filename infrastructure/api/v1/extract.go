package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/infrastructure/api/middleware"
	"github.com/helixml/plainspeak/infrastructure/api/v1/dto"
)

// ExtractRouter handles image text extraction.
type ExtractRouter struct {
	client *plainspeak.Client
	logger *slog.Logger
}

// NewExtractRouter creates a new ExtractRouter.
func NewExtractRouter(client *plainspeak.Client) *ExtractRouter {
	return &ExtractRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for extraction endpoints.
func (r *ExtractRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", r.Extract)

	return router
}

// Extract handles POST /api/v1/extract with a multipart image field.
func (r *ExtractRouter) Extract(w http.ResponseWriter, req *http.Request) {
	body, err := parseUpload(w, req, r.client.Capabilities().MaxImageBytes)
	if err != nil {
		writeError(w, req, err, r.logger)
		return
	}
	if body.image == nil {
		writeError(w, req, middleware.NewAPIError(http.StatusBadRequest, "Please upload an image.", nil), r.logger)
		return
	}

	text, err := r.client.ExtractText(req.Context(), body.image)
	if err != nil {
		writeError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ExtractResponse{Text: text})
}
