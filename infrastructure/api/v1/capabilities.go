package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/api/middleware"
	"github.com/helixml/plainspeak/infrastructure/api/v1/dto"
)

// CapabilitiesRouter reports what the server can do.
type CapabilitiesRouter struct {
	client *plainspeak.Client
}

// NewCapabilitiesRouter creates a new CapabilitiesRouter.
func NewCapabilitiesRouter(client *plainspeak.Client) *CapabilitiesRouter {
	return &CapabilitiesRouter{client: client}
}

// Routes returns the chi router for the capabilities endpoint.
func (r *CapabilitiesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Get)

	return router
}

// Get handles GET /api/v1/capabilities.
func (r *CapabilitiesRouter) Get(w http.ResponseWriter, _ *http.Request) {
	caps := r.client.Capabilities()

	tones := translation.Tones()
	toneNames := make([]string, len(tones))
	for i, t := range tones {
		toneNames[i] = t.String()
	}

	middleware.WriteJSON(w, http.StatusOK, dto.CapabilitiesResponse{
		CompletionProvider: caps.CompletionProvider,
		OCREngine:          caps.OCREngine,
		OCRAvailable:       caps.OCRAvailable,
		CacheBackend:       caps.CacheBackend,
		MaxImageBytes:      caps.MaxImageBytes,
		MaxTextLength:      caps.MaxTextLength,
		Modes:              []string{translation.ModeNTToND.String(), translation.ModeNDToNT.String()},
		Tones:              toneNames,
	})
}
