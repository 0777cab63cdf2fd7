// Package v1 implements the version 1 HTTP API.
package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/helixml/plainspeak"
	"github.com/helixml/plainspeak/domain/translation"
	"github.com/helixml/plainspeak/infrastructure/api/middleware"
	"github.com/helixml/plainspeak/infrastructure/api/v1/dto"
)

// Form field names shared by form, multipart and JSON requests.
const (
	FieldInputText      = "input_text"
	FieldMode           = "mode"
	FieldTone           = "tone"
	FieldExplainContext = "explain_context"
	FieldImage          = "image"
)

// formOverhead is the body allowance on top of the image size limit for the
// text fields and multipart framing.
const formOverhead = 1 << 20

// upload is a parsed request body.
type upload struct {
	fields translation.Fields
	image  []byte
}

func parseUpload(w http.ResponseWriter, req *http.Request, maxImage int64) (upload, error) {
	req.Body = http.MaxBytesReader(w, req.Body, maxImage+formOverhead)

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var body dto.TranslateRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			if tooLarge(err) {
				return upload{}, translation.ErrTextTooLong
			}
			return upload{}, unreadable(err)
		}
		return upload{fields: translation.Fields{
			Text:           body.InputText,
			Mode:           body.Mode,
			Tone:           body.Tone,
			ExplainContext: body.ExplainContext,
		}}, nil
	case "multipart/form-data":
		if err := req.ParseMultipartForm(maxImage + formOverhead); err != nil {
			if tooLarge(err) {
				return upload{}, translation.ErrImageTooLarge
			}
			return upload{}, unreadable(err)
		}
	default:
		if err := req.ParseForm(); err != nil {
			if tooLarge(err) {
				return upload{}, translation.ErrTextTooLong
			}
			return upload{}, unreadable(err)
		}
	}

	image, err := readImage(req, maxImage)
	if err != nil {
		return upload{}, err
	}
	return upload{
		fields: translation.Fields{
			Text:           req.PostFormValue(FieldInputText),
			Mode:           req.PostFormValue(FieldMode),
			Tone:           req.PostFormValue(FieldTone),
			ExplainContext: req.PostFormValue(FieldExplainContext),
		},
		image: image,
	}, nil
}

// readImage returns the uploaded image, or nil when none was sent.
func readImage(req *http.Request, maxImage int64) ([]byte, error) {
	if req.MultipartForm == nil {
		return nil, nil
	}
	file, _, err := req.FormFile(FieldImage)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, unreadable(err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxImage+1))
	if err != nil {
		return nil, unreadable(err)
	}
	if int64(len(data)) > maxImage {
		return nil, translation.ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func unreadable(err error) error {
	return middleware.NewAPIError(http.StatusBadRequest, "The request could not be read. Please try again.", err)
}

// writeError maps client-level failures before the shared status mapping.
func writeError(w http.ResponseWriter, req *http.Request, err error, logger *slog.Logger) {
	if errors.Is(err, plainspeak.ErrClientClosed) {
		err = middleware.NewAPIError(
			http.StatusServiceUnavailable,
			translation.UserMessage(translation.ErrServiceUnavailable),
			err,
		)
	}
	middleware.WriteError(w, req, err, logger)
}
