package translation

import "errors"

// Input errors.
var (
	ErrEmptyText             = errors.New("text is empty")
	ErrTextTooLong           = errors.New("text exceeds maximum length")
	ErrImageTooLarge         = errors.New("image exceeds maximum size")
	ErrUnsupportedImage      = errors.New("unsupported image type")
	ErrNoTextFound           = errors.New("no text found in image")
	ErrExtractionUnavailable = errors.New("text extraction unavailable")
)

// Output and upstream errors.
var (
	ErrTooShort           = errors.New("completion too short")
	ErrFormattingFailed   = errors.New("formatting failed")
	ErrServiceUnavailable = errors.New("completion service unavailable")
	ErrRateLimited        = errors.New("rate limited")
)

// UserMessage returns the plain, actionable message shown to end users for err.
// It never includes the error text itself.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyText):
		return "Please enter some text."
	case errors.Is(err, ErrTextTooLong):
		return "Please keep your text under 1000 characters."
	case errors.Is(err, ErrImageTooLarge):
		return "That image is too large. Please upload a smaller image."
	case errors.Is(err, ErrUnsupportedImage):
		return "Please upload a PNG, JPEG, GIF, BMP, TIFF or WEBP image."
	case errors.Is(err, ErrNoTextFound):
		return "We couldn't find any text in that image. Please try another image or type the text."
	case errors.Is(err, ErrExtractionUnavailable):
		return "Reading text from images isn't available right now. Please type the text instead."
	case errors.Is(err, ErrTooShort):
		return "The response was too short. Please try again."
	case errors.Is(err, ErrFormattingFailed):
		return "We couldn't format the response. Please try again."
	case errors.Is(err, ErrServiceUnavailable):
		return "The translation service is temporarily unavailable. Please try again in a moment."
	case errors.Is(err, ErrRateLimited):
		return "Too many requests. Please wait a moment and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// IsInputError reports whether err was caused by the caller's input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrTextTooLong) ||
		errors.Is(err, ErrImageTooLarge) ||
		errors.Is(err, ErrUnsupportedImage) ||
		errors.Is(err, ErrNoTextFound)
}

// IsRejection reports whether err is a degenerate-output rejection that the
// user can recover from by retrying.
func IsRejection(err error) bool {
	return errors.Is(err, ErrTooShort) || errors.Is(err, ErrFormattingFailed)
}
