package services

import (
	"errors"
	"net/http"
)

var (
	// extraction
	ErrUnreadableDocument  = errors.New("unreadable document")
	ErrUnsupportedDocument = errors.New("unsupported document type")
	ErrDocumentTooLarge    = errors.New("document too large")

	// upstream
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// format
	ErrUnexpectedResponse = errors.New("unexpected response shape")
	ErrNoJSONBlock        = errors.New("no JSON block found")
	ErrMalformedJSON      = errors.New("malformed JSON")

	// input
	ErrMissingAPIKey         = errors.New("API key is required")
	ErrMissingResume         = errors.New("resume file is required")
	ErrMissingJobDescription = errors.New("job description is required")
	ErrInvalidDataset        = errors.New("invalid dataset")
)

type ErrorKind string

const (
	KindExtraction ErrorKind = "extraction"
	KindUpstream   ErrorKind = "upstream"
	KindFormat     ErrorKind = "format"
	KindInput      ErrorKind = "input"
	KindInternal   ErrorKind = "internal"
)

// Classify maps an error from the analysis pipeline to its kind and the HTTP
// status the API answers with.
func Classify(err error) (ErrorKind, int) {
	switch {
	case errors.Is(err, ErrDocumentTooLarge):
		return KindExtraction, http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnreadableDocument), errors.Is(err, ErrUnsupportedDocument):
		return KindExtraction, http.StatusUnprocessableEntity
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstream, http.StatusBadGateway
	case errors.Is(err, ErrUnexpectedResponse), errors.Is(err, ErrNoJSONBlock), errors.Is(err, ErrMalformedJSON):
		return KindFormat, http.StatusBadGateway
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, ErrMissingResume), errors.Is(err, ErrMissingJobDescription):
		return KindInput, http.StatusBadRequest
	default:
		return KindInternal, http.StatusInternalServerError
	}
}

// UserMessage is the wording shown on the page for a failed analysis.
func UserMessage(err error) string {
	kind, _ := Classify(err)
	switch kind {
	case KindExtraction:
		return "We could not read your document: " + err.Error()
	case KindUpstream:
		return "The analysis service is unavailable right now: " + err.Error()
	case KindFormat:
		return "Error processing the analysis data: " + err.Error() + ". Please check the API response format."
	case KindInput:
		return err.Error()
	default:
		return "Something went wrong: " + err.Error()
	}
}
