package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
)

var errPayloadTooLarge = errors.New("payload too large")

// clientMessages holds the exact error text returned for request-level causes.
var clientMessages = []struct {
	cause   error
	message string
}{
	{domain.ErrNoFile, "No file uploaded"},
	{domain.ErrInvalidPDF, "Invalid PDF"},
	{domain.ErrNoImage, "No image uploaded"},
	{domain.ErrEmptyImage, "Empty image received"},
	{domain.ErrInvalidImage, "Invalid image data"},
	{domain.ErrNoFace, "No face detected"},
	{domain.ErrNoQuestion, "No question provided"},
	{domain.ErrNoDocuments, "No documents available"},
	{domain.ErrInvalidJSON, "Invalid JSON body"},
	{errPayloadTooLarge, "File too large"},
	{domain.ErrOverloaded, "Server is overloaded, retry later"},
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, errPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrUpstream):
		return http.StatusInternalServerError
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrOverloaded):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing text for err. Upstream failures are
// surfaced verbatim.
func errorMessage(err error, status int) string {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Error()
	}
	for _, m := range clientMessages {
		if errors.Is(err, m.cause) {
			return m.message
		}
	}

	switch status {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusServiceUnavailable:
		return "Service temporarily unavailable"
	default:
		return "Internal server error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": errorMessage(err, status)})
}
