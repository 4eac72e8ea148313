package fakes3

import (
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/s3req/s3req"
)

// ErrorResponse is the S3-style XML error body.
type ErrorResponse struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource"`
	RequestID string   `xml:"RequestId"`
}

// WriteError writes an S3-style XML error response.
func WriteError(w http.ResponseWriter, status int, code, message, resource string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	body := ErrorResponse{
		Code:      code,
		Message:   message,
		Resource:  resource,
		RequestID: uuid.NewString(),
	}
	if err := xml.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the appropriate error response based on error type.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request error", "method", r.Method, "path", r.URL.Path, "error", err)

	switch {
	case errors.Is(err, s3req.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.", r.URL.Path)
	case errors.Is(err, s3req.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "InvalidArgument", "Invalid key.", r.URL.Path)
	case errors.Is(err, s3req.ErrUnauthorized):
		WriteError(w, http.StatusForbidden, "SignatureDoesNotMatch", err.Error(), r.URL.Path)
	default:
		WriteError(w, http.StatusInternalServerError, "InternalError", "We encountered an internal error.", r.URL.Path)
	}
}
