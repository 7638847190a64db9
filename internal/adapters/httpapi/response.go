package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

const (
	kindValidation          = "ValidationError"
	kindUnknownProvider     = "UnknownProvider"
	kindUnsupportedFormat   = "UnsupportedFormat"
	kindEncoding            = "EncodingFailure"
	kindProviderUnavailable = "ProviderUnavailable"
	kindInternal            = "Internal"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, msg string) {
	writeJSON(w, code, errorResponse{Error: kind, Message: msg})
}

// errorKind names a request-level error for the response body.
func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return kindValidation
	case errors.Is(err, domain.ErrUnknownProvider):
		return kindUnknownProvider
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return kindUnsupportedFormat
	case errors.Is(err, domain.ErrEncoding):
		return kindEncoding
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return kindProviderUnavailable
	}
	return kindInternal
}
