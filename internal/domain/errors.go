package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrValidation        = errors.New("ValidationError")
	ErrUnknownProvider   = errors.New("UnknownProvider")
	ErrUnsupportedFormat = errors.New("UnsupportedFormat")
	ErrEncoding          = errors.New("EncodingFailure")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ProviderError is a request-level failure of a provider call that is not a
// per-file extraction, e.g. a model catalog lookup.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindFromStatus maps an upstream HTTP status to an error kind.
func KindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrorKindAuth
	case status == http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case status == http.StatusUnsupportedMediaType, status == http.StatusRequestEntityTooLarge:
		return ErrorKindUnsupportedMedia
	case status == http.StatusRequestTimeout, status >= 500:
		return ErrorKindProviderUnavailable
	default:
		return ErrorKindUnknown
	}
}

// KindFromTransportError classifies errors raised before an HTTP status was
// received.
func KindFromTransportError(err error) ErrorKind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindProviderUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorKindProviderUnavailable
	}
	return ErrorKindUnknown
}
