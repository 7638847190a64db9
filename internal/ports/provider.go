package ports

import (
	"context"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

type ProviderPort interface {
	Name() string
	// Available reports whether the provider is configured well enough to be called.
	Available() bool
	ListModels(ctx context.Context) ([]string, error)
	// Extract never returns an error: provider failures come back as a
	// domain.Failure result for the request's file.
	Extract(ctx context.Context, req domain.ExtractionRequest) domain.ExtractionResult
}
