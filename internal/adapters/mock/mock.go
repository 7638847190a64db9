// Package mock provides an in-process provider for local development and tests.
package mock

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

const ProviderName = "mock"

var DefaultModels = []string{"mock-vision-1"}

type Adapter struct {
	name   string
	models []string

	// Delay is applied before each extraction, honouring ctx.
	Delay func(req domain.ExtractionRequest) time.Duration
	// Fail, when set, turns matching requests into failures.
	Fail func(req domain.ExtractionRequest) *domain.ExtractionError
	// CatalogErr makes ListModels fail.
	CatalogErr error

	mu    sync.Mutex
	calls []domain.ExtractionRequest
}

func New(models ...string) *Adapter {
	return NewNamed(ProviderName, models...)
}

func NewNamed(name string, models ...string) *Adapter {
	if len(models) == 0 {
		models = DefaultModels
	}
	return &Adapter{name: name, models: slices.Clone(models)}
}

func (a *Adapter) Name() string    { return a.name }
func (a *Adapter) Available() bool { return true }

func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	if a.CatalogErr != nil {
		return nil, &domain.ProviderError{Provider: a.name, Kind: domain.ErrorKindProviderUnavailable, Err: a.CatalogErr}
	}
	return slices.Clone(a.models), nil
}

func (a *Adapter) Extract(ctx context.Context, req domain.ExtractionRequest) domain.ExtractionResult {
	a.mu.Lock()
	a.calls = append(a.calls, req)
	a.mu.Unlock()

	if a.Delay != nil {
		if d := a.Delay(req); d > 0 {
			t := time.NewTimer(d)
			select {
			case <-ctx.Done():
				t.Stop()
				return domain.Failure(req.Filename, domain.ErrorKindProviderUnavailable, ctx.Err().Error())
			case <-t.C:
			}
		}
	}

	if a.Fail != nil {
		if e := a.Fail(req); e != nil {
			return domain.Failure(req.Filename, e.Kind, e.Message)
		}
	}

	zerolog.Ctx(ctx).Debug().Str("file", req.Filename).Int("page", req.Page).Msg("mock extraction")
	return domain.Success(req.Filename, Text(req), nil)
}

// Text is the deterministic output produced for req.
func Text(req domain.ExtractionRequest) string {
	if req.Page > 0 {
		return fmt.Sprintf("%s page %d (%d bytes)", req.Filename, req.Page, len(req.Data))
	}
	return fmt.Sprintf("%s (%d bytes)", req.Filename, len(req.Data))
}

// Calls returns the requests seen so far.
func (a *Adapter) Calls() []domain.ExtractionRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.calls)
}
