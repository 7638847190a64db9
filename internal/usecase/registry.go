package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/ports"
)

// Registry maps provider names to adapters. It is built once at startup and
// read concurrently afterwards.
type Registry struct {
	byName map[string]ports.ProviderPort
	order  []string
}

func NewRegistry(providers ...ports.ProviderPort) (*Registry, error) {
	r := &Registry{byName: make(map[string]ports.ProviderPort, len(providers))}
	for _, p := range providers {
		name := p.Name()
		if name == "" {
			return nil, errors.New("provider with empty name")
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate provider %q", name)
		}
		r.byName[name] = p
		r.order = append(r.order, name)
	}
	return r, nil
}

func (r *Registry) Resolve(name string) (ports.ProviderPort, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

// ListModels returns the provider's catalog. Catalog failures come back as
// *domain.ProviderError so callers can tell them apart from an unknown name.
func (r *Registry) ListModels(ctx context.Context, name string) ([]string, error) {
	p, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	models, err := p.ListModels(ctx)
	if err != nil {
		var perr *domain.ProviderError
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, &domain.ProviderError{Provider: name, Kind: domain.KindFromTransportError(err), Err: err}
	}
	if models == nil {
		models = []string{}
	}
	return models, nil
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Check(ctx context.Context, name string) (bool, string) {
	p, err := r.Resolve(name)
	if err != nil {
		return false, "unknown provider"
	}
	if !p.Available() {
		return false, unavailableReason(name)
	}
	return true, "OK: " + name
}

func unavailableReason(name string) string {
	switch name {
	case "OpenAI", "OpenRouter":
		return "no API key"
	case "Ollama":
		return "ollama unreachable"
	default:
		return "unavailable"
	}
}
