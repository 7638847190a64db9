package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/media"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/mock"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/normalize"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/ollama"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/openai"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/pkg/config"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/pkg/logging"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/ports"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/usecase"
)

// app holds everything both serve and models need.
type app struct {
	cfg        config.Config
	logger     zerolog.Logger
	registry   *usecase.Registry
	rasterizer ports.RasterizerPort
}

func loadApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	logging.Setup(logger)

	normalizer, err := normalize.FromFile(cfg.StructuredSchema)
	if err != nil {
		return nil, fmt.Errorf("structured schema: %w", err)
	}

	reg, err := usecase.NewRegistry(buildProviders(cfg, flags.mock, normalizer)...)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, registry: reg}
	if !cfg.PDF.Disabled {
		a.rasterizer = media.NewRasterizer(media.RasterizerConfig{
			Pdftoppm: cfg.PDF.Pdftoppm,
			DPI:      cfg.PDF.DPI,
			MaxPages: cfg.PDF.MaxPages,
		})
	}
	return a, nil
}

// buildProviders returns the closed provider set: OpenAI and OpenRouter
// always, Ollama when an endpoint is configured, mock on request.
func buildProviders(cfg config.Config, withMock bool, n *normalize.Normalizer) []ports.ProviderPort {
	p := cfg.Providers
	providers := []ports.ProviderPort{
		openai.NewOpenAI(openai.Config{
			APIKey:      p.OpenAI.APIKey,
			BaseURL:     p.OpenAI.BaseURL,
			Models:      orDefault(p.OpenAI.Models, openai.DefaultOpenAIModels),
			LiveCatalog: p.OpenAI.LiveCatalog,
			Prompt:      cfg.Prompt,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.FileTimeout,
		}, n),
		openai.NewOpenRouter(openai.Config{
			APIKey:      p.OpenRouter.APIKey,
			BaseURL:     p.OpenRouter.BaseURL,
			Models:      orDefault(p.OpenRouter.Models, openai.DefaultOpenRouterModels),
			LiveCatalog: p.OpenRouter.LiveCatalog,
			Prompt:      cfg.Prompt,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.FileTimeout,
		}, n),
	}

	if cfg.OllamaEnabled() {
		providers = append(providers, ollama.NewOllamaAdapter(ollama.Config{
			BaseURL: p.Ollama.BaseURL,
			Models:  p.Ollama.Models,
			// without a static list the local daemon is the only source of truth
			LiveCatalog: p.Ollama.LiveCatalog || len(p.Ollama.Models) == 0,
			Prompt:      cfg.Prompt,
			NumPredict:  cfg.MaxTokens,
			Timeout:     cfg.FileTimeout,
		}, n))
	}

	if withMock {
		providers = append(providers, mock.New())
	}
	return providers
}

func orDefault(v, def []string) []string {
	if len(v) > 0 {
		return v
	}
	return def
}
