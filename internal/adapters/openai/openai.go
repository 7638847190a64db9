package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog"
	gopenai "github.com/sashabaranov/go-openai"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/normalize"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

// Adapter talks to any OpenAI-compatible chat completions API. OpenAI and
// OpenRouter are both served by it, differing only in Config.
type Adapter struct {
	cfg        Config
	client     *gopenai.Client
	normalizer *normalize.Normalizer
}

func NewAdapter(cfg Config, normalizer *normalize.Normalizer) *Adapter {
	cfg = cfg.withDefaults()
	if normalizer == nil {
		normalizer = normalize.New()
	}

	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Adapter{
		cfg:        cfg,
		client:     gopenai.NewClientWithConfig(clientCfg),
		normalizer: normalizer,
	}
}

// NewOpenAI returns the adapter registered as "OpenAI".
func NewOpenAI(cfg Config, normalizer *normalize.Normalizer) *Adapter {
	cfg.Name = ProviderOpenAI
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenAIBaseURL
	}
	return NewAdapter(cfg, normalizer)
}

// NewOpenRouter returns the adapter registered as "OpenRouter".
func NewOpenRouter(cfg Config, normalizer *normalize.Normalizer) *Adapter {
	cfg.Name = ProviderOpenRouter
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	return NewAdapter(cfg, normalizer)
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) Available() bool { return a.cfg.APIKey != "" }

func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	if !a.cfg.LiveCatalog {
		return slices.Clone(a.cfg.Models), nil
	}
	if a.cfg.APIKey == "" {
		return nil, &domain.ProviderError{Provider: a.cfg.Name, Kind: domain.ErrorKindAuth, Err: errors.New("missing API key")}
	}

	list, err := a.client.ListModels(ctx)
	if err != nil {
		kind, _ := classify(err)
		return nil, &domain.ProviderError{Provider: a.cfg.Name, Kind: kind, Err: err}
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (a *Adapter) Extract(ctx context.Context, req domain.ExtractionRequest) domain.ExtractionResult {
	logger := zerolog.Ctx(ctx).With().
		Str("provider", a.cfg.Name).
		Str("model", req.Model).
		Str("file", req.Filename).
		Int("page", req.Page).
		Logger()

	if a.cfg.APIKey == "" {
		return domain.Failure(req.Filename, domain.ErrorKindAuth, fmt.Sprintf("no API key configured for %s", a.cfg.Name))
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, a.buildRequest(req))
	if err != nil {
		kind, msg := classify(err)
		logger.Warn().Err(err).Str("kind", string(kind)).Dur("elapsed", time.Since(start)).Msg("chat completion failed")
		return domain.Failure(req.Filename, kind, msg)
	}
	if len(resp.Choices) == 0 {
		logger.Warn().Msg("chat completion returned no choices")
		return domain.Failure(req.Filename, domain.ErrorKindUnknown, "empty response choices")
	}

	text, fields := a.normalizer.Normalize(resp.Choices[0].Message.Content)
	logger.Debug().
		Int("text_len", len(text)).
		Bool("structured", fields != nil).
		Int("total_tokens", resp.Usage.TotalTokens).
		Dur("elapsed", time.Since(start)).
		Msg("chat completion ok")

	return domain.Success(req.Filename, text, fields)
}

func (a *Adapter) buildRequest(req domain.ExtractionRequest) gopenai.ChatCompletionRequest {
	return gopenai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: a.cfg.MaxTokens,
		Messages: []gopenai.ChatCompletionMessage{
			{
				Role: gopenai.ChatMessageRoleUser,
				MultiContent: []gopenai.ChatMessagePart{
					{Type: gopenai.ChatMessagePartTypeText, Text: a.cfg.Prompt},
					{
						Type: gopenai.ChatMessagePartTypeImageURL,
						ImageURL: &gopenai.ChatMessageImageURL{
							URL:    dataURL(req.MediaType, req.Data),
							Detail: gopenai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}
}

func dataURL(mediaType string, data []byte) string {
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
