package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/normalize"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

const (
	ProviderName   = "Ollama"
	DefaultPrompt  = "Return JSON document with data extracted from this image. Only return JSON, not other text."
	DefaultTimeout = 5 * time.Minute
)

type Config struct {
	BaseURL     string
	Models      []string
	LiveCatalog bool
	Prompt      string
	NumPredict  int
	Timeout     time.Duration
}

type OllamaAdapter struct {
	cfg        Config
	httpClient *http.Client
	normalizer *normalize.Normalizer
}

// BaseURLFromHost builds the conventional Ollama address for a host IP.
func BaseURLFromHost(hostIP string) string {
	return fmt.Sprintf("http://%s:11434", hostIP)
}

func NewOllamaAdapter(cfg Config, normalizer *normalize.Normalizer) *OllamaAdapter {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if normalizer == nil {
		normalizer = normalize.New()
	}
	return &OllamaAdapter{
		cfg:        cfg,
		httpClient: &http.Client{},
		normalizer: normalizer,
	}
}

func (o *OllamaAdapter) Name() string { return ProviderName }

func (o *OllamaAdapter) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url("/"), nil)
	if err != nil {
		return false
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (o *OllamaAdapter) ListModels(ctx context.Context) ([]string, error) {
	if !o.cfg.LiveCatalog {
		return slices.Clone(o.cfg.Models), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url("/api/tags"), nil)
	if err != nil {
		return nil, &domain.ProviderError{Provider: ProviderName, Kind: domain.ErrorKindUnknown, Err: err}
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: ProviderName, Kind: domain.KindFromTransportError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ProviderError{
			Provider: ProviderName,
			Kind:     domain.KindFromStatus(resp.StatusCode),
			Err:      fmt.Errorf("ollama API error: %d", resp.StatusCode),
		}
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, &domain.ProviderError{Provider: ProviderName, Kind: domain.ErrorKindUnknown, Err: fmt.Errorf("decode tags: %w", err)}
	}

	ids := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		ids = append(ids, m.Name)
	}
	sort.Strings(ids)
	return ids, nil
}

func (o *OllamaAdapter) Extract(ctx context.Context, req domain.ExtractionRequest) domain.ExtractionResult {
	logger := zerolog.Ctx(ctx).With().
		Str("provider", ProviderName).
		Str("model", req.Model).
		Str("file", req.Filename).
		Int("page", req.Page).
		Logger()

	payload := o.buildChatRequest(req)

	// tie Ollama timeout to incoming ctx
	ollamaCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	raw, err := o.sendRequest(ollamaCtx, payload)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(err.kind)).Msg("ollama request failed")
		return domain.Failure(req.Filename, err.kind, err.msg)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		logger.Error().Err(err).Msg("failed to decode ollama response json")
		return domain.Failure(req.Filename, domain.ErrorKindUnknown, "decode ollama response: "+err.Error())
	}
	if chatResp.Error != "" {
		return domain.Failure(req.Filename, domain.ErrorKindUnknown, chatResp.Error)
	}
	if strings.TrimSpace(chatResp.Message.Content) == "" {
		return domain.Failure(req.Filename, domain.ErrorKindUnknown, "ollama returned empty response")
	}

	text, fields := o.normalizer.Normalize(chatResp.Message.Content)
	logger.Debug().
		Str("ollama_model", chatResp.Model).
		Int("text_len", len(text)).
		Bool("structured", fields != nil).
		Msg("ollama response")

	return domain.Success(req.Filename, text, fields)
}

type sendError struct {
	kind domain.ErrorKind
	msg  string
}

func (e *sendError) Error() string { return e.msg }

func (o *OllamaAdapter) sendRequest(ctx context.Context, payload chatRequest) ([]byte, *sendError) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &sendError{kind: domain.ErrorKindUnknown, msg: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url("/api/chat"), bytes.NewReader(body))
	if err != nil {
		return nil, &sendError{kind: domain.ErrorKindUnknown, msg: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &sendError{kind: domain.KindFromTransportError(err), msg: "ollama API connection error"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &sendError{kind: domain.ErrorKindProviderUnavailable, msg: "read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		kind := domain.KindFromStatus(resp.StatusCode)
		var e struct {
			Error string `json:"error"`
		}
		msg := fmt.Sprintf("ollama API error: %d", resp.StatusCode)
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = fmt.Sprintf("%s - %s", msg, e.Error)
			if kind == domain.ErrorKindUnknown && strings.Contains(strings.ToLower(e.Error), "image") {
				kind = domain.ErrorKindUnsupportedMedia
			}
		}
		return nil, &sendError{kind: kind, msg: msg}
	}

	return raw, nil
}

func (o *OllamaAdapter) buildChatRequest(req domain.ExtractionRequest) chatRequest {
	r := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: o.cfg.Prompt,
			Images:  []string{base64.StdEncoding.EncodeToString(req.Data)},
		}},
		Stream: false,
		Options: &chatOptions{
			Temperature: 0,
		},
	}
	if o.cfg.NumPredict > 0 {
		r.Options.NumPredict = o.cfg.NumPredict
	}
	return r
}

func (o *OllamaAdapter) url(path string) string {
	return strings.TrimRight(o.cfg.BaseURL, "/") + path
}
