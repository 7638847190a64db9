package openai

import (
	"errors"
	"net/http"
	"strings"
	"time"

	gopenai "github.com/sashabaranov/go-openai"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

const (
	ProviderOpenAI     = "OpenAI"
	ProviderOpenRouter = "OpenRouter"

	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	DefaultPrompt    = "Return JSON document with data extracted from this image. Only return JSON, not other text."
	DefaultMaxTokens = 1000
	DefaultTimeout   = 2 * time.Minute
)

var (
	DefaultOpenAIModels = []string{
		"gpt-4o-mini-2024-07-18",
		"gpt-4o-2024-08-06",
	}
	DefaultOpenRouterModels = []string{
		"openai/chatgpt-4o-latest",
		"openai/gpt-4o-mini-2024-07-18",
		"mistralai/pixtral-12b:free",
		"meta-llama/llama-3.1-405b",
		"google/gemini-pro-vision",
	}
)

type Config struct {
	Name        string
	APIKey      string
	BaseURL     string
	Models      []string // static catalog, used unless LiveCatalog is set
	LiveCatalog bool
	Prompt      string
	MaxTokens   int
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// classify maps a go-openai error to an error kind and a caller-facing message.
func classify(err error) (domain.ErrorKind, string) {
	var apiErr *gopenai.APIError
	if errors.As(err, &apiErr) {
		kind := domain.KindFromStatus(apiErr.HTTPStatusCode)
		if kind == domain.ErrorKindUnknown && apiErr.HTTPStatusCode == http.StatusBadRequest && isMediaError(apiErr.Message) {
			kind = domain.ErrorKindUnsupportedMedia
		}
		return kind, apiErr.Message
	}

	var reqErr *gopenai.RequestError
	if errors.As(err, &reqErr) {
		return domain.KindFromStatus(reqErr.HTTPStatusCode), reqErr.Error()
	}

	return domain.KindFromTransportError(err), err.Error()
}

func isMediaError(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "image") &&
		(strings.Contains(m, "invalid") || strings.Contains(m, "unsupported") || strings.Contains(m, "could not process"))
}
