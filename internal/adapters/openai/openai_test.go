package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func newTestAdapter(t *testing.T, h http.HandlerFunc, cfg Config) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/v1"
	cfg.Timeout = 5 * time.Second
	if cfg.APIKey == "" {
		cfg.APIKey = "sk-test"
	}
	return NewOpenAI(cfg, nil)
}

func extractReq() domain.ExtractionRequest {
	return domain.ExtractionRequest{
		Filename:  "receipt.png",
		Data:      []byte("png-bytes"),
		MediaType: "image/png",
		Provider:  ProviderOpenAI,
		Model:     "gpt-4o",
	}
}

func TestExtractSuccess(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization: got %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" {
			t.Errorf("model: got %q", req.Model)
		}
		if req.MaxTokens != DefaultMaxTokens {
			t.Errorf("max_tokens: got %d", req.MaxTokens)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Fatalf("unexpected message shape: %+v", req.Messages)
		}
		parts := req.Messages[0].Content
		if parts[0].Text != DefaultPrompt {
			t.Errorf("prompt: got %q", parts[0].Text)
		}
		if parts[1].ImageURL == nil || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("image url: got %+v", parts[1].ImageURL)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse("```json\n{\"merchant\":\"ACME\"}\n```")))
	}, Config{})

	res := a.Extract(context.Background(), extractReq())
	if !res.OK() {
		t.Fatalf("expected success, got %+v", res.Err)
	}
	if res.Filename != "receipt.png" {
		t.Errorf("filename: got %q", res.Filename)
	}
	if res.Text != `{"merchant":"ACME"}` {
		t.Errorf("text: got %q", res.Text)
	}
	if string(res.Fields) != `{"merchant":"ACME"}` {
		t.Errorf("fields: got %q", res.Fields)
	}
}

func TestExtractErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   domain.ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`, domain.ErrorKindAuth},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"Rate limit reached","type":"requests"}}`, domain.ErrorKindRateLimited},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, domain.ErrorKindProviderUnavailable},
		{"invalid image", http.StatusBadRequest, `{"error":{"message":"Invalid image data","type":"invalid_request_error"}}`, domain.ErrorKindUnsupportedMedia},
		{"bad model", http.StatusNotFound, `{"error":{"message":"model not found","type":"invalid_request_error"}}`, domain.ErrorKindUnknown},
		{"non-json gateway", http.StatusBadGateway, `upstream down`, domain.ErrorKindProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, Config{})

			res := a.Extract(context.Background(), extractReq())
			if res.OK() {
				t.Fatal("expected failure")
			}
			if res.Err.Kind != tt.want {
				t.Errorf("kind: got %q, want %q (message %q)", res.Err.Kind, tt.want, res.Err.Message)
			}
		})
	}
}

func TestExtractMissingKeySkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	a := NewOpenRouter(Config{BaseURL: srv.URL}, nil)
	res := a.Extract(context.Background(), extractReq())
	if res.OK() || res.Err.Kind != domain.ErrorKindAuth {
		t.Fatalf("expected AuthError, got %+v", res)
	}
	if called {
		t.Error("provider was called without an API key")
	}
	if a.Available() {
		t.Error("adapter without key should be unavailable")
	}
}

func TestExtractUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	a := NewOpenAI(Config{APIKey: "sk-test", BaseURL: url + "/v1", Timeout: time.Second}, nil)
	res := a.Extract(context.Background(), extractReq())
	if res.OK() || res.Err.Kind != domain.ErrorKindProviderUnavailable {
		t.Fatalf("expected ProviderUnavailable, got %+v", res)
	}
}

func TestExtractCancelledContext(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := a.Extract(ctx, extractReq())
	if res.OK() || res.Err.Kind != domain.ErrorKindProviderUnavailable {
		t.Fatalf("expected ProviderUnavailable, got %+v", res)
	}
}

func TestListModelsStatic(t *testing.T) {
	a := NewOpenAI(Config{Models: DefaultOpenAIModels}, nil)
	models, err := a.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0] != "gpt-4o-mini-2024-07-18" {
		t.Errorf("got %v", models)
	}

	models[0] = "mutated"
	again, _ := a.ListModels(context.Background())
	if again[0] != "gpt-4o-mini-2024-07-18" {
		t.Error("static catalog was mutated through the returned slice")
	}
}

func TestListModelsLive(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o","object":"model"},{"id":"gpt-4o-mini","object":"model"},{"id":"dall-e-3","object":"model"}]}`))
	}, Config{LiveCatalog: true})

	models, err := a.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	want := []string{"dall-e-3", "gpt-4o", "gpt-4o-mini"}
	if strings.Join(models, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", models, want)
	}
}

func TestListModelsLiveFailure(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"maintenance"}}`))
	}, Config{LiveCatalog: true})

	_, err := a.ListModels(context.Background())
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Kind != domain.ErrorKindProviderUnavailable {
		t.Errorf("kind: got %q", perr.Kind)
	}
	if perr.Provider != ProviderOpenAI {
		t.Errorf("provider: got %q", perr.Provider)
	}
}

func TestNames(t *testing.T) {
	if NewOpenAI(Config{}, nil).Name() != "OpenAI" {
		t.Error("OpenAI name")
	}
	if NewOpenRouter(Config{}, nil).Name() != "OpenRouter" {
		t.Error("OpenRouter name")
	}
}
