package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "GRPC_ADDR", "LOG_LEVEL", "LOG_FORMAT", "PDFTOPPM_PATH",
		"OPENAI_API_KEY", "OPENROUTER_API_KEY", "HOST_IP", "OLLAMA_URL",
		"OCR_WORKERS", "OCR_FILE_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"http_addr", cfg.HTTPAddr, ":8300"},
		{"grpc_addr", cfg.GRPCAddr, ":50051"},
		{"workers", cfg.Workers, 4},
		{"file_timeout", cfg.FileTimeout, 2 * time.Minute},
		{"max_upload_bytes", cfg.MaxUploadBytes, int64(32 << 20)},
		{"validate_models", cfg.ValidateModels, true},
		{"log_format", cfg.LogFormat, "json"},
		{"pdftoppm", cfg.PDF.Pdftoppm, "pdftoppm"},
		{"ollama enabled", cfg.OllamaEnabled(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)

	path := writeYAML(t, `http_addr: ":9000"
workers: 8
file_timeout: 45s
log_format: console
cors_allowed_origins: ["http://localhost:3000"]
pdf:
  dpi: 300
  max_pages: 5
providers:
  openai:
    api_key: sk-yaml
    models: [gpt-4o]
  ollama:
    base_url: http://gpu.local:11434
    live_catalog: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"http_addr", cfg.HTTPAddr, ":9000"},
		{"workers", cfg.Workers, 8},
		{"file_timeout", cfg.FileTimeout, 45 * time.Second},
		{"log_format", cfg.LogFormat, "console"},
		{"cors", cfg.CORSAllowedOrigins[0], "http://localhost:3000"},
		{"dpi", cfg.PDF.DPI, 300},
		{"max_pages", cfg.PDF.MaxPages, 5},
		{"openai key", cfg.Providers.OpenAI.APIKey, "sk-yaml"},
		{"openai models", cfg.Providers.OpenAI.Models[0], "gpt-4o"},
		{"ollama url", cfg.Providers.Ollama.BaseURL, "http://gpu.local:11434"},
		{"ollama live", cfg.Providers.Ollama.LiveCatalog, true},
		{"pdftoppm kept", cfg.PDF.Pdftoppm, "pdftoppm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `providers:
  openai:
    api_key: sk-yaml
`)

	t.Setenv("HTTP_ADDR", ":7777")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENROUTER_API_KEY", "or-env")
	t.Setenv("OCR_WORKERS", "2")
	t.Setenv("OCR_FILE_TIMEOUT", "10s")
	t.Setenv("HOST_IP", "10.1.2.3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"http_addr", cfg.HTTPAddr, ":7777"},
		{"openai key", cfg.Providers.OpenAI.APIKey, "sk-env"},
		{"openrouter key", cfg.Providers.OpenRouter.APIKey, "or-env"},
		{"workers", cfg.Workers, 2},
		{"file_timeout", cfg.FileTimeout, 10 * time.Second},
		{"ollama from HOST_IP", cfg.Providers.Ollama.BaseURL, "http://10.1.2.3:11434"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestOllamaURLBeatsHostIP(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST_IP", "10.1.2.3")
	t.Setenv("OLLAMA_URL", "http://ollama:11434")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Providers.Ollama.BaseURL != "http://ollama:11434" {
		t.Errorf("got %q", cfg.Providers.Ollama.BaseURL)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"invalid yaml", "{{invalid", nil},
		{"zero workers", "workers: 0", nil},
		{"bad log format", "log_format: xml", nil},
		{"bad worker env", "", map[string]string{"OCR_WORKERS": "many"}},
		{"bad timeout env", "", map[string]string{"OCR_FILE_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(writeYAML(t, tt.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
