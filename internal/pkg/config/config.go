package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Models      []string `yaml:"models"`
	LiveCatalog bool     `yaml:"live_catalog"`
}

type ProvidersConfig struct {
	OpenAI     ProviderConfig `yaml:"openai"`
	OpenRouter ProviderConfig `yaml:"openrouter"`
	Ollama     ProviderConfig `yaml:"ollama"`
}

type PDFConfig struct {
	Pdftoppm string `yaml:"pdftoppm"`
	DPI      int    `yaml:"dpi"`
	MaxPages int    `yaml:"max_pages"`
	Disabled bool   `yaml:"disabled"`
}

type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json | console

	Workers        int           `yaml:"workers"`
	FileTimeout    time.Duration `yaml:"file_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ValidateModels bool          `yaml:"validate_models"`
	HealthInterval time.Duration `yaml:"health_interval"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	Prompt           string `yaml:"prompt"`
	MaxTokens        int    `yaml:"max_tokens"`
	StructuredSchema string `yaml:"structured_schema"` // path to a JSON Schema file

	PDF       PDFConfig       `yaml:"pdf"`
	Providers ProvidersConfig `yaml:"providers"`
}

func defaults() Config {
	return Config{
		HTTPAddr:           ":8300",
		GRPCAddr:           ":50051",
		LogLevel:           "info",
		LogFormat:          "json",
		Workers:            4,
		FileTimeout:        2 * time.Minute,
		MaxUploadBytes:     32 << 20,
		ValidateModels:     true,
		HealthInterval:     30 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		MaxTokens:          1000,
		PDF: PDFConfig{
			Pdftoppm: "pdftoppm",
			DPI:      200,
			MaxPages: 20,
		},
	}
}

// Load reads the YAML file at path (skipped when empty), then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = env("HTTP_ADDR", c.HTTPAddr)
	c.GRPCAddr = env("GRPC_ADDR", c.GRPCAddr)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)
	c.LogFormat = env("LOG_FORMAT", c.LogFormat)
	c.PDF.Pdftoppm = env("PDFTOPPM_PATH", c.PDF.Pdftoppm)

	c.Providers.OpenAI.APIKey = env("OPENAI_API_KEY", c.Providers.OpenAI.APIKey)
	c.Providers.OpenRouter.APIKey = env("OPENROUTER_API_KEY", c.Providers.OpenRouter.APIKey)

	if c.Providers.Ollama.BaseURL == "" {
		if ip := os.Getenv("HOST_IP"); ip != "" {
			c.Providers.Ollama.BaseURL = fmt.Sprintf("http://%s:11434", ip)
		}
	}
	c.Providers.Ollama.BaseURL = env("OLLAMA_URL", c.Providers.Ollama.BaseURL)

	if v := os.Getenv("OCR_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OCR_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("OCR_FILE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OCR_FILE_TIMEOUT: %w", err)
		}
		c.FileTimeout = d
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.FileTimeout <= 0 {
		errs = append(errs, errors.New("file_timeout must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or console, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// OllamaEnabled reports whether an Ollama endpoint is configured.
func (c Config) OllamaEnabled() bool { return c.Providers.Ollama.BaseURL != "" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
