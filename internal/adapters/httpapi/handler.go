package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/ports"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/usecase"
)

type Options struct {
	MaxUploadBytes     int64
	ValidateModels     bool
	CORSAllowedOrigins []string
}

type Handler struct {
	registry     *usecase.Registry
	orchestrator *usecase.Orchestrator
	encoder      ports.EncoderPort
	health       ports.HealthPort
	opts         Options
}

func NewHandler(reg *usecase.Registry, orch *usecase.Orchestrator, enc ports.EncoderPort, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Handler{
		registry:     reg,
		orchestrator: orch,
		encoder:      enc,
		health:       reg,
		opts:         opts,
	}
}

// Routes wires handlers with the full middleware chain.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ocr", h.OCR)
	mux.HandleFunc("GET /models/{provider}", h.Models)
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	return Chain(mux, h.opts)
}
