package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, route and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_http_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "route", "status"})

	// RequestsByState counts OCR requests by their terminal state.
	RequestsByState = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_requests_by_state_total",
		Help: "OCR requests by terminal state (Responded, Rejected, Failed).",
	}, []string{"state"})

	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_extractions_total",
		Help: "Per-file extraction outcomes.",
	}, []string{"provider", "outcome"})

	// ExtractionDuration tracks per-file latency including rasterisation.
	ExtractionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ocr_extraction_duration_seconds",
		Help:    "Time spent extracting a single file.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider"})

	// BatchFiles tracks the number of files per OCR request.
	BatchFiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocr_batch_files",
		Help:    "Number of files in an OCR request.",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	// ProviderAvailable tracks whether each provider is usable.
	ProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ocr_provider_available",
		Help: "Whether a provider is available (1) or not (0).",
	}, []string{"provider"})
)
