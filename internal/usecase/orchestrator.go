package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/pkg/metrics"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/ports"
)

const (
	DefaultWorkers     = 4
	DefaultFileTimeout = 2 * time.Minute

	mediaPDF = "application/pdf"
)

type OrchestratorConfig struct {
	Workers int
	// FileTimeout bounds each provider call (one per image or PDF page) and
	// the rasterisation of a PDF.
	FileTimeout time.Duration
}

// Orchestrator fans a batch out to one provider and collects one result per
// file in upload order.
type Orchestrator struct {
	registry   *Registry
	inspector  ports.InspectorPort
	rasterizer ports.RasterizerPort // nil disables PDF input
	cfg        OrchestratorConfig
}

func NewOrchestrator(reg *Registry, inspector ports.InspectorPort, rasterizer ports.RasterizerPort, cfg OrchestratorConfig) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = DefaultFileTimeout
	}
	return &Orchestrator{
		registry:   reg,
		inspector:  inspector,
		rasterizer: rasterizer,
		cfg:        cfg,
	}
}

func (o *Orchestrator) Run(ctx context.Context, files []domain.File, provider, model string) (domain.BatchResult, error) {
	if len(files) == 0 {
		return domain.BatchResult{}, domain.NewValidationError("files", "at least one file is required")
	}
	if strings.TrimSpace(model) == "" {
		return domain.BatchResult{}, domain.NewValidationError("model", "model is required")
	}
	p, err := o.registry.Resolve(provider)
	if err != nil {
		return domain.BatchResult{}, err
	}

	logger := zerolog.Ctx(ctx).With().Str("provider", provider).Str("model", model).Logger()
	logger.Info().Int("files", len(files)).Int("workers", o.cfg.Workers).Msg("dispatching batch")
	metrics.BatchFiles.Observe(float64(len(files)))

	results := make([]domain.ExtractionResult, len(files))

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i, f := range files {
		g.Go(func() error {
			results[i] = o.extractFile(logger.WithContext(ctx), p, f, model)
			return nil
		})
	}
	_ = g.Wait()

	batch := domain.BatchResult{Provider: provider, Model: model, Results: results}
	logger.Info().Int("files", len(files)).Int("failed", batch.Failed()).Msg("batch complete")
	return batch, nil
}

func (o *Orchestrator) extractFile(ctx context.Context, p ports.ProviderPort, f domain.File, model string) domain.ExtractionResult {
	start := time.Now()
	res := o.extract(ctx, p, f, model)
	res.Filename = f.Name

	outcome := "ok"
	ev := zerolog.Ctx(ctx).Info()
	if !res.OK() {
		outcome = string(res.Err.Kind)
		ev = zerolog.Ctx(ctx).Warn().Str("kind", outcome).Str("error", res.Err.Message)
	}
	metrics.ExtractionsTotal.WithLabelValues(p.Name(), outcome).Inc()
	metrics.ExtractionDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	ev.Str("file", f.Name).Dur("duration", time.Since(start)).Msg("file extracted")
	return res
}

func (o *Orchestrator) extract(ctx context.Context, p ports.ProviderPort, f domain.File, model string) domain.ExtractionResult {
	if ctx.Err() != nil {
		return domain.Failure(f.Name, domain.ErrorKindProviderUnavailable, "request cancelled")
	}

	mediaType, err := o.inspector.Detect(f.Name, f.MediaType, f.Data)
	if err != nil {
		return domain.Failure(f.Name, domain.ErrorKindUnsupportedMedia, err.Error())
	}

	pages, perr := o.pages(ctx, f, mediaType)
	if perr != nil {
		return *perr
	}

	results := make([]domain.ExtractionResult, 0, len(pages))
	for _, pg := range pages {
		if ctx.Err() != nil {
			return domain.Failure(f.Name, domain.ErrorKindProviderUnavailable, "request cancelled")
		}
		r := o.extractPage(ctx, p, domain.ExtractionRequest{
			Filename:  f.Name,
			Data:      pg.Data,
			MediaType: pg.MediaType,
			Provider:  p.Name(),
			Model:     model,
			Page:      pg.Number,
		})
		if !r.OK() {
			msg := r.Err.Message
			if len(pages) > 1 {
				msg = fmt.Sprintf("page %d: %s", pg.Number, msg)
			}
			return domain.Failure(f.Name, r.Err.Kind, msg)
		}
		results = append(results, r)
	}

	out := fold(f.Name, pages, results)
	if mediaType == mediaPDF {
		out.Pages = len(pages)
	}
	return out
}

// extractPage bounds one provider call by FileTimeout.
func (o *Orchestrator) extractPage(ctx context.Context, p ports.ProviderPort, req domain.ExtractionRequest) domain.ExtractionResult {
	pctx, cancel := context.WithTimeout(ctx, o.cfg.FileTimeout)
	defer cancel()
	return p.Extract(pctx, req)
}

func (o *Orchestrator) pages(ctx context.Context, f domain.File, mediaType string) ([]ports.Page, *domain.ExtractionResult) {
	if mediaType != mediaPDF {
		if err := o.inspector.ValidateImage(f.Data); err != nil {
			r := domain.Failure(f.Name, domain.ErrorKindUnsupportedMedia, err.Error())
			return nil, &r
		}
		return []ports.Page{{Number: 0, Data: f.Data, MediaType: mediaType}}, nil
	}

	if o.rasterizer == nil {
		r := domain.Failure(f.Name, domain.ErrorKindUnsupportedMedia, "pdf input is not enabled")
		return nil, &r
	}
	rctx, cancel := context.WithTimeout(ctx, o.cfg.FileTimeout)
	defer cancel()
	pages, err := o.rasterizer.Rasterize(rctx, f.Data)
	if err != nil {
		r := domain.Failure(f.Name, domain.ErrorKindUnsupportedMedia, "rasterise pdf: "+err.Error())
		return nil, &r
	}
	if len(pages) == 0 {
		r := domain.Failure(f.Name, domain.ErrorKindUnsupportedMedia, "pdf has no pages")
		return nil, &r
	}
	return pages, nil
}

type pageFields struct {
	Page    int             `json:"page"`
	Content json.RawMessage `json:"content"`
}

// fold merges per-page results into one result for the file.
func fold(filename string, pages []ports.Page, results []domain.ExtractionResult) domain.ExtractionResult {
	if len(results) == 1 {
		return domain.Success(filename, results[0].Text, results[0].Fields)
	}

	texts := make([]string, len(results))
	var perPage []pageFields
	structured := false
	for i, r := range results {
		texts[i] = r.Text
		content := r.Fields
		if content == nil {
			content = json.RawMessage("null")
		} else {
			structured = true
		}
		perPage = append(perPage, pageFields{Page: pages[i].Number, Content: content})
	}

	var fields json.RawMessage
	if structured {
		if b, err := json.Marshal(perPage); err == nil {
			fields = b
		}
	}
	return domain.Success(filename, strings.Join(texts, "\n\n"), fields)
}
