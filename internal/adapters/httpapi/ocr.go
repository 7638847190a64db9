package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

// multipart parts above this size spill to temp files
const maxMemory = 8 << 20

func (h *Handler) OCR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := *zerolog.Ctx(ctx)
	st := newRequestState(logger)

	reject := func(code int, kind, msg string) {
		logger.Info().Int("status", code).Str("error", kind).Str("reason", msg).Msg("ocr request rejected")
		st.to(stateRejected)
		writeError(w, code, kind, msg)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			reject(http.StatusRequestEntityTooLarge, kindValidation, fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
			return
		}
		reject(http.StatusBadRequest, kindValidation, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	provider := strings.TrimSpace(r.FormValue("provider"))
	model := strings.TrimSpace(r.FormValue("model"))
	rawFormat := r.FormValue("output_format")

	if provider == "" {
		reject(http.StatusBadRequest, kindValidation, "provider is required")
		return
	}
	if model == "" {
		reject(http.StatusBadRequest, kindValidation, "model is required")
		return
	}
	format, err := domain.ParseFormat(rawFormat)
	if err != nil {
		reject(http.StatusBadRequest, kindUnsupportedFormat, fmt.Sprintf("unsupported output_format %q (supported: json, txt)", rawFormat))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		reject(http.StatusBadRequest, kindValidation, "at least one file is required")
		return
	}
	if _, err := h.registry.Resolve(provider); err != nil {
		reject(http.StatusBadRequest, kindUnknownProvider, "unknown provider: "+provider)
		return
	}
	if msg, ok := h.checkModel(r, provider, model); !ok {
		reject(http.StatusBadRequest, kindValidation, msg)
		return
	}

	files, err := readFiles(headers)
	if err != nil {
		reject(http.StatusBadRequest, kindValidation, err.Error())
		return
	}

	logger = logger.With().Str("provider", provider).Str("model", model).Str("format", string(format)).Logger()
	st.logger = logger
	st.to(stateValidated)

	st.to(stateDispatched)
	batch, err := h.orchestrator.Run(logger.WithContext(ctx), files, provider, model)
	if err != nil {
		kind := errorKind(err)
		status := http.StatusBadRequest
		if kind == kindInternal {
			status = http.StatusInternalServerError
		}
		logger.Error().Err(err).Str("kind", kind).Msg("batch dispatch failed")
		st.to(stateFailed)
		writeError(w, status, kind, err.Error())
		return
	}

	art, err := h.encoder.Encode(batch, format)
	if err != nil {
		logger.Error().Err(err).Msg("encoding failed")
		st.to(stateFailed)
		writeError(w, http.StatusInternalServerError, kindEncoding, err.Error())
		return
	}
	st.to(stateEncoded)

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		logger.Warn().Err(err).Msg("write response")
	}
	st.to(stateResponded)

	logger.Info().
		Int("files", len(batch.Results)).
		Int("failed", batch.Failed()).
		Int("bytes", len(art.Data)).
		Msg("ocr request responded")
}

// checkModel rejects models missing from the provider's catalog. A catalog
// that cannot be fetched lets the request through.
func (h *Handler) checkModel(r *http.Request, provider, model string) (string, bool) {
	if !h.opts.ValidateModels {
		return "", true
	}
	models, err := h.registry.ListModels(r.Context(), provider)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("provider", provider).Msg("model catalog unavailable, skipping model check")
		return "", true
	}
	if !slices.Contains(models, model) {
		return fmt.Sprintf("model %q is not available for provider %s", model, provider), false
	}
	return "", true
}

func readFiles(headers []*multipart.FileHeader) ([]domain.File, error) {
	files := make([]domain.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, domain.File{
			Name:      fh.Filename,
			MediaType: fh.Header.Get("Content-Type"),
			Data:      data,
		})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
