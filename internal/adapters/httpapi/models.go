package httpapi

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/domain"
)

func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	models, err := h.registry.ListModels(r.Context(), provider)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownProvider) {
			writeError(w, http.StatusNotFound, kindUnknownProvider, "unknown provider: "+provider)
			return
		}
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("provider", provider).Msg("model catalog unavailable")
		writeError(w, http.StatusBadGateway, kindProviderUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models)
}
