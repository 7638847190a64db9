package httpapi

import (
	"net/http"

	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/pkg/metrics"
)

type providerStatus struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status    string                    `json:"status"`
	Providers map[string]providerStatus `json:"providers"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	statuses := make(map[string]providerStatus, len(names))
	for _, name := range names {
		ok, msg := h.health.Check(r.Context(), name)
		s := providerStatus{Available: ok}
		if !ok {
			s.Reason = msg
		}
		statuses[name] = s

		v := 0.0
		if ok {
			v = 1
		}
		metrics.ProviderAvailable.WithLabelValues(name).Set(v)
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Providers: statuses})
}
