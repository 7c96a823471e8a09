package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/kingdom-engine/pkg/crisis"
)

// CrisisSummary lists one catalog entry.
type CrisisSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TriggerType string `json:"trigger_type"`
	Critical    bool   `json:"critical"`
	Stages      int    `json:"stages"`
}

type CrisesHandler struct {
	catalog *crisis.Catalog
	logger  *slog.Logger
}

func NewCrisesHandler(catalog *crisis.Catalog, logger *slog.Logger) *CrisesHandler {
	return &CrisesHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ServeHTTP handles GET /v1/crises
func (h *CrisesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	defs := h.catalog.All()
	out := make([]CrisisSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, CrisisSummary{
			ID:          def.ID,
			Name:        def.Name,
			TriggerType: string(def.TriggerType),
			Critical:    def.Critical,
			Stages:      len(def.Stages),
		})
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}
