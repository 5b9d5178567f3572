package handlers

import (
	"dublinbikes-api/internal/services"
	"net/http"

	"go.uber.org/zap"
)

type AdminHandler struct {
	seeder *services.SeedService
	logr   *zap.Logger
}

func NewAdminHandler(seeder *services.SeedService, logr *zap.Logger) *AdminHandler {
	return &AdminHandler{seeder: seeder, logr: logr}
}

// SeedDocumentStore handles POST /api/admin/seed-cosmos
// Copies the stations data file into the document store.
func (h *AdminHandler) SeedDocumentStore(w http.ResponseWriter, r *http.Request) {
	n, err := h.seeder.SeedFromFile(r.Context())
	if err != nil {
		h.logr.Error("failed to seed document store", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to seed document store")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}
