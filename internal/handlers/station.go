package handlers

import (
	"dublinbikes-api/internal/models"
	"dublinbikes-api/internal/query"
	"dublinbikes-api/internal/services"
	"dublinbikes-api/internal/storage"
	"dublinbikes-api/internal/utils"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StationHandler serves the station endpoints of one API version.
type StationHandler struct {
	service *services.StationService
	logr    *zap.Logger
}

func NewStationHandler(svc *services.StationService, logr *zap.Logger) *StationHandler {
	return &StationHandler{service: svc, logr: logr.With(zap.String("api", svc.Namespace()))}
}

// QueryStations handles GET /stations
func (h *StationHandler) QueryStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := query.Parameters{
		Status:     utils.QueryString(q, "status"),
		MinBikes:   utils.QueryOptionalInt(q, "minBikes"),
		SearchTerm: utils.QueryString(q, "q"),
		Sort:       utils.QueryString(q, "sort"),
		Dir:        utils.QueryString(q, "dir"),
		Page:       utils.QueryInt(q, "page"),
		PageSize:   utils.QueryInt(q, "pageSize"),
	}

	page, err := h.service.QueryStations(r.Context(), params)
	if err != nil {
		h.logr.Error("failed to query stations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve stations")
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(page.Total))
	writeJSON(w, http.StatusOK, models.NewStationDTOs(page.Items))
}

// GetStation handles GET /stations/{number}
func (h *StationHandler) GetStation(w http.ResponseWriter, r *http.Request) {
	number, ok := stationNumber(r)
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	station, found, err := h.service.GetStation(r.Context(), number)
	if err != nil {
		h.logr.Error("failed to fetch station", zap.Error(err), zap.Int("number", number))
		writeError(w, http.StatusInternalServerError, "failed to retrieve station")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	writeJSON(w, http.StatusOK, models.NewStationDTO(station))
}

// GetSummary handles GET /stations/summary
func (h *StationHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logr.Error("failed to compute summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// CreateStation handles POST /stations
func (h *StationHandler) CreateStation(w http.ResponseWriter, r *http.Request) {
	var body models.StationDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logr.Warn("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.service.CreateStation(r.Context(), body.ToStation(time.Now()))
	if errors.Is(err, storage.ErrDuplicateStation) {
		writeError(w, http.StatusConflict, "station already exists")
		return
	}
	if err != nil {
		h.logr.Error("failed to create station", zap.Error(err), zap.Int("number", body.Number))
		writeError(w, http.StatusInternalServerError, "failed to create station")
		return
	}

	h.logr.Info("station created", zap.Int("number", created.Number))
	w.Header().Set("Location", r.URL.Path+"/"+strconv.Itoa(created.Number))
	writeJSON(w, http.StatusCreated, models.NewStationDTO(created))
}

// UpdateStation handles PUT /stations/{number}
func (h *StationHandler) UpdateStation(w http.ResponseWriter, r *http.Request) {
	number, ok := stationNumber(r)
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	var body models.StationDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logr.Warn("failed to decode request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.service.UpdateStation(r.Context(), number, body.ToStation(time.Now()))
	if err != nil {
		h.logr.Error("failed to update station", zap.Error(err), zap.Int("number", number))
		writeError(w, http.StatusInternalServerError, "failed to update station")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	h.logr.Info("station updated", zap.Int("number", number))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteStation handles DELETE /stations/{number}
func (h *StationHandler) DeleteStation(w http.ResponseWriter, r *http.Request) {
	number, ok := stationNumber(r)
	if !ok {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	deleted, err := h.service.DeleteStation(r.Context(), number)
	if err != nil {
		h.logr.Error("failed to delete station", zap.Error(err), zap.Int("number", number))
		writeError(w, http.StatusInternalServerError, "failed to delete station")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}

	h.logr.Info("station deleted", zap.Int("number", number))
	w.WriteHeader(http.StatusNoContent)
}

func stationNumber(r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		return 0, false
	}
	return number, true
}
