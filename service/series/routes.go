package series

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	"github.com/kvejborg/regatta-server/service/event"
	"gorm.io/gorm"
)

type SeriesHandler struct {
    db *gorm.DB
}

func NewSeriesHandler(db *gorm.DB) *SeriesHandler {
    return &SeriesHandler{db: db}
}

func (h *SeriesHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/series", h.GetAllSeries).Methods("GET")
    router.HandleFunc("/series", utils.AuthMiddleware(h.CreateSeries)).Methods("POST")
    router.HandleFunc("/series/{id}", h.GetSeries).Methods("GET")
    router.HandleFunc("/series/{id}", utils.AuthMiddleware(h.UpdateSeries)).Methods("PUT")
    router.HandleFunc("/series/{id}", utils.AuthMiddleware(h.DeleteSeries)).Methods("DELETE")
}

type seriesRequest struct {
    Title       string `json:"title" validate:"required"`
    Description string `json:"description"`
    Season      string `json:"season"`
}

func (h *SeriesHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
    if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var req seriesRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, err.Error())
        return
    }

    series := models.Series{
        Title:       req.Title,
        Description: req.Description,
        Season:      req.Season,
    }
    if err := h.db.Create(&series).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error creating series")
        return
    }

    utils.WriteJSON(w, http.StatusCreated, series)
}

func (h *SeriesHandler) GetAllSeries(w http.ResponseWriter, r *http.Request) {
    var series []models.Series
    if err := h.db.Order("created_at DESC").Find(&series).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving series")
        return
    }
    utils.WriteJSON(w, http.StatusOK, series)
}

func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    seriesID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid series ID")
        return
    }

    var series models.Series
    if err := h.db.Preload("Events").First(&series, seriesID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Series not found")
        return
    }

    utils.WriteJSON(w, http.StatusOK, series)
}

func (h *SeriesHandler) UpdateSeries(w http.ResponseWriter, r *http.Request) {
    if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    vars := mux.Vars(r)
    seriesID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid series ID")
        return
    }

    var series models.Series
    if err := h.db.First(&series, seriesID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Series not found")
        return
    }

    var req seriesRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if req.Title != "" {
        series.Title = req.Title
    }
    if req.Description != "" {
        series.Description = req.Description
    }
    if req.Season != "" {
        series.Season = req.Season
    }

    if err := h.db.Save(&series).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error updating series")
        return
    }

    utils.WriteJSON(w, http.StatusOK, series)
}

// DeleteSeries removes every event in the series before the series row
// itself, in a single transaction: a failure in any phase rolls the whole
// deletion back, so callers never observe a half-deleted series.
func (h *SeriesHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
    if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    vars := mux.Vars(r)
    seriesID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid series ID")
        return
    }

    var series models.Series
    if err := h.db.First(&series, seriesID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Series not found")
        return
    }

    var events []models.Event
    if err := h.db.Where("series_id = ?", series.ID).Find(&events).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving series events")
        return
    }

    tx := h.db.Begin()
    for _, ev := range events {
        if err := event.DeleteCascade(tx, ev.ID); err != nil {
            tx.Rollback()
            utils.WriteError(w, utils.ErrInternal, "Error deleting series events")
            return
        }
    }
    if err := tx.Delete(&series).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error deleting series")
        return
    }
    if err := tx.Commit().Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error deleting series")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "message": "Series deleted successfully",
    })
}
