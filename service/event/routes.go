package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	"gorm.io/gorm"
)

type EventHandler struct {
    db *gorm.DB
}

func NewEventHandler(db *gorm.DB) *EventHandler {
    return &EventHandler{db: db}
}

func (h *EventHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/events", h.GetEvents).Methods("GET")
    router.HandleFunc("/events", utils.AuthMiddleware(h.CreateEvent)).Methods("POST")
    router.HandleFunc("/events/{id}", h.GetEvent).Methods("GET")
    router.HandleFunc("/events/{id}", utils.AuthMiddleware(h.UpdateEvent)).Methods("PUT")
    router.HandleFunc("/events/{id}", utils.AuthMiddleware(h.DeleteEvent)).Methods("DELETE")

    router.HandleFunc("/events/{id}/results", h.GetResults).Methods("GET")
    router.HandleFunc("/events/{id}/results", utils.AuthMiddleware(h.UploadResults)).Methods("POST")
}

type eventRequest struct {
    Title       string    `json:"title" validate:"required"`
    Description string    `json:"description"`
    Location    string    `json:"location"`
    StartsAt    time.Time `json:"starts_at"`
    SeriesID    *uint     `json:"series_id"`
    Divisions   []string  `json:"divisions"`
}

// CreateEvent creates an event owned by the caller, with a unique slug
// derived from the title.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var req eventRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, err.Error())
        return
    }

    if req.SeriesID != nil {
        var series models.Series
        if err := h.db.First(&series, *req.SeriesID).Error; err != nil {
            utils.WriteError(w, utils.ErrNotFound, "Series not found")
            return
        }
    }

    slug, err := utils.EnsureUniqueSlug(h.db, "events", "slug", utils.Slugify(req.Title))
    if err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error generating slug")
        return
    }

    event := models.Event{
        Title:       req.Title,
        Description: req.Description,
        Slug:        slug,
        OrganizerID: userID,
        SeriesID:    req.SeriesID,
        Location:    req.Location,
        StartsAt:    req.StartsAt,
        Divisions:   req.Divisions,
    }
    if err := h.db.Create(&event).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error creating event")
        return
    }

    utils.WriteJSON(w, http.StatusCreated, event)
}

// GetEvents retrieves events with pagination
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 20

    var events []models.Event
    var total int64

    query := h.db.Model(&models.Event{}).Preload("Organizer")
    if seriesID := r.URL.Query().Get("series_id"); seriesID != "" {
        query = query.Where("series_id = ?", seriesID)
    }
    query.Count(&total)

    if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Order("starts_at DESC").Find(&events).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving events")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "events":      events,
        "total":       total,
        "page":        page,
        "page_size":   pageSize,
        "total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
    })
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    eventID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid event ID")
        return
    }

    var event models.Event
    if err := h.db.Preload("Organizer").Preload("Timeline").First(&event, eventID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Event not found")
        return
    }

    utils.WriteJSON(w, http.StatusOK, event)
}

func (h *EventHandler) loadOwnEvent(w http.ResponseWriter, r *http.Request) (*models.Event, bool) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return nil, false
    }

    vars := mux.Vars(r)
    eventID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid event ID")
        return nil, false
    }

    var event models.Event
    if err := h.db.First(&event, eventID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Event not found")
        return nil, false
    }
    if event.OrganizerID != userID {
        utils.WriteError(w, utils.ErrForbidden, "Only the organizer may modify this event")
        return nil, false
    }
    return &event, true
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadOwnEvent(w, r)
    if !ok {
        return
    }

    var req eventRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }

    if req.Title != "" {
        event.Title = req.Title
    }
    if req.Description != "" {
        event.Description = req.Description
    }
    if req.Location != "" {
        event.Location = req.Location
    }
    if !req.StartsAt.IsZero() {
        event.StartsAt = req.StartsAt
    }
    if req.Divisions != nil {
        event.Divisions = req.Divisions
    }

    if err := h.db.Save(event).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error updating event")
        return
    }

    utils.WriteJSON(w, http.StatusOK, event)
}

// DeleteEvent removes an event and its timeline, posts, engagement and
// results in one transaction.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadOwnEvent(w, r)
    if !ok {
        return
    }

    tx := h.db.Begin()
    if err := DeleteCascade(tx, event.ID); err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error deleting event")
        return
    }
    if err := tx.Commit().Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error deleting event")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "message": "Event deleted successfully",
    })
}

// DeleteCascade removes one event and everything hanging off it, in
// child-first order. Callers provide the transaction.
func DeleteCascade(tx *gorm.DB, eventID uint) error {
    var tl models.Timeline
    err := tx.Where("event_id = ?", eventID).First(&tl).Error
    if err == nil {
        postIDs := tx.Model(&models.TimelinePost{}).Select("id").Where("timeline_id = ?", tl.ID)
        if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.TimelineLike{}).Error; err != nil {
            return err
        }
        if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.TimelineComment{}).Error; err != nil {
            return err
        }
        if err := tx.Where("timeline_id = ?", tl.ID).Delete(&models.TimelinePost{}).Error; err != nil {
            return err
        }
        if err := tx.Where("timeline_id = ?", tl.ID).Delete(&models.TimelineAccess{}).Error; err != nil {
            return err
        }
        if err := tx.Delete(&tl).Error; err != nil {
            return err
        }
    } else if !errors.Is(err, gorm.ErrRecordNotFound) {
        return err
    }

    if err := tx.Where("event_id = ?", eventID).Delete(&models.RaceResult{}).Error; err != nil {
        return err
    }
    return tx.Delete(&models.Event{}, eventID).Error
}

type resultEntry struct {
    SailNumber string  `json:"sail_number" validate:"required"`
    Skipper    string  `json:"skipper"`
    Division   string  `json:"division"`
    Position   int     `json:"position" validate:"required,min=1"`
    Points     float64 `json:"points"`
}

// UploadResults replaces the event's race results, organizer-only.
func (h *EventHandler) UploadResults(w http.ResponseWriter, r *http.Request) {
    event, ok := h.loadOwnEvent(w, r)
    if !ok {
        return
    }

    var entries []resultEntry
    if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    for _, entry := range entries {
        if err := utils.ValidateStruct(entry); err != nil {
            utils.WriteError(w, utils.ErrInvalidInput, err.Error())
            return
        }
    }

    tx := h.db.Begin()
    if err := tx.Where("event_id = ?", event.ID).Delete(&models.RaceResult{}).Error; err != nil {
        tx.Rollback()
        utils.WriteError(w, utils.ErrInternal, "Error replacing results")
        return
    }
    for _, entry := range entries {
        result := models.RaceResult{
            EventID:    event.ID,
            SailNumber: entry.SailNumber,
            Skipper:    entry.Skipper,
            Division:   entry.Division,
            Position:   entry.Position,
            Points:     entry.Points,
        }
        if err := tx.Create(&result).Error; err != nil {
            tx.Rollback()
            utils.WriteError(w, utils.ErrInternal, "Error saving results")
            return
        }
    }
    if err := tx.Commit().Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error saving results")
        return
    }

    utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
        "message": "Results uploaded successfully",
        "count":   len(entries),
    })
}

// GetResults lists an event's race results ordered by division and position.
func (h *EventHandler) GetResults(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    eventID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid event ID")
        return
    }

    var event models.Event
    if err := h.db.First(&event, eventID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Event not found")
        return
    }

    var results []models.RaceResult
    if err := h.db.Where("event_id = ?", event.ID).Order("division ASC, position ASC").Find(&results).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving results")
        return
    }

    utils.WriteJSON(w, http.StatusOK, results)
}
