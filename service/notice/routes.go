package notice

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	"gorm.io/gorm"
)

type NoticeHandler struct {
    db *gorm.DB
}

func NewNoticeHandler(db *gorm.DB) *NoticeHandler {
    return &NoticeHandler{db: db}
}

func (h *NoticeHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/notices", h.GetNotices).Methods("GET")
    router.HandleFunc("/notices", utils.AuthMiddleware(h.CreateNotice)).Methods("POST")
    router.HandleFunc("/notices/reorder", utils.AuthMiddleware(h.ReorderNotices)).Methods("PUT")
    router.HandleFunc("/notices/{id}", utils.AuthMiddleware(h.UpdateNotice)).Methods("PUT")
    router.HandleFunc("/notices/{id}", utils.AuthMiddleware(h.DeleteNotice)).Methods("DELETE")
}

type noticeRequest struct {
    Title string `json:"title" validate:"required"`
    Body  string `json:"body" validate:"required"`
}

func (h *NoticeHandler) CreateNotice(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var req noticeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, err.Error())
        return
    }

    // New notices append at the end of the board.
    var maxPosition int
    h.db.Model(&models.Notice{}).Select("COALESCE(MAX(position), 0)").Scan(&maxPosition)

    notice := models.Notice{
        Title:    req.Title,
        Body:     req.Body,
        AuthorID: userID,
        Position: maxPosition + 1,
    }
    if err := h.db.Create(&notice).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error creating notice")
        return
    }

    utils.WriteJSON(w, http.StatusCreated, notice)
}

func (h *NoticeHandler) GetNotices(w http.ResponseWriter, r *http.Request) {
    var notices []models.Notice
    if err := h.db.Preload("Author").Order("position ASC").Find(&notices).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving notices")
        return
    }
    utils.WriteJSON(w, http.StatusOK, notices)
}

func (h *NoticeHandler) UpdateNotice(w http.ResponseWriter, r *http.Request) {
    if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    vars := mux.Vars(r)
    noticeID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid notice ID")
        return
    }

    var notice models.Notice
    if err := h.db.First(&notice, noticeID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Notice not found")
        return
    }

    var req noticeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if req.Title != "" {
        notice.Title = req.Title
    }
    if req.Body != "" {
        notice.Body = req.Body
    }

    if err := h.db.Save(&notice).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error updating notice")
        return
    }

    utils.WriteJSON(w, http.StatusOK, notice)
}

func (h *NoticeHandler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
    if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    vars := mux.Vars(r)
    noticeID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid notice ID")
        return
    }

    result := h.db.Delete(&models.Notice{}, noticeID)
    if result.Error != nil {
        utils.WriteError(w, utils.ErrInternal, "Error deleting notice")
        return
    }
    if result.RowsAffected == 0 {
        utils.WriteError(w, utils.ErrNotFound, "Notice not found")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "message": "Notice deleted successfully",
    })
}

// ReorderNotices applies a full position batch as one all-or-nothing unit.
// Every referenced notice must exist, otherwise nothing changes.
func (h *NoticeHandler) ReorderNotices(w http.ResponseWriter, r *http.Request) {
    if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var req struct {
        Order []uint `json:"order"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if len(req.Order) == 0 {
        utils.WriteError(w, utils.ErrInvalidInput, "Order is required")
        return
    }

    tx := h.db.Begin()
    for position, noticeID := range req.Order {
        result := tx.Model(&models.Notice{}).Where("id = ?", noticeID).Update("position", position+1)
        if result.Error != nil {
            tx.Rollback()
            utils.WriteError(w, utils.ErrInternal, "Error reordering notices")
            return
        }
        if result.RowsAffected == 0 {
            tx.Rollback()
            utils.WriteError(w, utils.ErrNotFound, "Notice not found")
            return
        }
    }
    if err := tx.Commit().Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error reordering notices")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "message": "Notices reordered successfully",
    })
}
