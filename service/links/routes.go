package links

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	"gorm.io/gorm"
)

// LinkHandler manages the entries on a member's public link page.
type LinkHandler struct {
    db *gorm.DB
}

func NewLinkHandler(db *gorm.DB) *LinkHandler {
    return &LinkHandler{db: db}
}

func (h *LinkHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/links", utils.AuthMiddleware(h.CreateLink)).Methods("POST")
    router.HandleFunc("/links", utils.AuthMiddleware(h.GetMyLinks)).Methods("GET")
    router.HandleFunc("/links/{id}", utils.AuthMiddleware(h.UpdateLink)).Methods("PUT")
    router.HandleFunc("/links/{id}", utils.AuthMiddleware(h.DeleteLink)).Methods("DELETE")
}

type linkRequest struct {
    Title    string `json:"title" validate:"required"`
    URL      string `json:"url" validate:"required,url"`
    Position int    `json:"position"`
}

func (h *LinkHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var req linkRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if err := utils.ValidateStruct(req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, err.Error())
        return
    }

    link := models.ProfileLink{
        UserID:   userID,
        Title:    req.Title,
        URL:      req.URL,
        Position: req.Position,
    }
    if err := h.db.Create(&link).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error creating link")
        return
    }

    utils.WriteJSON(w, http.StatusCreated, link)
}

func (h *LinkHandler) GetMyLinks(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var links []models.ProfileLink
    if err := h.db.Where("user_id = ?", userID).Order("position ASC").Find(&links).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving links")
        return
    }

    utils.WriteJSON(w, http.StatusOK, links)
}

func (h *LinkHandler) loadOwnLink(w http.ResponseWriter, r *http.Request) (*models.ProfileLink, bool) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return nil, false
    }

    vars := mux.Vars(r)
    linkID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid link ID")
        return nil, false
    }

    var link models.ProfileLink
    if err := h.db.First(&link, linkID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Link not found")
        return nil, false
    }
    if link.UserID != userID {
        utils.WriteError(w, utils.ErrForbidden, "You may only manage your own links")
        return nil, false
    }
    return &link, true
}

func (h *LinkHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
    link, ok := h.loadOwnLink(w, r)
    if !ok {
        return
    }

    var req linkRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }

    if req.Title != "" {
        link.Title = req.Title
    }
    if req.URL != "" {
        link.URL = req.URL
    }
    link.Position = req.Position

    if err := h.db.Save(link).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error updating link")
        return
    }

    utils.WriteJSON(w, http.StatusOK, link)
}

func (h *LinkHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
    link, ok := h.loadOwnLink(w, r)
    if !ok {
        return
    }

    if err := h.db.Delete(link).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error deleting link")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "message": "Link deleted successfully",
    })
}
