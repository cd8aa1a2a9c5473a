package notification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"gorm.io/gorm"
)

// NotificationHandler exposes device registration and push history.
type NotificationHandler struct {
    db       *gorm.DB
    notifier *Notifier
}

func NewNotificationHandler(db *gorm.DB, notifier *Notifier) *NotificationHandler {
    return &NotificationHandler{db: db, notifier: notifier}
}

func (h *NotificationHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/devices", utils.AuthMiddleware(h.RegisterDevice)).Methods("POST")
    router.HandleFunc("/devices/{id}", utils.AuthMiddleware(h.DeleteDevice)).Methods("DELETE")
    router.HandleFunc("/notifications/broadcast", utils.AuthMiddleware(h.BroadcastNotification)).Methods("POST")
    router.HandleFunc("/users/{userId}/notifications", utils.AuthMiddleware(h.SendUserNotification)).Methods("POST")
    router.HandleFunc("/users/{userId}/history", utils.AuthMiddleware(h.GetUserNotificationHistory)).Methods("GET")
}

// RegisterDevice registers (or refreshes) a push token for the caller.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var device models.Device
    if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    device.UserID = userID

    if device.Token == "" {
        utils.WriteError(w, utils.ErrInvalidInput, "Token is required")
        return
    }

    if _, err := expo.NewExponentPushToken(device.Token); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid Expo push token format")
        return
    }

    var existingDevice models.Device
    result := h.db.Where("token = ? AND user_id = ?", device.Token, device.UserID).First(&existingDevice)

    if result.Error == nil {
        existingDevice.UpdatedAt = time.Now()
        existingDevice.DeviceType = device.DeviceType
        existingDevice.DeviceName = device.DeviceName
        if err := h.db.Save(&existingDevice).Error; err != nil {
            utils.WriteError(w, utils.ErrInternal, "Error updating device")
            return
        }
        device = existingDevice
    } else {
        if err := h.db.Create(&device).Error; err != nil {
            utils.WriteError(w, utils.ErrInternal, "Error creating device")
            return
        }
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "message": "Device registered successfully",
        "device":  device,
    })
}

// SendUserNotification pushes an ad-hoc notification to all devices of a user.
func (h *NotificationHandler) SendUserNotification(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    userID, err := strconv.ParseUint(vars["userId"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid user ID")
        return
    }

    var notificationData struct {
        Title string                 `json:"title"`
        Body  string                 `json:"body"`
        Data  map[string]interface{} `json:"data,omitempty"`
    }
    if err := json.NewDecoder(r.Body).Decode(&notificationData); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if notificationData.Title == "" || notificationData.Body == "" {
        utils.WriteError(w, utils.ErrInvalidInput, "Title and body are required")
        return
    }

    var devices []models.Device
    if err := h.db.Where("user_id = ?", userID).Find(&devices).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving user devices")
        return
    }
    if len(devices) == 0 {
        utils.WriteJSON(w, http.StatusOK, map[string]string{
            "message": "No devices registered for this user",
        })
        return
    }

    h.notifier.Push(uint(userID), notificationData.Title, notificationData.Body, notificationData.Data)

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "message": fmt.Sprintf("Notification sent to %d devices", len(devices)),
    })
}

// BroadcastNotification pushes one message to many users. With no explicit
// user IDs it targets everyone holding a registered device.
func (h *NotificationHandler) BroadcastNotification(w http.ResponseWriter, r *http.Request) {
    if _, err := utils.GetUserIDFromContext(r.Context()); err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    var req models.BroadcastRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid request body")
        return
    }
    if req.Title == "" || req.Body == "" {
        utils.WriteError(w, utils.ErrInvalidInput, "Title and body are required")
        return
    }

    userIDs := req.UserIDs
    if len(userIDs) == 0 {
        if err := h.db.Model(&models.Device{}).Distinct("user_id").Pluck("user_id", &userIDs).Error; err != nil {
            utils.WriteError(w, utils.ErrInternal, "Error retrieving device owners")
            return
        }
    }

    for _, userID := range userIDs {
        h.notifier.Push(userID, req.Title, req.Body, req.Data)
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "message": fmt.Sprintf("Broadcast sent to %d users", len(userIDs)),
    })
}

// GetUserNotificationHistory returns the paginated push history for a user.
func (h *NotificationHandler) GetUserNotificationHistory(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    userID, err := strconv.ParseUint(vars["userId"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid user ID")
        return
    }

    limit := 20
    page := 1
    if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
        if parsedLimit, err := strconv.Atoi(limitParam); err == nil && parsedLimit > 0 {
            limit = parsedLimit
        }
    }
    if pageParam := r.URL.Query().Get("page"); pageParam != "" {
        if parsedPage, err := strconv.Atoi(pageParam); err == nil && parsedPage > 0 {
            page = parsedPage
        }
    }
    offset := (page - 1) * limit

    var history []models.NotificationHistory
    var count int64

    if err := h.db.Model(&models.NotificationHistory{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error counting notifications")
        return
    }

    if err := h.db.Where("user_id = ?", userID).
        Order("sent_at DESC").
        Limit(limit).
        Offset(offset).
        Find(&history).Error; err != nil {
        utils.WriteError(w, utils.ErrInternal, "Error retrieving notification history")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
        "total":   count,
        "page":    page,
        "limit":   limit,
        "history": history,
    })
}

// DeleteDevice deletes a device token owned by the caller.
func (h *NotificationHandler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r.Context())
    if err != nil {
        utils.WriteError(w, utils.ErrUnauthorized, "Unauthorized")
        return
    }

    vars := mux.Vars(r)
    deviceID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid device ID")
        return
    }

    result := h.db.Where("user_id = ?", userID).Delete(&models.Device{}, deviceID)
    if result.Error != nil {
        utils.WriteError(w, utils.ErrInternal, "Error deleting device")
        return
    }
    if result.RowsAffected == 0 {
        utils.WriteError(w, utils.ErrNotFound, "Device not found")
        return
    }

    utils.WriteJSON(w, http.StatusOK, map[string]string{
        "message": "Device deleted successfully",
    })
}
