package ws

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/kvejborg/regatta-server/cmd/models"
	"github.com/kvejborg/regatta-server/cmd/utils"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
    db  *gorm.DB
    hub *Hub
}

func NewHandler(db *gorm.DB, hub *Hub) *Handler {
    return &Handler{db: db, hub: hub}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/ws/timeline/{eventId}", h.HandleTimelineSocket)
}

// HandleTimelineSocket subscribes the caller to live updates for one event's
// timeline. Only active timelines accept subscribers.
func (h *Handler) HandleTimelineSocket(w http.ResponseWriter, r *http.Request) {
    vars := mux.Vars(r)
    eventID, err := strconv.ParseUint(vars["eventId"], 10, 64)
    if err != nil {
        utils.WriteError(w, utils.ErrInvalidInput, "Invalid event ID")
        return
    }

    var event models.Event
    if err := h.db.First(&event, eventID).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Event not found")
        return
    }

    var tl models.Timeline
    if err := h.db.Where("event_id = ?", event.ID).First(&tl).Error; err != nil {
        utils.WriteError(w, utils.ErrNotFound, "Timeline not found")
        return
    }
    if !tl.IsActive {
        utils.WriteError(w, utils.ErrForbidden, "Timeline is not active")
        return
    }

    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }

    client := &Client{
        Hub:        h.hub,
        Conn:       conn,
        Send:       make(chan []byte, 16),
        TimelineID: tl.ID,
    }
    h.hub.Register <- client

    go client.WritePump()
    go client.ReadPump()
}
