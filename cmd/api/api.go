package api

import (
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/kvejborg/regatta-server/service/event"
	"github.com/kvejborg/regatta-server/service/links"
	"github.com/kvejborg/regatta-server/service/notice"
	notification "github.com/kvejborg/regatta-server/service/notifications"
	"github.com/kvejborg/regatta-server/service/series"
	"github.com/kvejborg/regatta-server/service/timeline"
	"github.com/kvejborg/regatta-server/service/user"
	"github.com/kvejborg/regatta-server/service/ws"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	hub := ws.NewHub()
	go hub.Run()

	notifier := notification.NewNotifier(s.db)

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	linkHandler := links.NewLinkHandler(s.db)
	linkHandler.RegisterRoutes(subrouter)

	eventHandler := event.NewEventHandler(s.db)
	eventHandler.RegisterRoutes(subrouter)

	seriesHandler := series.NewSeriesHandler(s.db)
	seriesHandler.RegisterRoutes(subrouter)

	noticeHandler := notice.NewNoticeHandler(s.db)
	noticeHandler.RegisterRoutes(subrouter)

	timelineHandler := timeline.NewHandler(s.db, hub, notifier)
	timelineHandler.RegisterRoutes(subrouter)

	notificationHandler := notification.NewNotificationHandler(s.db, notifier)
	notificationHandler.RegisterRoutes(subrouter)

	wsHandler := ws.NewHandler(s.db, hub)
	wsHandler.RegisterRoutes(router)

	fileServer := http.FileServer(http.Dir("uploads/media"))
	router.PathPrefix("/media/").Handler(http.StripPrefix("/media/", fileServer))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
