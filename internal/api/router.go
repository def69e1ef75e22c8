package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/connections-go/internal/api/apierr"
	"github.com/mcoot/connections-go/internal/api/handler"
	"github.com/mcoot/connections-go/internal/live"
	"github.com/mcoot/connections-go/internal/middleware"
	"github.com/mcoot/connections-go/internal/realtime"
	"github.com/mcoot/connections-go/internal/services/room"
	"github.com/mcoot/connections-go/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Storage           handler.Pinger
	RoomService       *room.Service
	SessionController session.ControllerInterface
	LiveRegistry      *live.Registry
	HubManager        *realtime.HubManager
	LiveConnector     *realtime.LiveConnector
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Storage)
	roomHandler := handler.NewRoomHandler(cfg.RoomService)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.RoomService)
	liveHandler := handler.NewLiveHandler(cfg.RoomService, cfg.LiveRegistry, cfg.HubManager, cfg.LiveConnector)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Recovery(writePanic))

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// Room routes
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/rounds", roomHandler.AddRound).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/rounds/{number}", roomHandler.GetRound).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/players", roomHandler.Join).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/players", roomHandler.ListPlayers).Methods(http.MethodGet)

	// Gameplay routes
	api.HandleFunc("/rounds/{round_id}/guess", sessionHandler.Guess).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/rounds/{number}/result", sessionHandler.Finish).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}/players/{player_id}/next-round", sessionHandler.NextRound).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/leaderboard", sessionHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/winner", sessionHandler.Winner).Methods(http.MethodGet)

	// Realtime routes
	api.HandleFunc("/rooms/{code}/live/snapshot", liveHandler.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/live", liveHandler.Websocket).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/events", liveHandler.Events).Methods(http.MethodGet)

	return r
}

func writePanic(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
