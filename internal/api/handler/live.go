package handler

import (
	"net/http"

	"github.com/mcoot/connections-go/internal/api/response"
	"github.com/mcoot/connections-go/internal/live"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/realtime"
	"github.com/mcoot/connections-go/internal/services/room"
)

// LiveHandler handles the realtime endpoints of a room
type LiveHandler struct {
	rooms     *room.Service
	registry  *live.Registry
	hubs      *realtime.HubManager
	connector *realtime.LiveConnector
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(rooms *room.Service, registry *live.Registry, hubs *realtime.HubManager, connector *realtime.LiveConnector) *LiveHandler {
	return &LiveHandler{
		rooms:     rooms,
		registry:  registry,
		hubs:      hubs,
		connector: connector,
	}
}

// Snapshot handles GET /api/v1/rooms/{code}/live/snapshot
func (h *LiveHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.rooms.GetRoom(r.Context(), code); err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LiveSnapshotFromModel(code, h.registry.Snapshot(code)))
}

// Websocket handles GET /api/v1/rooms/{code}/live
func (h *LiveHandler) Websocket(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.rooms.GetRoom(r.Context(), code); err != nil {
		WriteError(w, r, err)
		return
	}

	h.connector.ServeWebsocket(w, r, code)
}

// Events handles GET /api/v1/rooms/{code}/events
func (h *LiveHandler) Events(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	if _, err := h.rooms.GetRoom(r.Context(), code); err != nil {
		WriteError(w, r, err)
		return
	}

	playerID := model.PlayerID(r.URL.Query().Get("player_id"))
	h.hubs.ServeSSE(w, r, code, playerID)
}
