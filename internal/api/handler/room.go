package handler

import (
	"net/http"

	"github.com/mcoot/connections-go/internal/api/apierr"
	"github.com/mcoot/connections-go/internal/api/request"
	"github.com/mcoot/connections-go/internal/api/response"
	"github.com/mcoot/connections-go/internal/services/room"
)

// RoomHandler handles room and round management endpoints
type RoomHandler struct {
	rooms *room.Service
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Service) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	created, rounds, err := h.rooms.CreateRoom(r.Context(), req.Name, request.PuzzlesToModel(req.Rounds))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateRoomResponseFromModel(created, rounds))
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomListFromModel(rooms))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.rooms.GetRoom(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromSummary(summary))
}

// AddRound handles POST /api/v1/rooms/{code}/rounds
func (h *RoomHandler) AddRound(w http.ResponseWriter, r *http.Request) {
	var req request.AddRoundRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	round, err := h.rooms.AddRound(r.Context(), roomCode(r), req.Puzzle.ToModel())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoundRefFromModel(round))
}

// GetRound handles GET /api/v1/rooms/{code}/rounds/{number}
func (h *RoomHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	number, err := roundNumber(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	round, err := h.rooms.GetRound(r.Context(), roomCode(r), number)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoundViewFromModel(h.rooms.View(round)))
}

// Join handles POST /api/v1/rooms/{code}/players
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.Name == "" {
		WriteError(w, r, apierr.NewInvalidRequestError("name is required"))
		return
	}

	player, err := h.rooms.JoinRoom(r.Context(), roomCode(r), req.Name)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// ListPlayers handles GET /api/v1/rooms/{code}/players
func (h *RoomHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.rooms.ListPlayers(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerListFromModel(players))
}
