package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/connections-go/internal/api/apierr"
	"github.com/mcoot/connections-go/internal/api/request"
	"github.com/mcoot/connections-go/internal/api/response"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/services/room"
	"github.com/mcoot/connections-go/internal/services/session"
)

// SessionHandler handles gameplay endpoints: guesses, results, progression
// and standings
type SessionHandler struct {
	controller session.ControllerInterface
	rooms      *room.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(controller session.ControllerInterface, rooms *room.Service) *SessionHandler {
	return &SessionHandler{controller: controller, rooms: rooms}
}

// Guess handles POST /api/v1/rounds/{round_id}/guess
func (h *SessionHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req request.GuessRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	roundID := model.RoundID(mux.Vars(r)["round_id"])
	result, err := h.controller.EvaluateGuess(r.Context(), roundID, model.PlayerID(req.PlayerID), req.Words)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuessFromModel(result))
}

// Finish handles POST /api/v1/rooms/{code}/rounds/{number}/result
func (h *SessionHandler) Finish(w http.ResponseWriter, r *http.Request) {
	number, err := roundNumber(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	var req request.FinishRoundRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if req.PlayerID == "" {
		WriteError(w, r, apierr.NewInvalidRequestError("player_id is required"))
		return
	}

	code := roomCode(r)
	outcome, err := h.controller.FinishRound(r.Context(), code, number, model.PlayerID(req.PlayerID), req.ToModel())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.FinishRoundFromModel(code, outcome))
}

// NextRound handles GET /api/v1/rooms/{code}/players/{player_id}/next-round
func (h *SessionHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	playerID := model.PlayerID(mux.Vars(r)["player_id"])

	round, err := h.controller.NextRound(r.Context(), roomCode(r), playerID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if round == nil {
		response.JSON(w, http.StatusOK, response.NextRound{Complete: true})
		return
	}

	view := response.RoundViewFromModel(h.rooms.View(round))
	response.JSON(w, http.StatusOK, response.NextRound{Round: &view})
}

// Leaderboard handles GET /api/v1/rooms/{code}/leaderboard
func (h *SessionHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	entries, err := h.controller.Leaderboard(r.Context(), code)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(code, entries))
}

// Winner handles GET /api/v1/rooms/{code}/winner
func (h *SessionHandler) Winner(w http.ResponseWriter, r *http.Request) {
	winner, err := h.controller.Winner(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardEntryFromModel(*winner))
}
