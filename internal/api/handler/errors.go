package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/connections-go/internal/api/apierr"
	"github.com/mcoot/connections-go/internal/middleware"
	"github.com/mcoot/connections-go/internal/model"
)

// WriteError writes an error response. Server-side failures are logged with
// their full cause since the client only sees a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		middleware.LoggerFromContext(r.Context()).Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	apierr.WriteError(w, err)
}

// decode reads a JSON request body into v
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}

func roomCode(r *http.Request) model.RoomCode {
	return model.ParseRoomCode(mux.Vars(r)["code"])
}

func roundNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil || n < 1 {
		return 0, apierr.NewInvalidRequestError("round number must be a positive integer")
	}
	return n, nil
}
