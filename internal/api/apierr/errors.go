package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/connections-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoundNotFound       = "ROUND_NOT_FOUND"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodePlayerNotInRoom     = "PLAYER_NOT_IN_ROOM"
	CodeNoScores            = "NO_SCORES"
	CodeNotInSession        = "NOT_IN_SESSION"
	CodeNoRounds            = "NO_ROUNDS"
	CodeInvalidPuzzle       = "INVALID_PUZZLE"
	CodeInvalidGuess        = "INVALID_GUESS"
	CodeInvalidPlayerName   = "INVALID_PLAYER_NAME"
	CodeInvalidResult       = "INVALID_RESULT"
	CodeRoundFinished       = "ROUND_FINISHED"
	CodeResultExists        = "RESULT_EXISTS"
	CodeDuplicatePlayerName = "DUPLICATE_PLAYER_NAME"
	CodeInternalError       = "INTERNAL_ERROR"
)

// specificCodes gives well-known errors a more precise code than their
// category. The first match wins.
var specificCodes = []struct {
	err  error
	code string
}{
	{model.ErrRoomNotFound, CodeRoomNotFound},
	{model.ErrRoundNotFound, CodeRoundNotFound},
	{model.ErrPlayerNotInRoom, CodePlayerNotInRoom},
	{model.ErrPlayerNotFound, CodePlayerNotFound},
	{model.ErrNoScores, CodeNoScores},
	{model.ErrNotInSession, CodeNotInSession},
	{model.ErrNoRounds, CodeNoRounds},
	{model.ErrInvalidPuzzle, CodeInvalidPuzzle},
	{model.ErrInvalidGuess, CodeInvalidGuess},
	{model.ErrInvalidPlayerName, CodeInvalidPlayerName},
	{model.ErrInvalidResult, CodeInvalidResult},
	{model.ErrRoundFinished, CodeRoundFinished},
	{model.ErrScoreExists, CodeResultExists},
	{model.ErrDuplicatePlayerName, CodeDuplicatePlayerName},
}

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError by its category.
// Upstream and unknown errors never expose their message.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var status int
	var code string
	switch {
	case errors.Is(err, model.ErrUpstream):
		return internalError()
	case errors.Is(err, model.ErrNotFound):
		status, code = http.StatusNotFound, CodeNotFound
	case errors.Is(err, model.ErrInvalidInput):
		status, code = http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, model.ErrConflict):
		status, code = http.StatusConflict, CodeConflict
	default:
		return internalError()
	}

	for _, s := range specificCodes {
		if errors.Is(err, s.err) {
			code = s.code
			break
		}
	}
	return &httpError{status, APIError{code, err.Error()}}
}

func internalError() *httpError {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return internalError()
}
