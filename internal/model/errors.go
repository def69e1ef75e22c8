package model

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of these so
// callers can classify with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

var (
	// Room errors
	ErrRoomNotFound      = fmt.Errorf("room %w", ErrNotFound)
	ErrRoomExists        = fmt.Errorf("room code already in use: %w", ErrConflict)
	ErrRoomCodeExhausted = fmt.Errorf("could not allocate a free room code: %w", ErrUpstream)
	ErrNoRounds          = fmt.Errorf("a room needs at least one round: %w", ErrInvalidInput)

	// Round errors
	ErrRoundNotFound = fmt.Errorf("round %w", ErrNotFound)
	ErrInvalidPuzzle = fmt.Errorf("puzzle must have 4 groups of 4 distinct words: %w", ErrInvalidInput)
	ErrInvalidGuess  = fmt.Errorf("guess must be exactly 4 distinct words: %w", ErrInvalidInput)
	ErrRoundFinished = fmt.Errorf("round already finished for player: %w", ErrConflict)

	// Player errors
	ErrPlayerNotFound      = fmt.Errorf("player %w", ErrNotFound)
	ErrPlayerNotInRoom     = fmt.Errorf("player is not in room: %w", ErrNotFound)
	ErrInvalidPlayerName   = fmt.Errorf("player name must be 1 to 32 characters: %w", ErrInvalidInput)
	ErrDuplicatePlayerName = fmt.Errorf("player name already taken in room: %w", ErrConflict)

	// Score errors
	ErrScoreNotFound = fmt.Errorf("score %w", ErrNotFound)
	ErrScoreExists   = fmt.Errorf("result already submitted for round: %w", ErrConflict)
	ErrInvalidResult = fmt.Errorf("round result out of range: %w", ErrInvalidInput)
	ErrNoScores      = fmt.Errorf("no finished rounds in room: %w", ErrNotFound)

	// Live session errors
	ErrNotInSession = fmt.Errorf("player has not joined the live session: %w", ErrNotFound)
)

// Upstream wraps a collaborator failure so it classifies as ErrUpstream
// while keeping the underlying cause inspectable.
func Upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
}
