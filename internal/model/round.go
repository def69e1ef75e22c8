package model

import "time"

// RoundID uniquely identifies a round across all rooms
type RoundID string

// Round is one puzzle within a room. Rounds are immutable once created and
// numbered contiguously from 1 within their room.
type Round struct {
	ID        RoundID
	RoomCode  RoomCode
	Number    int
	Puzzle    Puzzle
	CreatedAt time.Time
}

// RoundView is what a player sees while solving: the shuffled words but none
// of the groupings.
type RoundView struct {
	ID       RoundID
	RoomCode RoomCode
	Number   int
	Words    []string
}

// GuessResult is the outcome of evaluating a four-word guess
type GuessResult struct {
	Correct    bool
	GroupName  string
	Connection string
}
