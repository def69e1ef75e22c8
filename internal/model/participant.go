package model

import "time"

// Participant is a live, in-memory presence in a room. Its score is the
// client-reported running total and is never persisted.
type Participant struct {
	RoomCode RoomCode
	PlayerID PlayerID
	Name     string
	Score    int
	JoinedAt time.Time
}
