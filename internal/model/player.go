package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a named participant in exactly one room
type Player struct {
	ID        PlayerID
	RoomCode  RoomCode
	Name      string
	CreatedAt time.Time
}
