package model

import (
	"strings"
	"time"
)

// RoomCode is the short human-readable code players use to join a room
type RoomCode string

// ParseRoomCode normalizes user-entered room codes, which are case-insensitive
func ParseRoomCode(s string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(s)))
}

// Room groups an ordered sequence of rounds that players progress through
type Room struct {
	Code      RoomCode
	Name      string
	CreatedAt time.Time
}

// RoomSummary is a room together with its round count
type RoomSummary struct {
	Room       Room
	RoundCount int
}
