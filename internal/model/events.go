package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventLeaderboardUpdated EventType = "leaderboard_updated"
	EventLiveSnapshot       EventType = "live_snapshot"
	EventPlayerJoined       EventType = "player_joined"
	EventRoundAdded         EventType = "round_added"
)

// Event is a room-scoped notification delivered to connected clients
type Event struct {
	Type      EventType
	Timestamp time.Time
	RoomCode  RoomCode
	PlayerID  PlayerID // The player who triggered the event, if any
	Payload   any
}

// LeaderboardUpdatedPayload carries the authoritative ranking after a
// round result is recorded
type LeaderboardUpdatedPayload struct {
	RoundNumber int
	Entries     []LeaderboardEntry
}

// LiveSnapshotPayload carries the optimistic live view of the room
type LiveSnapshotPayload struct {
	Participants []Participant
}

// PlayerJoinedPayload is sent when a player joins a room
type PlayerJoinedPayload struct {
	Player Player
}

// RoundAddedPayload is sent when a round is appended to a room
type RoundAddedPayload struct {
	RoundNumber int
}
