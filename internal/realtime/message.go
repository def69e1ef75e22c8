package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/connections-go/internal/model"
)

// Message is one event ready for delivery. Data is the JSON envelope; each
// transport frames it its own way.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Envelope is the JSON document clients receive for every event
type Envelope struct {
	Type      string          `json:"type"`
	RoomCode  string          `json:"room_code"`
	PlayerID  string          `json:"player_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// LeaderboardEntry is the wire form of model.LeaderboardEntry
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	TotalPoints  int    `json:"total_points"`
	RoundsPlayed int    `json:"rounds_played"`
}

// LeaderboardUpdated is the payload of leaderboard_updated
type LeaderboardUpdated struct {
	RoundNumber int                `json:"round_number"`
	Entries     []LeaderboardEntry `json:"entries"`
}

// Participant is the wire form of model.Participant
type Participant struct {
	PlayerID string    `json:"player_id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// LiveSnapshot is the payload of live_snapshot. Provisional is always true:
// these scores are client-reported and never final.
type LiveSnapshot struct {
	Provisional  bool          `json:"provisional"`
	Participants []Participant `json:"participants"`
}

// PlayerJoined is the payload of player_joined
type PlayerJoined struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

// RoundAdded is the payload of round_added
type RoundAdded struct {
	RoundNumber int `json:"round_number"`
}

// ErrorPayload is sent to a single websocket client whose request failed
type ErrorPayload struct {
	Message string `json:"message"`
}

const eventError = "error"

// LeaderboardEntriesFromModel converts ranked entries to their wire form
func LeaderboardEntriesFromModel(entries []model.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			Rank:         e.Rank,
			PlayerID:     string(e.PlayerID),
			PlayerName:   e.PlayerName,
			TotalPoints:  e.TotalPoints,
			RoundsPlayed: e.RoundsPlayed,
		}
	}
	return out
}

// ParticipantsFromModel converts live participants to their wire form
func ParticipantsFromModel(ps []model.Participant) []Participant {
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = Participant{
			PlayerID: string(p.PlayerID),
			Name:     p.Name,
			Score:    p.Score,
			JoinedAt: p.JoinedAt,
		}
	}
	return out
}

func payloadFromEvent(ev model.Event) (any, error) {
	switch p := ev.Payload.(type) {
	case model.LeaderboardUpdatedPayload:
		return LeaderboardUpdated{RoundNumber: p.RoundNumber, Entries: LeaderboardEntriesFromModel(p.Entries)}, nil
	case model.LiveSnapshotPayload:
		return LiveSnapshot{Provisional: true, Participants: ParticipantsFromModel(p.Participants)}, nil
	case model.PlayerJoinedPayload:
		return PlayerJoined{PlayerID: string(p.Player.ID), Name: p.Player.Name}, nil
	case model.RoundAddedPayload:
		return RoundAdded{RoundNumber: p.RoundNumber}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported event payload %T", ev.Payload)
	}
}

// Encode turns a domain event into a deliverable Message
func Encode(ev model.Event) (Message, error) {
	payload, err := payloadFromEvent(ev)
	if err != nil {
		return Message{}, err
	}
	env := Envelope{
		Type:      string(ev.Type),
		RoomCode:  string(ev.RoomCode),
		PlayerID:  string(ev.PlayerID),
		Timestamp: ev.Timestamp,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Message{}, err
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: string(ev.Type), Data: data}, nil
}

func errorMessage(code model.RoomCode, now time.Time, text string) Message {
	payload, _ := json.Marshal(ErrorPayload{Message: text})
	data, _ := json.Marshal(Envelope{
		Type:      eventError,
		RoomCode:  string(code),
		Timestamp: now,
		Payload:   payload,
	})
	return Message{Event: eventError, Data: data}
}
