package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/connections-go/internal/dependencies/clock"
	"github.com/mcoot/connections-go/internal/model"
)

// Publisher delivers an encoded message to every subscriber of a room
type Publisher interface {
	Publish(ctx context.Context, roomCode model.RoomCode, message Message) error
}

// Broadcaster turns domain notifications into room events
type Broadcaster struct {
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(publisher Publisher, clock clock.Clock, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "broadcaster")),
	}
}

func (b *Broadcaster) emit(ctx context.Context, ev model.Event) error {
	ev.Timestamp = b.clock.Now()
	msg, err := Encode(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	if err := b.publisher.Publish(ctx, ev.RoomCode, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	b.logger.Debug("event published",
		slog.String("room_code", string(ev.RoomCode)),
		slog.String("event", string(ev.Type)))
	return nil
}

// LeaderboardUpdated announces the authoritative ranking after a round result
func (b *Broadcaster) LeaderboardUpdated(ctx context.Context, code model.RoomCode, roundNumber int, entries []model.LeaderboardEntry) error {
	return b.emit(ctx, model.Event{
		Type:     model.EventLeaderboardUpdated,
		RoomCode: code,
		Payload:  model.LeaderboardUpdatedPayload{RoundNumber: roundNumber, Entries: entries},
	})
}

// PlayerJoined announces a new player in the room
func (b *Broadcaster) PlayerJoined(ctx context.Context, player model.Player) error {
	return b.emit(ctx, model.Event{
		Type:     model.EventPlayerJoined,
		RoomCode: player.RoomCode,
		PlayerID: player.ID,
		Payload:  model.PlayerJoinedPayload{Player: player},
	})
}

// RoundAdded announces a round appended to the room
func (b *Broadcaster) RoundAdded(ctx context.Context, round model.Round) error {
	return b.emit(ctx, model.Event{
		Type:     model.EventRoundAdded,
		RoomCode: round.RoomCode,
		Payload:  model.RoundAddedPayload{RoundNumber: round.Number},
	})
}

// LiveSnapshot shares the provisional participant list of a room
func (b *Broadcaster) LiveSnapshot(ctx context.Context, code model.RoomCode, participants []model.Participant) error {
	return b.emit(ctx, model.Event{
		Type:     model.EventLiveSnapshot,
		RoomCode: code,
		Payload:  model.LiveSnapshotPayload{Participants: participants},
	})
}
