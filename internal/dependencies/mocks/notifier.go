package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/connections-go/internal/model"
)

// RecordingNotifier captures every notification it receives. Err, when set,
// is returned from every call after recording it.
type RecordingNotifier struct {
	mu           sync.Mutex
	Err          error
	Joined       []model.Player
	RoundsAdded  []model.Round
	Leaderboards []LeaderboardNotification
}

// LeaderboardNotification is one recorded leaderboard broadcast
type LeaderboardNotification struct {
	RoomCode    model.RoomCode
	RoundNumber int
	Entries     []model.LeaderboardEntry
}

// NewRecordingNotifier creates an empty RecordingNotifier
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) PlayerJoined(ctx context.Context, player model.Player) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Joined = append(n.Joined, player)
	return n.Err
}

func (n *RecordingNotifier) RoundAdded(ctx context.Context, round model.Round) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.RoundsAdded = append(n.RoundsAdded, round)
	return n.Err
}

func (n *RecordingNotifier) LeaderboardUpdated(ctx context.Context, code model.RoomCode, roundNumber int, entries []model.LeaderboardEntry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Leaderboards = append(n.Leaderboards, LeaderboardNotification{
		RoomCode:    code,
		RoundNumber: roundNumber,
		Entries:     entries,
	})
	return n.Err
}

// LeaderboardCount returns how many leaderboard broadcasts were recorded
func (n *RecordingNotifier) LeaderboardCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Leaderboards)
}
