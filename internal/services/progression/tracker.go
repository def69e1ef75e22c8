// Package progression works out which round a player should play next.
package progression

import (
	"context"
	"slices"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
)

// Tracker selects each player's next unfinished round
type Tracker struct {
	storage storage.Storage
}

// New creates a new Tracker
func New(storage storage.Storage) *Tracker {
	return &Tracker{storage: storage}
}

// NextRound returns the lowest-numbered round in the room that the player
// has no score for. It returns nil with no error when every round is scored.
func (t *Tracker) NextRound(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Round, error) {
	rounds, err := t.storage.ListRounds(ctx, code)
	if err != nil {
		return nil, err
	}
	scores, err := t.storage.ListPlayerScores(ctx, code, playerID)
	if err != nil {
		return nil, err
	}

	done := make(map[model.RoundID]struct{}, len(scores))
	for _, sc := range scores {
		done[sc.RoundID] = struct{}{}
	}

	slices.SortFunc(rounds, func(a, b *model.Round) int { return a.Number - b.Number })
	for _, r := range rounds {
		if _, ok := done[r.ID]; !ok {
			return r, nil
		}
	}
	return nil, nil
}
