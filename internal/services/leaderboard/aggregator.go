// Package leaderboard ranks players in a room by their summed points.
package leaderboard

import (
	"context"
	"sort"
	"strings"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
)

// Aggregator computes room leaderboards straight from storage on every call
type Aggregator struct {
	storage storage.Storage
}

// New creates a new Aggregator
func New(storage storage.Storage) *Aggregator {
	return &Aggregator{storage: storage}
}

// Leaderboard returns every player with at least one score, ordered by total
// points descending, then name (case-insensitive), then player ID. Players
// on equal points share a rank.
func (a *Aggregator) Leaderboard(ctx context.Context, code model.RoomCode) ([]model.LeaderboardEntry, error) {
	totals, err := a.storage.PlayerTotals(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return []model.LeaderboardEntry{}, nil
	}

	players, err := a.storage.ListPlayers(ctx, code)
	if err != nil {
		return nil, err
	}
	names := make(map[model.PlayerID]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	entries := make([]model.LeaderboardEntry, 0, len(totals))
	for _, t := range totals {
		entries = append(entries, model.LeaderboardEntry{
			PlayerID:     t.PlayerID,
			PlayerName:   names[t.PlayerID],
			TotalPoints:  t.TotalPoints,
			RoundsPlayed: t.RoundsPlayed,
		})
	}
	Sort(entries)
	return entries, nil
}

// Winner returns the top leaderboard entry
func (a *Aggregator) Winner(ctx context.Context, code model.RoomCode) (*model.LeaderboardEntry, error) {
	entries, err := a.Leaderboard(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, model.ErrNoScores
	}
	return &entries[0], nil
}

// Sort orders entries and assigns ranks in place
func Sort(entries []model.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		an, bn := strings.ToLower(a.PlayerName), strings.ToLower(b.PlayerName)
		if an != bn {
			return an < bn
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range entries {
		if i > 0 && entries[i].TotalPoints == entries[i-1].TotalPoints {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
}
