package model

import "time"

// Score is the persisted outcome of one player finishing one round.
// At most one exists per (player, round).
type Score struct {
	PlayerID      PlayerID
	RoundID       RoundID
	RoomCode      RoomCode
	RoundNumber   int
	Mistakes      int
	TimeSeconds   int
	// CorrectGroups is nil when the client reported only points
	CorrectGroups *int
	Points        int
	CreatedAt     time.Time
}

// RoundResult is what a client reports when a round ends for a player.
// CorrectGroups, when present, lets the server compute points itself;
// otherwise the reported Points are range-checked and stored.
type RoundResult struct {
	Mistakes      int
	TimeSeconds   int
	CorrectGroups *int
	Points        *int
}

// PlayerTotal is a per-player aggregate over all scores in a room
type PlayerTotal struct {
	PlayerID     PlayerID
	TotalPoints  int
	RoundsPlayed int
}

// LeaderboardEntry is a ranked row in a room's leaderboard
type LeaderboardEntry struct {
	Rank         int
	PlayerID     PlayerID
	PlayerName   string
	TotalPoints  int
	RoundsPlayed int
}

// FinishOutcome is returned once a round result has been recorded
type FinishOutcome struct {
	Score Score
	// Finished reports whether the tallies describe a round that ended by
	// solving every group or running out of mistakes. It is false when the
	// player stopped early or reported only points.
	Finished bool
	// Leaderboard is nil when it could not be recomputed after the score
	// was recorded.
	Leaderboard []LeaderboardEntry
}
