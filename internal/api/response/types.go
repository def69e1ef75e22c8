package response

import (
	"time"

	"github.com/mcoot/connections-go/internal/model"
)

// Room represents a room in API responses
type Room struct {
	Code       string    `json:"code"`
	Name       string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	RoundCount int       `json:"round_count,omitempty"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	return Room{
		Code:      string(r.Code),
		Name:      r.Name,
		CreatedAt: r.CreatedAt,
	}
}

// RoomFromSummary converts a model.RoomSummary, including the round count
func RoomFromSummary(s *model.RoomSummary) Room {
	room := RoomFromModel(&s.Room)
	room.RoundCount = s.RoundCount
	return room
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// RoomListFromModel converts a list of rooms
func RoomListFromModel(rooms []*model.Room) RoomList {
	out := make([]Room, len(rooms))
	for i, r := range rooms {
		out[i] = RoomFromModel(r)
	}
	return RoomList{Rooms: out}
}

// RoundRef identifies a round without revealing its puzzle
type RoundRef struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
}

// RoundRefFromModel converts a model.Round to a RoundRef
func RoundRefFromModel(r *model.Round) RoundRef {
	return RoundRef{ID: string(r.ID), Number: r.Number}
}

// CreateRoomResponse is the response for creating a room
type CreateRoomResponse struct {
	Room   Room       `json:"room"`
	Rounds []RoundRef `json:"rounds"`
}

// CreateRoomResponseFromModel builds a CreateRoomResponse
func CreateRoomResponseFromModel(room *model.Room, rounds []*model.Round) CreateRoomResponse {
	refs := make([]RoundRef, len(rounds))
	for i, r := range rounds {
		refs[i] = RoundRefFromModel(r)
	}
	resp := CreateRoomResponse{Room: RoomFromModel(room), Rounds: refs}
	resp.Room.RoundCount = len(rounds)
	return resp
}

// RoundView is a round as shown to a solving player: shuffled words, no groups
type RoundView struct {
	ID       string   `json:"id"`
	RoomCode string   `json:"room_code"`
	Number   int      `json:"number"`
	Words    []string `json:"words"`
}

// RoundViewFromModel converts a model.RoundView
func RoundViewFromModel(v model.RoundView) RoundView {
	return RoundView{
		ID:       string(v.ID),
		RoomCode: string(v.RoomCode),
		Number:   v.Number,
		Words:    v.Words,
	}
}

// NextRound is the response for a player's next unfinished round
type NextRound struct {
	Complete bool       `json:"complete"`
	Round    *RoundView `json:"round,omitempty"`
}

// Player represents a player in API responses
type Player struct {
	ID        string    `json:"id"`
	RoomCode  string    `json:"room_code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:        string(p.ID),
		RoomCode:  string(p.RoomCode),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

// PlayerList is the response for listing a room's players
type PlayerList struct {
	Players []Player `json:"players"`
}

// PlayerListFromModel converts a list of players
func PlayerListFromModel(players []*model.Player) PlayerList {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return PlayerList{Players: out}
}

// Guess is the response for evaluating a guess
type Guess struct {
	Correct    bool   `json:"correct"`
	GroupName  string `json:"group_name,omitempty"`
	Connection string `json:"connection,omitempty"`
}

// GuessFromModel converts a model.GuessResult
func GuessFromModel(r model.GuessResult) Guess {
	return Guess{Correct: r.Correct, GroupName: r.GroupName, Connection: r.Connection}
}

// Score represents a recorded round result
type Score struct {
	PlayerID      string    `json:"player_id"`
	RoundID       string    `json:"round_id"`
	RoundNumber   int       `json:"round_number"`
	Mistakes      int       `json:"mistakes"`
	TimeSeconds   int       `json:"time_seconds"`
	CorrectGroups *int      `json:"correct_groups,omitempty"`
	Points        int       `json:"points"`
	CreatedAt     time.Time `json:"created_at"`
}

// ScoreFromModel converts a model.Score
func ScoreFromModel(s model.Score) Score {
	return Score{
		PlayerID:      string(s.PlayerID),
		RoundID:       string(s.RoundID),
		RoundNumber:   s.RoundNumber,
		Mistakes:      s.Mistakes,
		TimeSeconds:   s.TimeSeconds,
		CorrectGroups: s.CorrectGroups,
		Points:        s.Points,
		CreatedAt:     s.CreatedAt,
	}
}

// LeaderboardEntry is one ranked row of a leaderboard
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	TotalPoints  int    `json:"total_points"`
	RoundsPlayed int    `json:"rounds_played"`
}

// LeaderboardEntryFromModel converts a model.LeaderboardEntry
func LeaderboardEntryFromModel(e model.LeaderboardEntry) LeaderboardEntry {
	return LeaderboardEntry{
		Rank:         e.Rank,
		PlayerID:     string(e.PlayerID),
		PlayerName:   e.PlayerName,
		TotalPoints:  e.TotalPoints,
		RoundsPlayed: e.RoundsPlayed,
	}
}

// Leaderboard is the response for a room's leaderboard
type Leaderboard struct {
	RoomCode string             `json:"room_code"`
	Entries  []LeaderboardEntry `json:"entries"`
}

// LeaderboardFromModel converts ranked entries
func LeaderboardFromModel(code model.RoomCode, entries []model.LeaderboardEntry) Leaderboard {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntryFromModel(e)
	}
	return Leaderboard{RoomCode: string(code), Entries: out}
}

// FinishRound is the response for submitting a round result
type FinishRound struct {
	Score       Score       `json:"score"`
	Finished    bool        `json:"finished"`
	Leaderboard Leaderboard `json:"leaderboard"`
}

// FinishRoundFromModel converts a model.FinishOutcome
func FinishRoundFromModel(code model.RoomCode, o *model.FinishOutcome) FinishRound {
	return FinishRound{
		Score:       ScoreFromModel(o.Score),
		Finished:    o.Finished,
		Leaderboard: LeaderboardFromModel(code, o.Leaderboard),
	}
}

// Participant is one entry of a live snapshot
type Participant struct {
	PlayerID string    `json:"player_id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// LiveSnapshot is the optimistic live view of a room. Scores are provisional.
type LiveSnapshot struct {
	RoomCode     string        `json:"room_code"`
	Provisional  bool          `json:"provisional"`
	Participants []Participant `json:"participants"`
}

// LiveSnapshotFromModel converts live participants
func LiveSnapshotFromModel(code model.RoomCode, ps []model.Participant) LiveSnapshot {
	out := make([]Participant, len(ps))
	for i, p := range ps {
		out[i] = Participant{PlayerID: string(p.PlayerID), Name: p.Name, Score: p.Score, JoinedAt: p.JoinedAt}
	}
	return LiveSnapshot{RoomCode: string(code), Provisional: true, Participants: out}
}

// Health is the response for the health check
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
