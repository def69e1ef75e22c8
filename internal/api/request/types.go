package request

import "github.com/mcoot/connections-go/internal/model"

// Group is one group of four connected words
type Group struct {
	Name       string   `json:"name"`
	Connection string   `json:"connection"`
	Words      []string `json:"words"`
}

// Puzzle is a puzzle as submitted by a room creator
type Puzzle struct {
	Groups []Group `json:"groups"`
}

// ToModel converts the request puzzle to a model.Puzzle. Validation happens
// in the room service.
func (p Puzzle) ToModel() model.Puzzle {
	groups := make([]model.Group, len(p.Groups))
	for i, g := range p.Groups {
		groups[i] = model.Group{
			Name:       g.Name,
			Connection: g.Connection,
			Words:      append([]string(nil), g.Words...),
		}
	}
	return model.Puzzle{Groups: groups}
}

// PuzzlesToModel converts a list of request puzzles
func PuzzlesToModel(ps []Puzzle) []model.Puzzle {
	out := make([]model.Puzzle, len(ps))
	for i, p := range ps {
		out[i] = p.ToModel()
	}
	return out
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name   string   `json:"name,omitempty"`
	Rounds []Puzzle `json:"rounds"`
}

// AddRoundRequest is the request body for appending a round to a room
type AddRoundRequest struct {
	Puzzle Puzzle `json:"puzzle"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Name string `json:"name"`
}

// GuessRequest is the request body for evaluating a guess. PlayerID is
// optional; when given, guesses on a finished round are rejected.
type GuessRequest struct {
	PlayerID string   `json:"player_id,omitempty"`
	Words    []string `json:"words"`
}

// FinishRoundRequest is the request body for submitting a round result
type FinishRoundRequest struct {
	PlayerID      string `json:"player_id"`
	Mistakes      int    `json:"mistakes"`
	TimeSeconds   int    `json:"time_seconds"`
	CorrectGroups *int   `json:"correct_groups,omitempty"`
	Points        *int   `json:"points,omitempty"`
}

// ToModel converts the request to a model.RoundResult
func (r FinishRoundRequest) ToModel() model.RoundResult {
	return model.RoundResult{
		Mistakes:      r.Mistakes,
		TimeSeconds:   r.TimeSeconds,
		CorrectGroups: r.CorrectGroups,
		Points:        r.Points,
	}
}
