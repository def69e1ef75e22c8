package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/connections-go/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Room:
		o.printRoom(v)
	case response.RoomList:
		for _, r := range v.Rooms {
			o.printf("%s  %s\n", r.Code, r.Name)
		}
	case response.CreateRoomResponse:
		o.printRoom(v.Room)
		for _, r := range v.Rounds {
			o.printf("  round %d: %s\n", r.Number, r.ID)
		}
	case response.RoundRef:
		o.printf("Round %d: %s\n", v.Number, v.ID)
	case response.RoundView:
		o.printRoundView(v)
	case response.NextRound:
		if v.Complete || v.Round == nil {
			o.printf("All rounds complete\n")
			return
		}
		o.printRoundView(*v.Round)
	case response.Player:
		o.printf("Player: %s (%s)\n", v.Name, v.ID)
		o.printf("Room: %s\n", v.RoomCode)
	case response.PlayerList:
		for _, p := range v.Players {
			o.printf("%s  %s\n", p.ID, p.Name)
		}
	case response.Guess:
		o.printGuess(v)
	case response.FinishRound:
		o.printf("Round %d scored: %d points (%d mistakes, %ds)\n",
			v.Score.RoundNumber, v.Score.Points, v.Score.Mistakes, v.Score.TimeSeconds)
		o.printLeaderboard(v.Leaderboard)
	case response.Leaderboard:
		o.printLeaderboard(v)
	case response.LeaderboardEntry:
		o.printf("Winner: %s (%s) with %d points\n", v.PlayerName, v.PlayerID, v.TotalPoints)
	case response.Health:
		o.printf("Status: %s\n", v.Status)
		o.printf("Storage: %s\n", v.Storage)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printRoom(r response.Room) {
	o.printf("Room: %s\n", r.Code)
	if r.Name != "" {
		o.printf("Name: %s\n", r.Name)
	}
	o.printf("Rounds: %d\n", r.RoundCount)
}

func (o *Output) printRoundView(v response.RoundView) {
	o.printf("Round %d (%s)\n", v.Number, v.ID)
	for i := 0; i < len(v.Words); i += 4 {
		end := min(i+4, len(v.Words))
		o.printf("  %s\n", strings.Join(v.Words[i:end], "  "))
	}
}

func (o *Output) printGuess(g response.Guess) {
	if !g.Correct {
		o.printf("Incorrect\n")
		return
	}
	o.printf("Correct! %s: %s\n", g.GroupName, g.Connection)
}

func (o *Output) printLeaderboard(l response.Leaderboard) {
	if len(l.Entries) == 0 {
		o.printf("No scores yet\n")
		return
	}
	for _, e := range l.Entries {
		o.printf("%2d. %-20s %5d pts  (%d rounds)\n", e.Rank, e.PlayerName, e.TotalPoints, e.RoundsPlayed)
	}
}
