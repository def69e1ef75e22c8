package storage

import (
	"context"

	"github.com/mcoot/connections-go/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations must make CreateRoom, AppendRound, CreatePlayer and
// RecordScore atomic with respect to their uniqueness rules: concurrent
// callers racing on the same key see exactly one success.
type Storage interface {
	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error

	// Room operations

	// CreateRoom fails with model.ErrRoomExists when the code is taken
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	// ListRooms returns rooms newest first
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Round operations

	// AppendRound assigns round.Number as the next number in the room
	AppendRound(ctx context.Context, round *model.Round) error
	GetRound(ctx context.Context, id model.RoundID) (*model.Round, error)
	GetRoundByNumber(ctx context.Context, code model.RoomCode, number int) (*model.Round, error)
	// ListRounds returns the room's rounds ordered by number
	ListRounds(ctx context.Context, code model.RoomCode) ([]*model.Round, error)

	// Player operations

	// CreatePlayer fails with model.ErrDuplicatePlayerName when another
	// player in the room has the same name ignoring case
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// ListPlayers returns the room's players in join order
	ListPlayers(ctx context.Context, code model.RoomCode) ([]*model.Player, error)

	// Score operations

	// RecordScore fails with model.ErrScoreExists when the player already
	// has a score for the round; the existing score is left untouched
	RecordScore(ctx context.Context, score *model.Score) error
	GetScore(ctx context.Context, roundID model.RoundID, playerID model.PlayerID) (*model.Score, error)
	// ListPlayerScores returns one player's scores in a room ordered by round number
	ListPlayerScores(ctx context.Context, code model.RoomCode, playerID model.PlayerID) ([]*model.Score, error)
	// PlayerTotals sums points per player over all scores in the room.
	// Players without scores are omitted; order is unspecified.
	PlayerTotals(ctx context.Context, code model.RoomCode) ([]model.PlayerTotal, error)
}

// NameKey is the case-insensitive form under which player names are unique
func NameKey(name string) string {
	return model.NormalizeWord(name)
}
