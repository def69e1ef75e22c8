package redis

import (
	"fmt"

	"github.com/mcoot/connections-go/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "connections"

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// roomIndexKey returns the ZSET of room codes scored by creation time
func roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// roundSeqKey returns the counter used to number a room's rounds
func roundSeqKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s:round_seq", keyPrefix, code)
}

// roomRoundsKey returns the HASH of round number -> round ID for a room
func roomRoundsKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s:rounds", keyPrefix, code)
}

// roundKey returns the HASH holding a Round's number and encoded body
func roundKey(id model.RoundID) string {
	return fmt.Sprintf("%s:round:%s", keyPrefix, id)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// roomPlayersKey returns the LIST of player IDs in join order
func roomPlayersKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s:players", keyPrefix, code)
}

// playerNameIndexKey returns the HASH of normalized name -> player ID
func playerNameIndexKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:idx:room:%s:player_names", keyPrefix, code)
}

// scoreKey returns the Redis key for a Score
func scoreKey(roundID model.RoundID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:score:%s:%s", keyPrefix, roundID, playerID)
}

// playerScoresKey returns the ZSET of round IDs a player has scored, by round number
func playerScoresKey(code model.RoomCode, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:room:%s:player_scores:%s", keyPrefix, code, playerID)
}

// pointsKey returns the HASH of player ID -> total points in a room
func pointsKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s:points", keyPrefix, code)
}

// roundsPlayedKey returns the HASH of player ID -> rounds scored in a room
func roundsPlayedKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s:rounds_played", keyPrefix, code)
}
