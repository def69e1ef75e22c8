package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Multi-key writes go through Lua scripts so uniqueness checks and index
// updates happen atomically on the server.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	client, err := cfg.NewClient()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Client exposes the underlying connection so other components can share it
func (s *Storage) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) ttlMillis() int64 {
	return s.cfg.RoomTTL.Milliseconds()
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return model.Upstream("redis ping", err)
	}
	return nil
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	created, err := createRoomScript.Run(ctx, s.client,
		[]string{roomKey(room.Code), roomIndexKey()},
		data, room.CreatedAt.UnixMicro(), string(room.Code), s.ttlMillis(),
	).Int()
	if err != nil {
		return model.Upstream("redis create room", err)
	}
	if created == 0 {
		return model.ErrRoomExists
	}
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, model.Upstream("redis get room", err)
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	codes, err := s.client.ZRevRange(ctx, roomIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, model.Upstream("redis list rooms", err)
	}
	if len(codes) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, len(codes))
	for i, c := range codes {
		keys[i] = roomKey(model.RoomCode(c))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, model.Upstream("redis list rooms", err)
	}

	rooms := make([]*model.Room, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Expired room still present in the index
			continue
		}
		var room model.Room
		if err := json.Unmarshal([]byte(str), &room); err != nil {
			return nil, err
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}

// Round operations

func (s *Storage) AppendRound(ctx context.Context, round *model.Round) error {
	body := *round
	body.Number = 0
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	n, err := appendRoundScript.Run(ctx, s.client,
		[]string{roomKey(round.RoomCode), roundSeqKey(round.RoomCode), roomRoundsKey(round.RoomCode), roundKey(round.ID)},
		string(round.ID), data, s.ttlMillis(),
	).Int()
	if err != nil {
		return model.Upstream("redis append round", err)
	}
	if n < 0 {
		return model.ErrRoomNotFound
	}
	round.Number = n
	return nil
}

func decodeRound(fields map[string]string) (*model.Round, error) {
	body, ok := fields["body"]
	if !ok {
		return nil, model.ErrRoundNotFound
	}
	var round model.Round
	if err := json.Unmarshal([]byte(body), &round); err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(fields["number"])
	if err != nil {
		return nil, err
	}
	round.Number = n
	return &round, nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	fields, err := s.client.HGetAll(ctx, roundKey(id)).Result()
	if err != nil {
		return nil, model.Upstream("redis get round", err)
	}
	return decodeRound(fields)
}

func (s *Storage) GetRoundByNumber(ctx context.Context, code model.RoomCode, number int) (*model.Round, error) {
	id, err := s.client.HGet(ctx, roomRoundsKey(code), strconv.Itoa(number)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoundNotFound
		}
		return nil, model.Upstream("redis get round", err)
	}
	return s.GetRound(ctx, model.RoundID(id))
}

func (s *Storage) ListRounds(ctx context.Context, code model.RoomCode) ([]*model.Round, error) {
	index, err := s.client.HGetAll(ctx, roomRoundsKey(code)).Result()
	if err != nil {
		return nil, model.Upstream("redis list rounds", err)
	}
	if len(index) == 0 {
		return []*model.Round{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, len(index))
	for _, id := range index {
		cmds = append(cmds, pipe.HGetAll(ctx, roundKey(model.RoundID(id))))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, model.Upstream("redis list rounds", err)
	}

	rounds := make([]*model.Round, 0, len(cmds))
	for _, cmd := range cmds {
		round, err := decodeRound(cmd.Val())
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	return rounds, nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	res, err := createPlayerScript.Run(ctx, s.client,
		[]string{roomKey(player.RoomCode), playerNameIndexKey(player.RoomCode), playerKey(player.ID), roomPlayersKey(player.RoomCode)},
		storage.NameKey(player.Name), string(player.ID), data, s.ttlMillis(),
	).Int()
	if err != nil {
		return model.Upstream("redis create player", err)
	}
	switch res {
	case -1:
		return model.ErrRoomNotFound
	case 0:
		return model.ErrDuplicatePlayerName
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, model.Upstream("redis get player", err)
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) ListPlayers(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	ids, err := s.client.LRange(ctx, roomPlayersKey(code), 0, -1).Result()
	if err != nil {
		return nil, model.Upstream("redis list players", err)
	}
	if len(ids) == 0 {
		return []*model.Player{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, model.Upstream("redis list players", err)
	}

	players := make([]*model.Player, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var player model.Player
		if err := json.Unmarshal([]byte(str), &player); err != nil {
			return nil, err
		}
		players = append(players, &player)
	}
	return players, nil
}

// Score operations

func (s *Storage) RecordScore(ctx context.Context, score *model.Score) error {
	data, err := json.Marshal(score)
	if err != nil {
		return err
	}

	res, err := recordScoreScript.Run(ctx, s.client,
		[]string{
			scoreKey(score.RoundID, score.PlayerID),
			playerScoresKey(score.RoomCode, score.PlayerID),
			pointsKey(score.RoomCode),
			roundsPlayedKey(score.RoomCode),
		},
		data, score.RoundNumber, string(score.RoundID), string(score.PlayerID), score.Points, s.ttlMillis(),
	).Int()
	if err != nil {
		return model.Upstream("redis record score", err)
	}
	if res == 0 {
		return model.ErrScoreExists
	}
	return nil
}

func (s *Storage) GetScore(ctx context.Context, roundID model.RoundID, playerID model.PlayerID) (*model.Score, error) {
	data, err := s.client.Get(ctx, scoreKey(roundID, playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrScoreNotFound
		}
		return nil, model.Upstream("redis get score", err)
	}

	var score model.Score
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *Storage) ListPlayerScores(ctx context.Context, code model.RoomCode, playerID model.PlayerID) ([]*model.Score, error) {
	roundIDs, err := s.client.ZRange(ctx, playerScoresKey(code, playerID), 0, -1).Result()
	if err != nil {
		return nil, model.Upstream("redis list scores", err)
	}
	if len(roundIDs) == 0 {
		return []*model.Score{}, nil
	}

	keys := make([]string, len(roundIDs))
	for i, id := range roundIDs {
		keys[i] = scoreKey(model.RoundID(id), playerID)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, model.Upstream("redis list scores", err)
	}

	scores := make([]*model.Score, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var score model.Score
		if err := json.Unmarshal([]byte(str), &score); err != nil {
			return nil, err
		}
		scores = append(scores, &score)
	}
	return scores, nil
}

func (s *Storage) PlayerTotals(ctx context.Context, code model.RoomCode) ([]model.PlayerTotal, error) {
	pipe := s.client.Pipeline()
	pointsCmd := pipe.HGetAll(ctx, pointsKey(code))
	playedCmd := pipe.HGetAll(ctx, roundsPlayedKey(code))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, model.Upstream("redis player totals", err)
	}

	played := playedCmd.Val()
	totals := make([]model.PlayerTotal, 0, len(pointsCmd.Val()))
	for id, pts := range pointsCmd.Val() {
		points, err := strconv.Atoi(pts)
		if err != nil {
			return nil, err
		}
		rounds, err := strconv.Atoi(played[id])
		if err != nil {
			return nil, err
		}
		totals = append(totals, model.PlayerTotal{
			PlayerID:     model.PlayerID(id),
			TotalPoints:  points,
			RoundsPlayed: rounds,
		})
	}
	return totals, nil
}
