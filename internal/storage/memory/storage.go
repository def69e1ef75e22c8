package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms        map[model.RoomCode]*model.Room
	rounds       map[model.RoundID]*model.Round
	roomRounds   map[model.RoomCode][]model.RoundID
	players      map[model.PlayerID]*model.Player
	roomPlayers  map[model.RoomCode][]model.PlayerID
	playerNames  map[nameKey]model.PlayerID
	scores       map[scoreKey]*model.Score
	playerScores map[model.PlayerID][]scoreKey
	roomScorers  map[model.RoomCode][]model.PlayerID
}

type nameKey struct {
	code model.RoomCode
	name string
}

type scoreKey struct {
	roundID  model.RoundID
	playerID model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:        make(map[model.RoomCode]*model.Room),
		rounds:       make(map[model.RoundID]*model.Round),
		roomRounds:   make(map[model.RoomCode][]model.RoundID),
		players:      make(map[model.PlayerID]*model.Player),
		roomPlayers:  make(map[model.RoomCode][]model.PlayerID),
		playerNames:  make(map[nameKey]model.PlayerID),
		scores:       make(map[scoreKey]*model.Score),
		playerScores: make(map[model.PlayerID][]scoreKey),
		roomScorers:  make(map[model.RoomCode][]model.PlayerID),
	}
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// Room operations

func (s *Storage) CreateRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Code]; ok {
		return model.ErrRoomExists
	}
	cp := *room
	s.rooms[room.Code] = &cp
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		cp := *r
		rooms = append(rooms, &cp)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
		}
		return rooms[i].Code < rooms[j].Code
	})
	return rooms, nil
}

// Round operations

func (s *Storage) AppendRound(ctx context.Context, round *model.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[round.RoomCode]; !ok {
		return model.ErrRoomNotFound
	}
	round.Number = len(s.roomRounds[round.RoomCode]) + 1
	cp := *round
	s.rounds[round.ID] = &cp
	s.roomRounds[round.RoomCode] = append(s.roomRounds[round.RoomCode], round.ID)
	return nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, ok := s.rounds[id]
	if !ok {
		return nil, model.ErrRoundNotFound
	}
	cp := *round
	return &cp, nil
}

func (s *Storage) GetRoundByNumber(ctx context.Context, code model.RoomCode, number int) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.roomRounds[code]
	if number < 1 || number > len(ids) {
		return nil, model.ErrRoundNotFound
	}
	cp := *s.rounds[ids[number-1]]
	return &cp, nil
}

func (s *Storage) ListRounds(ctx context.Context, code model.RoomCode) ([]*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.roomRounds[code]
	rounds := make([]*model.Round, 0, len(ids))
	for _, id := range ids {
		cp := *s.rounds[id]
		rounds = append(rounds, &cp)
	}
	return rounds, nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[player.RoomCode]; !ok {
		return model.ErrRoomNotFound
	}
	key := nameKey{code: player.RoomCode, name: storage.NameKey(player.Name)}
	if _, taken := s.playerNames[key]; taken {
		return model.ErrDuplicatePlayerName
	}
	cp := *player
	s.players[player.ID] = &cp
	s.playerNames[key] = player.ID
	s.roomPlayers[player.RoomCode] = append(s.roomPlayers[player.RoomCode], player.ID)
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) ListPlayers(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.roomPlayers[code]
	players := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		cp := *s.players[id]
		players = append(players, &cp)
	}
	return players, nil
}

// Score operations

func (s *Storage) RecordScore(ctx context.Context, score *model.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scoreKey{roundID: score.RoundID, playerID: score.PlayerID}
	if _, exists := s.scores[key]; exists {
		return model.ErrScoreExists
	}
	cp := *score
	s.scores[key] = &cp
	if len(s.playerScores[score.PlayerID]) == 0 {
		s.roomScorers[score.RoomCode] = append(s.roomScorers[score.RoomCode], score.PlayerID)
	}
	s.playerScores[score.PlayerID] = append(s.playerScores[score.PlayerID], key)
	return nil
}

func (s *Storage) GetScore(ctx context.Context, roundID model.RoundID, playerID model.PlayerID) (*model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[scoreKey{roundID: roundID, playerID: playerID}]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	cp := *score
	return &cp, nil
}

func (s *Storage) ListPlayerScores(ctx context.Context, code model.RoomCode, playerID model.PlayerID) ([]*model.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var scores []*model.Score
	for _, key := range s.playerScores[playerID] {
		sc := s.scores[key]
		if sc.RoomCode != code {
			continue
		}
		cp := *sc
		scores = append(scores, &cp)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].RoundNumber < scores[j].RoundNumber })
	return scores, nil
}

func (s *Storage) PlayerTotals(ctx context.Context, code model.RoomCode) ([]model.PlayerTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make([]model.PlayerTotal, 0, len(s.roomScorers[code]))
	for _, playerID := range s.roomScorers[code] {
		t := model.PlayerTotal{PlayerID: playerID}
		for _, key := range s.playerScores[playerID] {
			if sc := s.scores[key]; sc.RoomCode == code {
				t.TotalPoints += sc.Points
				t.RoundsPlayed++
			}
		}
		totals = append(totals, t)
	}
	return totals, nil
}
