package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/connections-go/internal/dependencies/clock"
	"github.com/mcoot/connections-go/internal/dependencies/random"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// DefaultCodeAttempts bounds how many codes CreateRoom tries before giving up
	DefaultCodeAttempts = 10
	// MaxPlayerNameLength is the longest accepted player name, in characters
	MaxPlayerNameLength = 32
)

// Notifier is told about room changes that connected clients care about
type Notifier interface {
	PlayerJoined(ctx context.Context, player model.Player) error
	RoundAdded(ctx context.Context, round model.Round) error
}

// Service manages rooms, their rounds and their players
type Service struct {
	storage      storage.Storage
	notifier     Notifier
	clock        clock.Clock
	random       random.Random
	logger       *slog.Logger
	codeAttempts int
}

// New creates a new room Service. codeAttempts <= 0 uses DefaultCodeAttempts.
func New(
	storage storage.Storage,
	notifier Notifier,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	codeAttempts int,
) *Service {
	if codeAttempts <= 0 {
		codeAttempts = DefaultCodeAttempts
	}
	return &Service{
		storage:      storage,
		notifier:     notifier,
		clock:        clock,
		random:       random,
		logger:       logger.With(slog.String("component", "room")),
		codeAttempts: codeAttempts,
	}
}

// CreateRoom creates a room under a fresh random code and appends one round
// per puzzle, in order. Every puzzle is validated before anything is written.
func (s *Service) CreateRoom(ctx context.Context, name string, puzzles []model.Puzzle) (*model.Room, []*model.Round, error) {
	if len(puzzles) == 0 {
		return nil, nil, model.ErrNoRounds
	}
	for _, p := range puzzles {
		if err := p.Validate(); err != nil {
			return nil, nil, err
		}
	}

	room := &model.Room{
		Name:      strings.TrimSpace(name),
		CreatedAt: s.clock.Now(),
	}

	created := false
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		room.Code = model.RoomCode(s.random.String(RoomCodeLength, RoomCodeAlphabet))
		err := s.storage.CreateRoom(ctx, room)
		if errors.Is(err, model.ErrRoomExists) {
			s.logger.Debug("room code collision, retrying", slog.String("room_code", string(room.Code)))
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		created = true
		break
	}
	if !created {
		return nil, nil, model.ErrRoomCodeExhausted
	}

	rounds := make([]*model.Round, 0, len(puzzles))
	for _, p := range puzzles {
		round, err := s.appendRound(ctx, room.Code, p)
		if err != nil {
			// The room row already exists; record what was left behind
			s.logger.Error("room created with missing rounds",
				slog.String("room_code", string(room.Code)),
				slog.Int("rounds_written", len(rounds)),
				slog.Int("rounds_requested", len(puzzles)),
				slog.Any("error", err))
			return nil, nil, err
		}
		rounds = append(rounds, round)
	}

	s.logger.Info("room created",
		slog.String("room_code", string(room.Code)),
		slog.Int("rounds", len(rounds)))
	return room, rounds, nil
}

func (s *Service) appendRound(ctx context.Context, code model.RoomCode, puzzle model.Puzzle) (*model.Round, error) {
	round := &model.Round{
		ID:        model.RoundID(s.random.UUID()),
		RoomCode:  code,
		Puzzle:    puzzle,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.AppendRound(ctx, round); err != nil {
		return nil, err
	}
	return round, nil
}

// AddRound appends a round to an existing room
func (s *Service) AddRound(ctx context.Context, code model.RoomCode, puzzle model.Puzzle) (*model.Round, error) {
	if err := puzzle.Validate(); err != nil {
		return nil, err
	}
	round, err := s.appendRound(ctx, code, puzzle)
	if err != nil {
		return nil, err
	}

	s.logger.Info("round added",
		slog.String("room_code", string(code)),
		slog.Int("round_number", round.Number))

	if err := s.notifier.RoundAdded(ctx, *round); err != nil {
		s.logger.Warn("round added notification failed",
			slog.String("room_code", string(code)),
			slog.Any("error", err))
	}
	return round, nil
}

// GetRoom retrieves a room and how many rounds it has
func (s *Service) GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomSummary, error) {
	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	rounds, err := s.storage.ListRounds(ctx, code)
	if err != nil {
		return nil, err
	}
	return &model.RoomSummary{Room: *room, RoundCount: len(rounds)}, nil
}

// ListRooms returns all rooms, newest first
func (s *Service) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return s.storage.ListRooms(ctx)
}

// GetRound returns a room's round by number, including its solution
func (s *Service) GetRound(ctx context.Context, code model.RoomCode, number int) (*model.Round, error) {
	if _, err := s.storage.GetRoom(ctx, code); err != nil {
		return nil, err
	}
	return s.storage.GetRoundByNumber(ctx, code, number)
}

// View hides a round's groups and shuffles its words for display
func (s *Service) View(round *model.Round) model.RoundView {
	return model.RoundView{
		ID:       round.ID,
		RoomCode: round.RoomCode,
		Number:   round.Number,
		Words:    random.Shuffle(s.random, round.Puzzle.Words()),
	}
}

// JoinRoom registers a new named player in the room
func (s *Service) JoinRoom(ctx context.Context, code model.RoomCode, name string) (*model.Player, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxPlayerNameLength {
		return nil, model.ErrInvalidPlayerName
	}
	if _, err := s.storage.GetRoom(ctx, code); err != nil {
		return nil, err
	}

	player := &model.Player{
		ID:        model.PlayerID(s.random.UUID()),
		RoomCode:  code,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("player joined room",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(player.ID)))

	if err := s.notifier.PlayerJoined(ctx, *player); err != nil {
		s.logger.Warn("player joined notification failed",
			slog.String("room_code", string(code)),
			slog.Any("error", err))
	}
	return player, nil
}

// ListPlayers returns the room's players in join order
func (s *Service) ListPlayers(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	if _, err := s.storage.GetRoom(ctx, code); err != nil {
		return nil, err
	}
	return s.storage.ListPlayers(ctx, code)
}

// GetPlayer returns a player, checking it belongs to the room
func (s *Service) GetPlayer(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrPlayerNotInRoom
		}
		return nil, err
	}
	if player.RoomCode != code {
		return nil, model.ErrPlayerNotInRoom
	}
	return player, nil
}
