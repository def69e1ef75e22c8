package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
	"github.com/mcoot/connections-go/internal/storage/postgres/migrations"
)

// Storage is a PostgreSQL implementation of the storage interface.
// Uniqueness rules are enforced by table constraints.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to the database at dsn and applies pending migrations
func New(ctx context.Context, dsn string) (*Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if err := migrations.Run(db); err != nil {
		pool.Close()
		return nil, err
	}

	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing, already migrated pool
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Close releases all pooled connections
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

var _ storage.Storage = (*Storage)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return model.Upstream("postgres ping", err)
	}
	return nil
}

// Rooms

func (s *Storage) CreateRoom(ctx context.Context, room *model.Room) error {
	const q = `INSERT INTO rooms (code, name, created_at) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, q, room.Code, room.Name, room.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return model.ErrRoomExists
		}
		return model.Upstream("postgres create room", err)
	}
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	const q = `SELECT code, name, created_at FROM rooms WHERE code = $1`
	var r model.Room
	if err := s.pool.QueryRow(ctx, q, code).Scan(&r.Code, &r.Name, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, model.Upstream("postgres get room", err)
	}
	return &r, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	const q = `SELECT code, name, created_at FROM rooms ORDER BY created_at DESC, code`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, model.Upstream("postgres list rooms", err)
	}
	rooms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Room, error) {
		var r model.Room
		err := row.Scan(&r.Code, &r.Name, &r.CreatedAt)
		return &r, err
	})
	if err != nil {
		return nil, model.Upstream("postgres list rooms", err)
	}
	return rooms, nil
}

// Rounds

const roundColumns = `id, room_code, number, puzzle, created_at`

func scanRound(row pgx.Row) (*model.Round, error) {
	var r model.Round
	err := row.Scan(&r.ID, &r.RoomCode, &r.Number, &r.Puzzle, &r.CreatedAt)
	return &r, err
}

func (s *Storage) AppendRound(ctx context.Context, round *model.Round) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Upstream("postgres append round", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the room row so concurrent appends serialize on numbering
	var code string
	err = tx.QueryRow(ctx, `SELECT code FROM rooms WHERE code = $1 FOR UPDATE`, round.RoomCode).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrRoomNotFound
		}
		return model.Upstream("postgres append round", err)
	}

	var next int
	err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(number), 0) + 1 FROM rounds WHERE room_code = $1`, round.RoomCode).Scan(&next)
	if err != nil {
		return model.Upstream("postgres append round", err)
	}

	const insert = `INSERT INTO rounds (` + roundColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, insert, round.ID, round.RoomCode, next, round.Puzzle, round.CreatedAt); err != nil {
		return model.Upstream("postgres append round", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Upstream("postgres append round", err)
	}
	round.Number = next
	return nil
}

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	r, err := scanRound(s.pool.QueryRow(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRoundNotFound
		}
		return nil, model.Upstream("postgres get round", err)
	}
	return r, nil
}

func (s *Storage) GetRoundByNumber(ctx context.Context, code model.RoomCode, number int) (*model.Round, error) {
	const q = `SELECT ` + roundColumns + ` FROM rounds WHERE room_code = $1 AND number = $2`
	r, err := scanRound(s.pool.QueryRow(ctx, q, code, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRoundNotFound
		}
		return nil, model.Upstream("postgres get round", err)
	}
	return r, nil
}

func (s *Storage) ListRounds(ctx context.Context, code model.RoomCode) ([]*model.Round, error) {
	const q = `SELECT ` + roundColumns + ` FROM rounds WHERE room_code = $1 ORDER BY number`
	rows, err := s.pool.Query(ctx, q, code)
	if err != nil {
		return nil, model.Upstream("postgres list rounds", err)
	}
	rounds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Round, error) {
		return scanRound(row)
	})
	if err != nil {
		return nil, model.Upstream("postgres list rounds", err)
	}
	return rounds, nil
}

// Players

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	const q = `
		INSERT INTO players (id, room_code, name, name_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, q, player.ID, player.RoomCode, player.Name, storage.NameKey(player.Name), player.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.ErrDuplicatePlayerName
		case isForeignKeyViolation(err):
			return model.ErrRoomNotFound
		}
		return model.Upstream("postgres create player", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	const q = `SELECT id, room_code, name, created_at FROM players WHERE id = $1`
	var p model.Player
	if err := s.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.RoomCode, &p.Name, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, model.Upstream("postgres get player", err)
	}
	return &p, nil
}

func (s *Storage) ListPlayers(ctx context.Context, code model.RoomCode) ([]*model.Player, error) {
	const q = `SELECT id, room_code, name, created_at FROM players WHERE room_code = $1 ORDER BY seq`
	rows, err := s.pool.Query(ctx, q, code)
	if err != nil {
		return nil, model.Upstream("postgres list players", err)
	}
	players, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Player, error) {
		var p model.Player
		err := row.Scan(&p.ID, &p.RoomCode, &p.Name, &p.CreatedAt)
		return &p, err
	})
	if err != nil {
		return nil, model.Upstream("postgres list players", err)
	}
	return players, nil
}

// Scores

const scoreColumns = `player_id, round_id, room_code, round_number, mistakes, time_seconds, correct_groups, points, created_at`

func scanScore(row pgx.Row) (*model.Score, error) {
	var sc model.Score
	err := row.Scan(&sc.PlayerID, &sc.RoundID, &sc.RoomCode, &sc.RoundNumber,
		&sc.Mistakes, &sc.TimeSeconds, &sc.CorrectGroups, &sc.Points, &sc.CreatedAt)
	return &sc, err
}

func (s *Storage) RecordScore(ctx context.Context, score *model.Score) error {
	const q = `INSERT INTO scores (` + scoreColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.pool.Exec(ctx, q, score.PlayerID, score.RoundID, score.RoomCode, score.RoundNumber,
		score.Mistakes, score.TimeSeconds, score.CorrectGroups, score.Points, score.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrScoreExists
		}
		return model.Upstream("postgres record score", err)
	}
	return nil
}

func (s *Storage) GetScore(ctx context.Context, roundID model.RoundID, playerID model.PlayerID) (*model.Score, error) {
	const q = `SELECT ` + scoreColumns + ` FROM scores WHERE round_id = $1 AND player_id = $2`
	sc, err := scanScore(s.pool.QueryRow(ctx, q, roundID, playerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrScoreNotFound
		}
		return nil, model.Upstream("postgres get score", err)
	}
	return sc, nil
}

func (s *Storage) ListPlayerScores(ctx context.Context, code model.RoomCode, playerID model.PlayerID) ([]*model.Score, error) {
	const q = `SELECT ` + scoreColumns + ` FROM scores WHERE room_code = $1 AND player_id = $2 ORDER BY round_number`
	rows, err := s.pool.Query(ctx, q, code, playerID)
	if err != nil {
		return nil, model.Upstream("postgres list scores", err)
	}
	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Score, error) {
		return scanScore(row)
	})
	if err != nil {
		return nil, model.Upstream("postgres list scores", err)
	}
	return scores, nil
}

func (s *Storage) PlayerTotals(ctx context.Context, code model.RoomCode) ([]model.PlayerTotal, error) {
	const q = `
		SELECT player_id, SUM(points)::int, COUNT(*)::int
		FROM scores
		WHERE room_code = $1
		GROUP BY player_id
	`
	rows, err := s.pool.Query(ctx, q, code)
	if err != nil {
		return nil, model.Upstream("postgres player totals", err)
	}
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PlayerTotal, error) {
		var t model.PlayerTotal
		err := row.Scan(&t.PlayerID, &t.TotalPoints, &t.RoundsPlayed)
		return t, err
	})
	if err != nil {
		return nil, model.Upstream("postgres player totals", err)
	}
	return totals, nil
}
