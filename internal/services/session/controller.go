// Package session runs the per-player round lifecycle: evaluating guesses,
// recording finished rounds and publishing the resulting leaderboard.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/connections-go/internal/dependencies/clock"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/services/leaderboard"
	"github.com/mcoot/connections-go/internal/services/matcher"
	"github.com/mcoot/connections-go/internal/services/progression"
	"github.com/mcoot/connections-go/internal/services/scoring"
	"github.com/mcoot/connections-go/internal/storage"
)

// Notifier delivers the authoritative leaderboard to everyone in a room
type Notifier interface {
	LeaderboardUpdated(ctx context.Context, code model.RoomCode, roundNumber int, entries []model.LeaderboardEntry) error
}

// Controller manages the InProgress -> Finished lifecycle of each
// (room, player, round). A round is Finished once a score exists for it.
type Controller struct {
	storage    storage.Storage
	scorer     *scoring.Service
	tracker    *progression.Tracker
	aggregator *leaderboard.Aggregator
	notifier   Notifier
	clock      clock.Clock
	logger     *slog.Logger
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	scorer *scoring.Service,
	tracker *progression.Tracker,
	aggregator *leaderboard.Aggregator,
	notifier Notifier,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:    storage,
		scorer:     scorer,
		tracker:    tracker,
		aggregator: aggregator,
		notifier:   notifier,
		clock:      clock,
		logger:     logger.With(slog.String("component", "session")),
	}
}

// EvaluateGuess checks four words against the round's puzzle. When playerID
// is non-empty and that player has already finished the round, the guess is
// rejected with model.ErrRoundFinished. No state is changed either way.
func (c *Controller) EvaluateGuess(ctx context.Context, roundID model.RoundID, playerID model.PlayerID, words []string) (model.GuessResult, error) {
	if _, err := matcher.NormalizeGuess(words); err != nil {
		return model.GuessResult{}, err
	}

	round, err := c.storage.GetRound(ctx, roundID)
	if err != nil {
		return model.GuessResult{}, err
	}

	if playerID != "" {
		finished, err := c.isFinished(ctx, roundID, playerID)
		if err != nil {
			return model.GuessResult{}, err
		}
		if finished {
			return model.GuessResult{}, model.ErrRoundFinished
		}
	}

	return matcher.Evaluate(round.Puzzle, words)
}

func (c *Controller) isFinished(ctx context.Context, roundID model.RoundID, playerID model.PlayerID) (bool, error) {
	_, err := c.storage.GetScore(ctx, roundID, playerID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, model.ErrScoreNotFound):
		return false, nil
	default:
		return false, err
	}
}

// FinishRound records the player's result for a round, then recomputes and
// broadcasts the room leaderboard. The fresh leaderboard is also returned so
// the caller does not have to wait for the broadcast. A rejected result
// writes nothing and broadcasts nothing.
func (c *Controller) FinishRound(
	ctx context.Context,
	code model.RoomCode,
	roundNumber int,
	playerID model.PlayerID,
	result model.RoundResult,
) (*model.FinishOutcome, error) {
	round, player, err := c.loadRoundAndPlayer(ctx, code, roundNumber, playerID)
	if err != nil {
		return nil, err
	}

	score, err := c.buildScore(round, player, result)
	if err != nil {
		return nil, err
	}

	if err := c.storage.RecordScore(ctx, score); err != nil {
		if errors.Is(err, model.ErrScoreExists) {
			c.logger.Info("duplicate round result rejected",
				slog.String("room_code", string(code)),
				slog.String("player_id", string(playerID)),
				slog.Int("round_number", roundNumber))
		}
		return nil, err
	}

	c.logger.Info("round finished",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Int("round_number", roundNumber),
		slog.Int("points", score.Points))

	outcome := &model.FinishOutcome{
		Score:    *score,
		Finished: result.CorrectGroups != nil && c.scorer.IsFinished(*result.CorrectGroups, result.Mistakes),
	}

	// The score is recorded; failures past this point are only logged.
	entries, err := c.aggregator.Leaderboard(ctx, code)
	if err != nil {
		c.logger.Error("leaderboard recompute failed after recording score",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(playerID)),
			slog.Any("error", err))
		return outcome, nil
	}
	outcome.Leaderboard = entries

	if err := c.notifier.LeaderboardUpdated(ctx, code, roundNumber, entries); err != nil {
		c.logger.Error("leaderboard broadcast failed",
			slog.String("room_code", string(code)),
			slog.Any("error", err))
	}

	return outcome, nil
}

func (c *Controller) loadRoundAndPlayer(ctx context.Context, code model.RoomCode, roundNumber int, playerID model.PlayerID) (*model.Round, *model.Player, error) {
	if _, err := c.storage.GetRoom(ctx, code); err != nil {
		return nil, nil, err
	}
	round, err := c.storage.GetRoundByNumber(ctx, code, roundNumber)
	if err != nil {
		return nil, nil, err
	}
	player, err := c.playerInRoom(ctx, code, playerID)
	if err != nil {
		return nil, nil, err
	}
	return round, player, nil
}

func (c *Controller) playerInRoom(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Player, error) {
	player, err := c.storage.GetPlayer(ctx, playerID)
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

// buildScore validates the reported tallies and settles the points. When the
// client reports how many groups it found, points are computed here and any
// client-claimed figure is ignored; otherwise the claimed points are only
// range-checked.
func (c *Controller) buildScore(round *model.Round, player *model.Player, result model.RoundResult) (*model.Score, error) {
	var groups *int
	validated := 0
	if result.CorrectGroups != nil {
		v := *result.CorrectGroups
		groups = &v
		validated = v
	}
	if err := c.scorer.Validate(validated, result.Mistakes, result.TimeSeconds); err != nil {
		return nil, err
	}

	var points int
	switch {
	case result.CorrectGroups != nil:
		points = c.scorer.Score(*groups, result.Mistakes, result.TimeSeconds)
		if result.Points != nil && *result.Points != points {
			c.logger.Warn("client points differ from computed points",
				slog.String("player_id", string(player.ID)),
				slog.Int("claimed", *result.Points),
				slog.Int("computed", points))
		}
	case result.Points != nil:
		points = *result.Points
		if points < 0 || points > c.scorer.MaxPoints() {
			return nil, model.ErrInvalidResult
		}
	default:
		return nil, model.ErrInvalidResult
	}

	return &model.Score{
		PlayerID:      player.ID,
		RoundID:       round.ID,
		RoomCode:      round.RoomCode,
		RoundNumber:   round.Number,
		Mistakes:      result.Mistakes,
		TimeSeconds:   result.TimeSeconds,
		CorrectGroups: groups,
		Points:        points,
		CreatedAt:     c.clock.Now(),
	}, nil
}

// NextRound returns the player's next unfinished round, or nil when the
// player has finished every round in the room.
func (c *Controller) NextRound(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Round, error) {
	if _, err := c.storage.GetRoom(ctx, code); err != nil {
		return nil, err
	}
	if _, err := c.playerInRoom(ctx, code, playerID); err != nil {
		return nil, err
	}
	return c.tracker.NextRound(ctx, code, playerID)
}

// Leaderboard returns the room's current ranking
func (c *Controller) Leaderboard(ctx context.Context, code model.RoomCode) ([]model.LeaderboardEntry, error) {
	if _, err := c.storage.GetRoom(ctx, code); err != nil {
		return nil, err
	}
	return c.aggregator.Leaderboard(ctx, code)
}

// Winner returns the room's current leader
func (c *Controller) Winner(ctx context.Context, code model.RoomCode) (*model.LeaderboardEntry, error) {
	if _, err := c.storage.GetRoom(ctx, code); err != nil {
		return nil, err
	}
	return c.aggregator.Winner(ctx, code)
}

// ControllerInterface is the surface the HTTP layer depends on
type ControllerInterface interface {
	EvaluateGuess(ctx context.Context, roundID model.RoundID, playerID model.PlayerID, words []string) (model.GuessResult, error)
	FinishRound(ctx context.Context, code model.RoomCode, roundNumber int, playerID model.PlayerID, result model.RoundResult) (*model.FinishOutcome, error)
	NextRound(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Round, error)
	Leaderboard(ctx context.Context, code model.RoomCode) ([]model.LeaderboardEntry, error)
	Winner(ctx context.Context, code model.RoomCode) (*model.LeaderboardEntry, error)
}

var _ ControllerInterface = (*Controller)(nil)
