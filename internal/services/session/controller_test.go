package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connections-go/internal/dependencies/mocks"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/services/leaderboard"
	"github.com/mcoot/connections-go/internal/services/progression"
	"github.com/mcoot/connections-go/internal/services/scoring"
	"github.com/mcoot/connections-go/internal/storage"
	"github.com/mcoot/connections-go/internal/storage/memory"
	"github.com/mcoot/connections-go/internal/testutil"
)

func intPtr(v int) *int { return &v }

func puzzle(tag string) model.Puzzle {
	return model.Puzzle{Groups: []model.Group{
		{Name: "Yellow", Connection: "Fish " + tag, Words: []string{"Bass" + tag, "Pike" + tag, "Carp" + tag, "Sole" + tag}},
		{Name: "Green", Connection: "Notes " + tag, Words: []string{"Do" + tag, "Re" + tag, "Mi" + tag, "Fa" + tag}},
		{Name: "Blue", Connection: "Planets " + tag, Words: []string{"Mars" + tag, "Venus" + tag, "Earth" + tag, "Saturn" + tag}},
		{Name: "Purple", Connection: "Colors " + tag, Words: []string{"Red" + tag, "Blue" + tag, "Green" + tag, "Teal" + tag}},
	}}
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	notifier   *mocks.RecordingNotifier
	controller *Controller
	ctx        context.Context
	rounds     []*model.Round
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.notifier = mocks.NewRecordingNotifier()
	s.controller = NewController(
		s.storage,
		scoring.New(scoring.DefaultConfig()),
		progression.New(s.storage),
		leaderboard.New(s.storage),
		s.notifier,
		s.clock,
		testutil.NopLogger(),
	)
	s.ctx = context.Background()

	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Code: "AB12CD", CreatedAt: s.clock.Now()}))
	s.rounds = nil
	for i, tag := range []string{"1", "2"} {
		r := &model.Round{ID: model.RoundID("round-" + tag), RoomCode: "AB12CD", Puzzle: puzzle(tag)}
		s.Require().NoError(s.storage.AppendRound(s.ctx, r))
		s.Require().Equal(i+1, r.Number)
		s.rounds = append(s.rounds, r)
	}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "alice", RoomCode: "AB12CD", Name: "Alice"}))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "bob", RoomCode: "AB12CD", Name: "Bob"}))
}

func (s *ControllerSuite) finish(playerID model.PlayerID, round, groups, mistakes, secs int) (*model.FinishOutcome, error) {
	return s.controller.FinishRound(s.ctx, "AB12CD", round, playerID, model.RoundResult{
		Mistakes:      mistakes,
		TimeSeconds:   secs,
		CorrectGroups: intPtr(groups),
	})
}

// Scenario from a fresh room through one finished round

func (s *ControllerSuite) TestEndToEndScenario() {
	next, err := s.controller.NextRound(s.ctx, "AB12CD", "alice")
	s.Require().NoError(err)
	s.Require().NotNil(next)
	s.Equal(1, next.Number)

	out, err := s.finish("alice", 1, 1, 1, 40)
	s.Require().NoError(err)
	s.Equal(140, out.Score.Points)
	s.Equal(s.clock.Now(), out.Score.CreatedAt)

	next, err = s.controller.NextRound(s.ctx, "AB12CD", "alice")
	s.Require().NoError(err)
	s.Require().NotNil(next)
	s.Equal(2, next.Number)

	board, err := s.controller.Leaderboard(s.ctx, "AB12CD")
	s.Require().NoError(err)
	s.Require().Len(board, 1)
	s.Equal("Alice", board[0].PlayerName)
	s.Equal(140, board[0].TotalPoints)
	s.Equal(board, out.Leaderboard)

	s.Require().Equal(1, s.notifier.LeaderboardCount())
	s.Equal(model.RoomCode("AB12CD"), s.notifier.Leaderboards[0].RoomCode)
	s.Equal(1, s.notifier.Leaderboards[0].RoundNumber)
	s.Equal(board, s.notifier.Leaderboards[0].Entries)
}

func (s *ControllerSuite) TestNextRoundNoneWhenAllFinished() {
	_, err := s.finish("alice", 1, 4, 0, 10)
	s.Require().NoError(err)
	_, err = s.finish("alice", 2, 4, 0, 10)
	s.Require().NoError(err)

	next, err := s.controller.NextRound(s.ctx, "AB12CD", "alice")
	s.Require().NoError(err)
	s.Nil(next)
}

func (s *ControllerSuite) TestNextRoundUnknownPlayerOrRoom() {
	_, err := s.controller.NextRound(s.ctx, "AB12CD", "ghost")
	s.ErrorIs(err, model.ErrPlayerNotInRoom)

	_, err = s.controller.NextRound(s.ctx, "NOPE22", "alice")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// FinishRound tests

func (s *ControllerSuite) TestResubmissionRejectedAndStateUnchanged() {
	first, err := s.finish("alice", 1, 1, 1, 40)
	s.Require().NoError(err)

	_, err = s.finish("alice", 1, 4, 0, 0)
	s.ErrorIs(err, model.ErrScoreExists)
	s.ErrorIs(err, model.ErrConflict)

	stored, err := s.storage.GetScore(s.ctx, "round-1", "alice")
	s.Require().NoError(err)
	s.Equal(first.Score.Points, stored.Points)

	board, err := s.controller.Leaderboard(s.ctx, "AB12CD")
	s.Require().NoError(err)
	s.Equal(140, board[0].TotalPoints)
	s.Equal(1, s.notifier.LeaderboardCount())
}

func (s *ControllerSuite) TestRejectedFinishWritesAndBroadcastsNothing() {
	tests := []struct {
		name   string
		code   model.RoomCode
		round  int
		player model.PlayerID
		result model.RoundResult
		target error
	}{
		{"unknown room", "NOPE22", 1, "alice", model.RoundResult{CorrectGroups: intPtr(4)}, model.ErrRoomNotFound},
		{"unknown round", "AB12CD", 9, "alice", model.RoundResult{CorrectGroups: intPtr(4)}, model.ErrRoundNotFound},
		{"unknown player", "AB12CD", 1, "ghost", model.RoundResult{CorrectGroups: intPtr(4)}, model.ErrPlayerNotInRoom},
		{"too many mistakes", "AB12CD", 1, "alice", model.RoundResult{Mistakes: 5, CorrectGroups: intPtr(0)}, model.ErrInvalidResult},
		{"negative time", "AB12CD", 1, "alice", model.RoundResult{TimeSeconds: -1, CorrectGroups: intPtr(4)}, model.ErrInvalidResult},
		{"too many groups", "AB12CD", 1, "alice", model.RoundResult{CorrectGroups: intPtr(5)}, model.ErrInvalidResult},
		{"no tallies", "AB12CD", 1, "alice", model.RoundResult{Mistakes: 1}, model.ErrInvalidResult},
		{"negative points", "AB12CD", 1, "alice", model.RoundResult{Points: intPtr(-5)}, model.ErrInvalidResult},
		{"points above maximum", "AB12CD", 1, "alice", model.RoundResult{Points: intPtr(231)}, model.ErrInvalidResult},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.controller.FinishRound(s.ctx, tt.code, tt.round, tt.player, tt.result)
			s.ErrorIs(err, tt.target)

			_, err = s.storage.GetScore(s.ctx, "round-1", "alice")
			s.ErrorIs(err, model.ErrScoreNotFound)
			s.Equal(0, s.notifier.LeaderboardCount())
		})
	}
}

func (s *ControllerSuite) TestPlayerFromAnotherRoomRejected() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Code: "ZZ99ZZ"}))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "zed", RoomCode: "ZZ99ZZ", Name: "Zed"}))

	_, err := s.finish("zed", 1, 4, 0, 0)
	s.ErrorIs(err, model.ErrPlayerNotInRoom)
}

func (s *ControllerSuite) TestClientPointsStoredWhenGroupsAbsent() {
	out, err := s.controller.FinishRound(s.ctx, "AB12CD", 1, "alice", model.RoundResult{
		Mistakes:    2,
		TimeSeconds: 90,
		Points:      intPtr(77),
	})
	s.Require().NoError(err)
	s.Equal(77, out.Score.Points)
	s.Nil(out.Score.CorrectGroups)
	s.False(out.Finished)

	stored, err := s.storage.GetScore(s.ctx, "round-1", "alice")
	s.Require().NoError(err)
	s.Nil(stored.CorrectGroups)
}

func (s *ControllerSuite) TestFinishedReflectsTallies() {
	out, err := s.finish("alice", 1, 4, 1, 60)
	s.Require().NoError(err)
	s.True(out.Finished)

	out, err = s.finish("bob", 1, 2, 4, 60)
	s.Require().NoError(err)
	s.True(out.Finished)

	out, err = s.finish("alice", 2, 2, 1, 60)
	s.Require().NoError(err)
	s.False(out.Finished)
}

func (s *ControllerSuite) TestServerPointsOverrideClaim() {
	out, err := s.controller.FinishRound(s.ctx, "AB12CD", 1, "alice", model.RoundResult{
		Mistakes:      0,
		TimeSeconds:   0,
		CorrectGroups: intPtr(4),
		Points:        intPtr(9999),
	})
	s.Require().NoError(err)
	s.Equal(230, out.Score.Points)
}

func (s *ControllerSuite) TestBroadcastFailureStillReturnsLeaderboard() {
	s.notifier.Err = errors.New("bus down")

	out, err := s.finish("alice", 1, 4, 0, 0)
	s.Require().NoError(err)
	s.Len(out.Leaderboard, 1)

	_, err = s.storage.GetScore(s.ctx, "round-1", "alice")
	s.NoError(err)
}

// failingTotals fails leaderboard aggregation after scores are written
type failingTotals struct {
	storage.Storage
}

func (f failingTotals) PlayerTotals(context.Context, model.RoomCode) ([]model.PlayerTotal, error) {
	return nil, model.Upstream("totals", errors.New("boom"))
}

func (s *ControllerSuite) TestLeaderboardFailureAfterRecordKeepsScore() {
	store := failingTotals{Storage: s.storage}
	controller := NewController(
		store,
		scoring.New(scoring.DefaultConfig()),
		progression.New(store),
		leaderboard.New(store),
		s.notifier,
		s.clock,
		testutil.NopLogger(),
	)
	result := model.RoundResult{TimeSeconds: 60, CorrectGroups: intPtr(4)}

	out, err := controller.FinishRound(s.ctx, "AB12CD", 1, "alice", result)
	s.Require().NoError(err)
	s.Equal(200, out.Score.Points)
	s.Nil(out.Leaderboard)
	s.Equal(0, s.notifier.LeaderboardCount())

	stored, err := s.storage.GetScore(s.ctx, "round-1", "alice")
	s.Require().NoError(err)
	s.Equal(out.Score.Points, stored.Points)

	_, err = controller.FinishRound(s.ctx, "AB12CD", 1, "alice", result)
	s.ErrorIs(err, model.ErrScoreExists)
}

func (s *ControllerSuite) TestLeaderboardAcrossPlayers() {
	_, err := s.finish("alice", 1, 1, 1, 40)
	s.Require().NoError(err)
	out, err := s.finish("bob", 1, 4, 0, 0)
	s.Require().NoError(err)

	s.Require().Len(out.Leaderboard, 2)
	s.Equal("Bob", out.Leaderboard[0].PlayerName)
	s.Equal(230, out.Leaderboard[0].TotalPoints)
	s.Equal("Alice", out.Leaderboard[1].PlayerName)

	winner, err := s.controller.Winner(s.ctx, "AB12CD")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("bob"), winner.PlayerID)
}

func (s *ControllerSuite) TestWinnerWithoutScores() {
	_, err := s.controller.Winner(s.ctx, "AB12CD")
	s.ErrorIs(err, model.ErrNoScores)

	_, err = s.controller.Winner(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// EvaluateGuess tests

func (s *ControllerSuite) TestEvaluateGuessCorrectAndIncorrect() {
	res, err := s.controller.EvaluateGuess(s.ctx, "round-1", "alice", []string{"mars1", "VENUS1", "Earth1", "saturn1"})
	s.Require().NoError(err)
	s.True(res.Correct)
	s.Equal("Blue", res.GroupName)
	s.Equal("Planets 1", res.Connection)

	res, err = s.controller.EvaluateGuess(s.ctx, "round-1", "alice", []string{"mars1", "VENUS1", "Earth1", "Red1"})
	s.Require().NoError(err)
	s.False(res.Correct)
}

func (s *ControllerSuite) TestEvaluateGuessInvalidWordsRejectedFirst() {
	_, err := s.controller.EvaluateGuess(s.ctx, "missing-round", "alice", []string{"a", "b", "c"})
	s.ErrorIs(err, model.ErrInvalidGuess)
}

func (s *ControllerSuite) TestEvaluateGuessUnknownRound() {
	_, err := s.controller.EvaluateGuess(s.ctx, "missing-round", "", []string{"a", "b", "c", "d"})
	s.ErrorIs(err, model.ErrRoundNotFound)
}

func (s *ControllerSuite) TestEvaluateGuessAfterFinishRejected() {
	_, err := s.finish("alice", 1, 4, 0, 10)
	s.Require().NoError(err)

	_, err = s.controller.EvaluateGuess(s.ctx, "round-1", "alice", []string{"Bass1", "Pike1", "Carp1", "Sole1"})
	s.ErrorIs(err, model.ErrRoundFinished)

	// Other players and anonymous guesses are unaffected
	res, err := s.controller.EvaluateGuess(s.ctx, "round-1", "bob", []string{"Bass1", "Pike1", "Carp1", "Sole1"})
	s.Require().NoError(err)
	s.True(res.Correct)
	res, err = s.controller.EvaluateGuess(s.ctx, "round-1", "", []string{"Bass1", "Pike1", "Carp1", "Sole1"})
	s.Require().NoError(err)
	s.True(res.Correct)
}
