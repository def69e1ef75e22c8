package progression

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
	"github.com/mcoot/connections-go/internal/storage/memory"
	"github.com/mcoot/connections-go/internal/storage/storagetest"
)

// reversedRounds returns rounds newest first to prove ordering is by number
type reversedRounds struct {
	storage.Storage
}

func (r reversedRounds) ListRounds(ctx context.Context, code model.RoomCode) ([]*model.Round, error) {
	rounds, err := r.Storage.ListRounds(ctx, code)
	slices.Reverse(rounds)
	return rounds, err
}

type TrackerSuite struct {
	suite.Suite
	storage *memory.Storage
	tracker *Tracker
	ctx     context.Context
	rounds  []*model.Round
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.storage = memory.New()
	s.tracker = New(reversedRounds{s.storage})
	s.ctx = context.Background()

	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Code: "AB12CD"}))
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, &model.Player{ID: "alice", RoomCode: "AB12CD", Name: "Alice"}))
	s.rounds = nil
	for i := range 3 {
		r := &model.Round{
			ID:       model.RoundID(fmt.Sprintf("round-%d", i+1)),
			RoomCode: "AB12CD",
			Puzzle:   storagetest.SamplePuzzle(fmt.Sprint(i)),
		}
		s.Require().NoError(s.storage.AppendRound(s.ctx, r))
		s.rounds = append(s.rounds, r)
	}
}

func (s *TrackerSuite) finish(round *model.Round) {
	s.Require().NoError(s.storage.RecordScore(s.ctx, &model.Score{
		PlayerID:    "alice",
		RoundID:     round.ID,
		RoomCode:    round.RoomCode,
		RoundNumber: round.Number,
		CreatedAt:   time.Now(),
	}))
}

func (s *TrackerSuite) TestAscendingThenNone() {
	for _, expected := range s.rounds {
		next, err := s.tracker.NextRound(s.ctx, "AB12CD", "alice")
		s.Require().NoError(err)
		s.Require().NotNil(next)
		s.Equal(expected.Number, next.Number)
		s.finish(next)
	}

	next, err := s.tracker.NextRound(s.ctx, "AB12CD", "alice")
	s.Require().NoError(err)
	s.Nil(next)
}

func (s *TrackerSuite) TestSkipsOnlyScoredRounds() {
	s.finish(s.rounds[1])

	next, err := s.tracker.NextRound(s.ctx, "AB12CD", "alice")
	s.Require().NoError(err)
	s.Equal(1, next.Number)

	s.finish(s.rounds[0])
	next, err = s.tracker.NextRound(s.ctx, "AB12CD", "alice")
	s.Require().NoError(err)
	s.Equal(3, next.Number)
}

func (s *TrackerSuite) TestPlayersProgressIndependently() {
	s.finish(s.rounds[0])

	next, err := s.tracker.NextRound(s.ctx, "AB12CD", "bob")
	s.Require().NoError(err)
	s.Equal(1, next.Number)
}

func (s *TrackerSuite) TestRoomWithoutRounds() {
	s.Require().NoError(s.storage.CreateRoom(s.ctx, &model.Room{Code: "EMPTY2"}))
	next, err := s.tracker.NextRound(s.ctx, "EMPTY2", "alice")
	s.Require().NoError(err)
	s.Nil(next)
}
