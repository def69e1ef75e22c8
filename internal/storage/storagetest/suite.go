// Package storagetest holds the behavioural test suite every storage
// backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/storage"
)

// Suite exercises a storage.Storage implementation. NewStorage is called
// once per test and must return an empty store.
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	Store storage.Storage
	Ctx   context.Context
}

var baseTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Store = s.NewStorage(s.T())
	s.Ctx = context.Background()
}

// SamplePuzzle returns a valid puzzle whose words are prefixed with tag so
// multiple puzzles never collide.
func SamplePuzzle(tag string) model.Puzzle {
	groups := make([]model.Group, model.GroupsPerPuzzle)
	for g := range groups {
		words := make([]string, model.WordsPerGroup)
		for w := range words {
			words[w] = fmt.Sprintf("%s-g%d-w%d", tag, g, w)
		}
		groups[g] = model.Group{
			Name:       fmt.Sprintf("group %d", g),
			Connection: fmt.Sprintf("connection %d", g),
			Words:      words,
		}
	}
	return model.Puzzle{Groups: groups}
}

func (s *Suite) createRoom(code model.RoomCode, offset time.Duration) *model.Room {
	room := &model.Room{Code: code, Name: "room " + string(code), CreatedAt: baseTime.Add(offset)}
	s.Require().NoError(s.Store.CreateRoom(s.Ctx, room))
	return room
}

func (s *Suite) appendRound(code model.RoomCode, id model.RoundID) *model.Round {
	round := &model.Round{ID: id, RoomCode: code, Puzzle: SamplePuzzle(string(id)), CreatedAt: baseTime}
	s.Require().NoError(s.Store.AppendRound(s.Ctx, round))
	return round
}

func (s *Suite) createPlayer(code model.RoomCode, id model.PlayerID, name string) *model.Player {
	p := &model.Player{ID: id, RoomCode: code, Name: name, CreatedAt: baseTime}
	s.Require().NoError(s.Store.CreatePlayer(s.Ctx, p))
	return p
}

func (s *Suite) recordScore(round *model.Round, playerID model.PlayerID, points int) error {
	groups := 4
	return s.Store.RecordScore(s.Ctx, &model.Score{
		PlayerID:      playerID,
		RoundID:       round.ID,
		RoomCode:      round.RoomCode,
		RoundNumber:   round.Number,
		Mistakes:      1,
		TimeSeconds:   42,
		CorrectGroups: &groups,
		Points:        points,
		CreatedAt:     baseTime,
	})
}

// Room tests

func (s *Suite) TestPing() {
	s.NoError(s.Store.Ping(s.Ctx))
}

func (s *Suite) TestCreateAndGetRoom() {
	room := s.createRoom("AB12CD", 0)

	got, err := s.Store.GetRoom(s.Ctx, "AB12CD")
	s.Require().NoError(err)
	s.Equal(room.Code, got.Code)
	s.Equal(room.Name, got.Name)
	s.True(room.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestGetRoomNotFound() {
	_, err := s.Store.GetRoom(s.Ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestCreateRoomCollision() {
	s.createRoom("AB12CD", 0)
	err := s.Store.CreateRoom(s.Ctx, &model.Room{Code: "AB12CD", Name: "other", CreatedAt: baseTime})
	s.ErrorIs(err, model.ErrRoomExists)

	got, err := s.Store.GetRoom(s.Ctx, "AB12CD")
	s.Require().NoError(err)
	s.Equal("room AB12CD", got.Name)
}

func (s *Suite) TestListRoomsNewestFirst() {
	s.createRoom("AAAAAA", 0)
	s.createRoom("BBBBBB", 2*time.Minute)
	s.createRoom("CCCCCC", time.Minute)

	rooms, err := s.Store.ListRooms(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	s.Equal(model.RoomCode("BBBBBB"), rooms[0].Code)
	s.Equal(model.RoomCode("CCCCCC"), rooms[1].Code)
	s.Equal(model.RoomCode("AAAAAA"), rooms[2].Code)
}

// Round tests

func (s *Suite) TestAppendRoundNumbersContiguously() {
	s.createRoom("AB12CD", 0)
	s.createRoom("ZZ99ZZ", 0)

	r1 := s.appendRound("AB12CD", "round-1")
	other := s.appendRound("ZZ99ZZ", "round-x")
	r2 := s.appendRound("AB12CD", "round-2")

	s.Equal(1, r1.Number)
	s.Equal(2, r2.Number)
	s.Equal(1, other.Number)

	rounds, err := s.Store.ListRounds(s.Ctx, "AB12CD")
	s.Require().NoError(err)
	s.Require().Len(rounds, 2)
	s.Equal(model.RoundID("round-1"), rounds[0].ID)
	s.Equal(model.RoundID("round-2"), rounds[1].ID)
}

func (s *Suite) TestAppendRoundUnknownRoom() {
	err := s.Store.AppendRound(s.Ctx, &model.Round{ID: "r", RoomCode: "NOPE22", Puzzle: SamplePuzzle("r")})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestAppendRoundConcurrent() {
	s.createRoom("AB12CD", 0)

	const n = 12
	var wg sync.WaitGroup
	numbers := make([]int, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := &model.Round{
				ID:       model.RoundID(fmt.Sprintf("round-%d", i)),
				RoomCode: "AB12CD",
				Puzzle:   SamplePuzzle(fmt.Sprintf("p%d", i)),
			}
			s.NoError(s.Store.AppendRound(s.Ctx, r))
			numbers[i] = r.Number
		}()
	}
	wg.Wait()

	sort.Ints(numbers)
	for i, num := range numbers {
		s.Equal(i+1, num)
	}
}

func (s *Suite) TestGetRoundRoundTripsPuzzle() {
	s.createRoom("AB12CD", 0)
	round := s.appendRound("AB12CD", "round-1")

	got, err := s.Store.GetRound(s.Ctx, "round-1")
	s.Require().NoError(err)
	s.Equal(round.Puzzle, got.Puzzle)
	s.Equal(1, got.Number)
	s.Equal(model.RoomCode("AB12CD"), got.RoomCode)

	byNumber, err := s.Store.GetRoundByNumber(s.Ctx, "AB12CD", 1)
	s.Require().NoError(err)
	s.Equal(round.ID, byNumber.ID)
}

func (s *Suite) TestGetRoundNotFound() {
	s.createRoom("AB12CD", 0)
	s.appendRound("AB12CD", "round-1")

	_, err := s.Store.GetRound(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrRoundNotFound)

	for _, n := range []int{0, 2, -1} {
		_, err = s.Store.GetRoundByNumber(s.Ctx, "AB12CD", n)
		s.ErrorIs(err, model.ErrRoundNotFound)
	}
}

// Player tests

func (s *Suite) TestCreateAndListPlayers() {
	s.createRoom("AB12CD", 0)
	alice := s.createPlayer("AB12CD", "p-alice", "Alice")
	s.createPlayer("AB12CD", "p-bob", "Bob")

	got, err := s.Store.GetPlayer(s.Ctx, "p-alice")
	s.Require().NoError(err)
	s.Equal(alice.Name, got.Name)
	s.Equal(alice.RoomCode, got.RoomCode)

	players, err := s.Store.ListPlayers(s.Ctx, "AB12CD")
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.PlayerID("p-alice"), players[0].ID)
	s.Equal(model.PlayerID("p-bob"), players[1].ID)
}

func (s *Suite) TestCreatePlayerDuplicateName() {
	s.createRoom("AB12CD", 0)
	s.createRoom("ZZ99ZZ", 0)
	s.createPlayer("AB12CD", "p-1", "Alice")

	err := s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p-2", RoomCode: "AB12CD", Name: "ALICE"})
	s.ErrorIs(err, model.ErrDuplicatePlayerName)

	_, err = s.Store.GetPlayer(s.Ctx, "p-2")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	// Same name in another room is fine
	s.createPlayer("ZZ99ZZ", "p-3", "Alice")
}

func (s *Suite) TestCreatePlayerUnknownRoom() {
	err := s.Store.CreatePlayer(s.Ctx, &model.Player{ID: "p-1", RoomCode: "NOPE22", Name: "Alice"})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Store.GetPlayer(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Score tests

func (s *Suite) TestRecordAndGetScore() {
	s.createRoom("AB12CD", 0)
	round := s.appendRound("AB12CD", "round-1")
	s.createPlayer("AB12CD", "p-alice", "Alice")

	s.Require().NoError(s.recordScore(round, "p-alice", 140))

	got, err := s.Store.GetScore(s.Ctx, "round-1", "p-alice")
	s.Require().NoError(err)
	s.Equal(140, got.Points)
	s.Equal(1, got.Mistakes)
	s.Equal(42, got.TimeSeconds)
	s.Require().NotNil(got.CorrectGroups)
	s.Equal(4, *got.CorrectGroups)
	s.Equal(1, got.RoundNumber)
}

func (s *Suite) TestScoreWithoutGroupCountRoundTrips() {
	s.createRoom("AB12CD", 0)
	round := s.appendRound("AB12CD", "round-1")
	s.createPlayer("AB12CD", "p-alice", "Alice")

	s.Require().NoError(s.Store.RecordScore(s.Ctx, &model.Score{
		PlayerID:    "p-alice",
		RoundID:     round.ID,
		RoomCode:    round.RoomCode,
		RoundNumber: round.Number,
		Points:      77,
		CreatedAt:   baseTime,
	}))

	got, err := s.Store.GetScore(s.Ctx, "round-1", "p-alice")
	s.Require().NoError(err)
	s.Nil(got.CorrectGroups)
	s.Equal(77, got.Points)
}

func (s *Suite) TestGetScoreNotFound() {
	_, err := s.Store.GetScore(s.Ctx, "round-1", "p-alice")
	s.ErrorIs(err, model.ErrScoreNotFound)
}

func (s *Suite) TestRecordScoreDuplicateKeepsOriginal() {
	s.createRoom("AB12CD", 0)
	round := s.appendRound("AB12CD", "round-1")
	s.createPlayer("AB12CD", "p-alice", "Alice")

	s.Require().NoError(s.recordScore(round, "p-alice", 140))
	s.ErrorIs(s.recordScore(round, "p-alice", 999), model.ErrScoreExists)

	got, err := s.Store.GetScore(s.Ctx, "round-1", "p-alice")
	s.Require().NoError(err)
	s.Equal(140, got.Points)

	totals, err := s.Store.PlayerTotals(s.Ctx, "AB12CD")
	s.Require().NoError(err)
	s.Require().Len(totals, 1)
	s.Equal(140, totals[0].TotalPoints)
	s.Equal(1, totals[0].RoundsPlayed)
}

func (s *Suite) TestRecordScoreConcurrentDuplicates() {
	s.createRoom("AB12CD", 0)
	round := s.appendRound("AB12CD", "round-1")
	s.createPlayer("AB12CD", "p-alice", "Alice")

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.recordScore(round, "p-alice", 100+i)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				s.ErrorIs(err, model.ErrScoreExists)
			}
		}()
	}
	wg.Wait()
	s.Equal(1, successes)
}

func (s *Suite) TestListPlayerScoresOrderedByRound() {
	s.createRoom("AB12CD", 0)
	r1 := s.appendRound("AB12CD", "round-1")
	r2 := s.appendRound("AB12CD", "round-2")
	s.createPlayer("AB12CD", "p-alice", "Alice")
	s.createPlayer("AB12CD", "p-bob", "Bob")

	s.Require().NoError(s.recordScore(r2, "p-alice", 50))
	s.Require().NoError(s.recordScore(r1, "p-alice", 60))
	s.Require().NoError(s.recordScore(r1, "p-bob", 70))

	scores, err := s.Store.ListPlayerScores(s.Ctx, "AB12CD", "p-alice")
	s.Require().NoError(err)
	s.Require().Len(scores, 2)
	s.Equal(1, scores[0].RoundNumber)
	s.Equal(2, scores[1].RoundNumber)

	none, err := s.Store.ListPlayerScores(s.Ctx, "AB12CD", "p-nobody")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *Suite) TestPlayerTotals() {
	s.createRoom("AB12CD", 0)
	s.createRoom("ZZ99ZZ", 0)
	r1 := s.appendRound("AB12CD", "round-1")
	r2 := s.appendRound("AB12CD", "round-2")
	other := s.appendRound("ZZ99ZZ", "round-x")
	s.createPlayer("AB12CD", "p-alice", "Alice")
	s.createPlayer("AB12CD", "p-bob", "Bob")
	s.createPlayer("AB12CD", "p-carol", "Carol")
	s.createPlayer("ZZ99ZZ", "p-dave", "Dave")

	s.Require().NoError(s.recordScore(r1, "p-alice", 140))
	s.Require().NoError(s.recordScore(r2, "p-alice", 30))
	s.Require().NoError(s.recordScore(r1, "p-bob", 90))
	s.Require().NoError(s.recordScore(other, "p-dave", 500))

	totals, err := s.Store.PlayerTotals(s.Ctx, "AB12CD")
	s.Require().NoError(err)
	byPlayer := make(map[model.PlayerID]model.PlayerTotal, len(totals))
	for _, t := range totals {
		byPlayer[t.PlayerID] = t
	}
	s.Len(byPlayer, 2)
	s.Equal(model.PlayerTotal{PlayerID: "p-alice", TotalPoints: 170, RoundsPlayed: 2}, byPlayer["p-alice"])
	s.Equal(model.PlayerTotal{PlayerID: "p-bob", TotalPoints: 90, RoundsPlayed: 1}, byPlayer["p-bob"])
}

func (s *Suite) TestPlayerTotalsEmptyRoom() {
	s.createRoom("AB12CD", 0)
	totals, err := s.Store.PlayerTotals(s.Ctx, "AB12CD")
	s.Require().NoError(err)
	s.Empty(totals)
}
