package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connections-go/internal/api/request"
	"github.com/mcoot/connections-go/internal/api/response"
	"github.com/mcoot/connections-go/internal/factory"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/services/room"
	"github.com/mcoot/connections-go/internal/testutil"
)

type CLITestSuite struct {
	suite.Suite
	app    *factory.App
	server *httptest.Server
	dir    string
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	app, err := factory.New(context.Background(), factory.Config{Logger: testutil.NopLogger()})
	s.Require().NoError(err)
	s.app = app
	s.server = httptest.NewServer(app.Handler())
	s.dir = s.T().TempDir()
}

func (s *CLITestSuite) TearDownTest() {
	s.server.Close()
	s.Require().NoError(s.app.Close())
}

// run executes the CLI in-process and returns its stdout
func (s *CLITestSuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", s.server.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLITestSuite) runJSON(v any, args ...string) {
	out, err := s.run(append([]string{"-o", "json"}, args...)...)
	s.Require().NoError(err, "output: %s", out)
	s.Require().NoError(json.Unmarshal([]byte(out), v), "output: %s", out)
}

func toRequest(p model.Puzzle) request.Puzzle {
	groups := make([]request.Group, len(p.Groups))
	for i, g := range p.Groups {
		groups[i] = request.Group{Name: g.Name, Connection: g.Connection, Words: g.Words}
	}
	return request.Puzzle{Groups: groups}
}

func (s *CLITestSuite) writeFile(name string, v any) string {
	data, err := json.Marshal(v)
	s.Require().NoError(err)
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, data, 0o600))
	return path
}

func (s *CLITestSuite) createRoom() response.CreateRoomResponse {
	path := s.writeFile("puzzles.json", []request.Puzzle{toRequest(factory.TestPuzzle("a"))})
	var created response.CreateRoomResponse
	s.runJSON(&created, "room", "create", "--name", "Quiz night", "--puzzles", path)
	return created
}

func (s *CLITestSuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Contains(out, "Status: ok")
}

func (s *CLITestSuite) TestRoomLifecycle() {
	created := s.createRoom()
	s.Len(created.Room.Code, room.RoomCodeLength)
	s.Equal(1, created.Room.RoundCount)
	s.Require().Len(created.Rounds, 1)

	roundPath := s.writeFile("round.json", toRequest(factory.TestPuzzle("b")))
	var ref response.RoundRef
	s.runJSON(&ref, "room", "add-round", strings.ToLower(created.Room.Code), "--puzzle", roundPath)
	s.Equal(2, ref.Number)

	out, err := s.run("room", "get", created.Room.Code)
	s.Require().NoError(err)
	s.Contains(out, "Room: "+created.Room.Code)
	s.Contains(out, "Name: Quiz night")
	s.Contains(out, "Rounds: 2")

	out, err = s.run("room", "list")
	s.Require().NoError(err)
	s.Contains(out, created.Room.Code)
}

func (s *CLITestSuite) TestPlayFlow() {
	created := s.createRoom()
	code := created.Room.Code

	var alice, bob response.Player
	s.runJSON(&alice, "player", "join", code, "Alice")
	s.runJSON(&bob, "player", "join", code, "Bob")

	out, err := s.run("player", "list", code)
	s.Require().NoError(err)
	s.Contains(out, "Alice")
	s.Contains(out, "Bob")

	var next response.NextRound
	s.runJSON(&next, "round", "next", code, alice.ID)
	s.Require().False(next.Complete)
	s.Require().NotNil(next.Round)
	s.Len(next.Round.Words, 16)

	out, err = s.run("guess", next.Round.ID, "abass", "apike", "asole", "acarp")
	s.Require().NoError(err)
	s.Contains(out, "Correct! fish: fish things")

	out, err = s.run("guess", next.Round.ID, "abass", "apike", "asole", "aoak")
	s.Require().NoError(err)
	s.Contains(out, "Incorrect")

	var finished response.FinishRound
	s.runJSON(&finished, "round", "submit", code, "1", "--player", alice.ID, "--mistakes", "0", "--time", "30")
	s.Positive(finished.Score.Points)
	s.Require().NotNil(finished.Score.CorrectGroups)
	s.Equal(4, *finished.Score.CorrectGroups)
	s.True(finished.Finished)

	_, err = s.run("round", "submit", code, "1", "--player", bob.ID, "--mistakes", "3", "--time", "200", "--groups", "2")
	s.Require().NoError(err)

	var board response.Leaderboard
	s.runJSON(&board, "leaderboard", code)
	s.Require().Len(board.Entries, 2)
	s.Equal("Alice", board.Entries[0].PlayerName)
	s.Equal(1, board.Entries[0].Rank)

	out, err = s.run("winner", code)
	s.Require().NoError(err)
	s.Contains(out, "Winner: Alice")

	out, err = s.run("round", "next", code, alice.ID)
	s.Require().NoError(err)
	s.Contains(out, "All rounds complete")
}

func (s *CLITestSuite) TestErrors() {
	_, err := s.run("room", "get", "ZZZZZZ")
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(404, apiErr.Status)
	s.Equal("ROOM_NOT_FOUND", apiErr.Code)

	created := s.createRoom()
	_, err = s.run("player", "join", created.Room.Code, "Alice")
	s.Require().NoError(err)
	_, err = s.run("player", "join", created.Room.Code, "alice")
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("DUPLICATE_PLAYER_NAME", apiErr.Code)

	_, err = s.run("round", "show", created.Room.Code, "zero")
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid round number")

	_, err = s.run("room", "create", "--puzzles", filepath.Join(s.dir, "missing.json"))
	s.Require().Error(err)
}

func (s *CLITestSuite) TestEventsStream() {
	created := s.createRoom()

	done := make(chan struct{})
	var out bytes.Buffer
	var streamErr error
	go func() {
		defer close(done)
		cmd := NewRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--server", s.server.URL, "events", created.Room.Code, "--json", "--limit", "2"})
		streamErr = cmd.Execute()
	}()

	s.Eventually(func() bool {
		hub := s.app.HubManager.GetHub(model.RoomCode(created.Room.Code))
		return hub != nil && hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	var player response.Player
	s.runJSON(&player, "player", "join", created.Room.Code, "Carol")

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		s.FailNow("events stream did not finish")
	}
	s.Require().NoError(streamErr)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	s.Require().Len(lines, 2)

	var first, second SSEEvent
	s.Require().NoError(json.Unmarshal([]byte(lines[0]), &first))
	s.Require().NoError(json.Unmarshal([]byte(lines[1]), &second))
	s.Equal("connected", first.Event)
	s.Equal("player_joined", second.Event)
	s.Contains(string(second.Data), "Carol")
}

func TestOutput_TextFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print(map[string]int{"x": 1})
	assert.JSONEq(t, `{"x":1}`, buf.String())
}

func TestOutput_RoundViewRows(t *testing.T) {
	var buf bytes.Buffer
	words := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	NewOutput("text", &buf).Print(response.RoundView{ID: "r1", Number: 1, Words: words})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Round 1 (r1)", lines[0])
	assert.Equal(t, "A  B  C  D", strings.TrimSpace(lines[1]))
}

func TestRoomPath_NormalizesCode(t *testing.T) {
	assert.Equal(t, "/api/v1/rooms/ABCDEF", roomPath(" abcdef "))
}
