package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/connections-go/internal/dependencies/mocks"
	"github.com/mcoot/connections-go/internal/live"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/testutil"
)

type fakePlayers map[model.PlayerID]string

func (f fakePlayers) GetPlayer(ctx context.Context, code model.RoomCode, id model.PlayerID) (*model.Player, error) {
	name, ok := f[id]
	if !ok {
		return nil, model.ErrPlayerNotInRoom
	}
	return &model.Player{ID: id, RoomCode: code, Name: name}, nil
}

type LiveConnectorTestSuite struct {
	suite.Suite
	hubs     *HubManager
	registry *live.Registry
	server   *httptest.Server
}

func TestLiveConnectorSuite(t *testing.T) {
	suite.Run(t, new(LiveConnectorTestSuite))
}

func (s *LiveConnectorTestSuite) SetupTest() {
	logger := testutil.NopLogger()
	clk := mocks.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.hubs = NewHubManager(logger)
	s.registry = live.NewRegistry(clk, logger)
	broadcaster := NewBroadcaster(s.hubs, clk, logger)
	players := fakePlayers{"p1": "Ada", "p2": "Bob"}
	connector := NewLiveConnector(s.hubs, s.registry, broadcaster, players, clk, logger)

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connector.ServeWebsocket(w, r, "AB12CD")
	}))
}

func (s *LiveConnectorTestSuite) TearDownTest() {
	s.server.Close()
	s.hubs.RemoveHub("AB12CD")
}

func (s *LiveConnectorTestSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

func (s *LiveConnectorTestSuite) read(conn *websocket.Conn) Envelope {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var env Envelope
	s.Require().NoError(conn.ReadJSON(&env))
	return env
}

// readUntil skips events until one of the wanted type arrives
func (s *LiveConnectorTestSuite) readUntil(conn *websocket.Conn, eventType string) Envelope {
	for {
		env := s.read(conn)
		if env.Type == eventType {
			return env
		}
	}
}

func (s *LiveConnectorTestSuite) snapshot(env Envelope) LiveSnapshot {
	var payload LiveSnapshot
	s.Require().NoError(json.Unmarshal(env.Payload, &payload))
	return payload
}

func (s *LiveConnectorTestSuite) TestInitialSnapshotOnConnect() {
	conn := s.dial()
	env := s.read(conn)
	s.Equal("live_snapshot", env.Type)
	s.Equal("AB12CD", env.RoomCode)
	s.Empty(s.snapshot(env).Participants)
}

func (s *LiveConnectorTestSuite) TestJoinAndUpdateScoreBroadcastToRoom() {
	ada := s.dial()
	s.read(ada)
	bob := s.dial()
	s.read(bob)

	s.Require().NoError(ada.WriteJSON(InboundMessage{Type: "join", PlayerID: "p1"}))
	joined := s.snapshot(s.readUntil(bob, "live_snapshot"))
	s.Require().Len(joined.Participants, 1)
	s.Equal("Ada", joined.Participants[0].Name)

	s.Require().NoError(ada.WriteJSON(InboundMessage{Type: "update_score", Score: 120}))
	for {
		snap := s.snapshot(s.readUntil(bob, "live_snapshot"))
		if len(snap.Participants) == 1 && snap.Participants[0].Score == 120 {
			s.True(snap.Provisional)
			break
		}
	}

	p, ok := participant(s.registry.Snapshot("AB12CD"), "p1")
	s.Require().True(ok)
	s.Equal(120, p.Score)
}

func (s *LiveConnectorTestSuite) TestJoinUnknownPlayerRepliesWithError() {
	conn := s.dial()
	s.read(conn)

	s.Require().NoError(conn.WriteJSON(InboundMessage{Type: "join", PlayerID: "ghost"}))
	env := s.readUntil(conn, "error")
	var payload ErrorPayload
	s.Require().NoError(json.Unmarshal(env.Payload, &payload))
	s.Contains(payload.Message, "not")
	s.Empty(s.registry.Snapshot("AB12CD"))
}

func (s *LiveConnectorTestSuite) TestUpdateScoreBeforeJoinIsRejected() {
	conn := s.dial()
	s.read(conn)

	s.Require().NoError(conn.WriteJSON(InboundMessage{Type: "update_score", Score: 50}))
	s.Equal("error", s.readUntil(conn, "error").Type)
}

func (s *LiveConnectorTestSuite) TestMalformedAndUnknownMessages() {
	conn := s.dial()
	s.read(conn)

	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	s.Equal("error", s.readUntil(conn, "error").Type)

	s.Require().NoError(conn.WriteJSON(InboundMessage{Type: "dance"}))
	s.Equal("error", s.readUntil(conn, "error").Type)
}

func (s *LiveConnectorTestSuite) TestDisconnectEvictsRoom() {
	conn := s.dial()
	s.read(conn)
	s.Require().NoError(conn.WriteJSON(InboundMessage{Type: "join", PlayerID: "p1"}))
	s.readUntil(conn, "live_snapshot")
	s.Require().Eventually(func() bool { return len(s.registry.Snapshot("AB12CD")) == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Require().NoError(conn.Close())
	s.Eventually(func() bool { return s.registry.Rooms() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func (s *LiveConnectorTestSuite) TestReconnectKeepsPlayerWhenOldSocketCloses() {
	first := s.dial()
	s.read(first)
	s.Require().NoError(first.WriteJSON(InboundMessage{Type: "join", PlayerID: "p1"}))
	s.readUntil(first, "live_snapshot")

	second := s.dial()
	s.read(second)
	s.Require().NoError(second.WriteJSON(InboundMessage{Type: "join", PlayerID: "p1"}))
	s.readUntil(second, "live_snapshot")
	s.Require().NoError(second.WriteJSON(InboundMessage{Type: "join", PlayerID: "p1"}))
	s.readUntil(second, "live_snapshot")

	s.Require().NoError(first.Close())
	afterClose := s.snapshot(s.readUntil(second, "live_snapshot"))
	_, ok := participant(afterClose.Participants, "p1")
	s.Require().True(ok)
	s.Equal(1, s.registry.Rooms())

	s.Require().NoError(second.WriteJSON(InboundMessage{Type: "update_score", Score: 90}))
	for {
		env := s.read(second)
		s.Require().NotEqual("error", env.Type)
		if env.Type != "live_snapshot" {
			continue
		}
		if p, ok := participant(s.snapshot(env).Participants, "p1"); ok && p.Score == 90 {
			break
		}
	}

	s.Require().NoError(second.Close())
	s.Eventually(func() bool { return s.registry.Rooms() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func participant(ps []model.Participant, id model.PlayerID) (model.Participant, bool) {
	for _, p := range ps {
		if p.PlayerID == id {
			return p, true
		}
	}
	return model.Participant{}, false
}

func TestEncode_LiveSnapshotParticipantsInOrder(t *testing.T) {
	msg, err := Encode(model.Event{
		Type:     model.EventLiveSnapshot,
		RoomCode: "AB12CD",
		Payload: model.LiveSnapshotPayload{Participants: []model.Participant{
			{PlayerID: "p2", Name: "Bob", Score: 200},
			{PlayerID: "p1", Name: "Ada", Score: 100},
		}},
	})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	var payload LiveSnapshot
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	require.Len(t, payload.Participants, 2)
	assert.Equal(t, "p2", payload.Participants[0].PlayerID)
	assert.Equal(t, "p1", payload.Participants[1].PlayerID)
}
