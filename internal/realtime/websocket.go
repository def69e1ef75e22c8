package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/connections-go/internal/dependencies/clock"
	"github.com/mcoot/connections-go/internal/live"
	"github.com/mcoot/connections-go/internal/model"
)

// Inbound websocket message types
const (
	inboundJoin        = "join"
	inboundUpdateScore = "update_score"
	inboundLeave       = "leave"
)

// InboundMessage is a request sent by a websocket client
type InboundMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id,omitempty"`
	Score    int    `json:"score,omitempty"`
}

// PlayerLookup resolves a player within a room
type PlayerLookup interface {
	GetPlayer(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Player, error)
}

// LiveConnector serves the websocket live channel of a room. Clients join as
// a player, report provisional scores and receive every room event.
type LiveConnector struct {
	hubs        *HubManager
	registry    *live.Registry
	broadcaster *Broadcaster
	players     PlayerLookup
	clock       clock.Clock
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewLiveConnector creates a new LiveConnector
func NewLiveConnector(
	hubs *HubManager,
	registry *live.Registry,
	broadcaster *Broadcaster,
	players PlayerLookup,
	clock clock.Clock,
	logger *slog.Logger,
) *LiveConnector {
	return &LiveConnector{
		hubs:        hubs,
		registry:    registry,
		broadcaster: broadcaster,
		players:     players,
		clock:       clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "live")),
	}
}

// wsSession is the per-connection state of one websocket client
type wsSession struct {
	connector *LiveConnector
	conn      *websocket.Conn
	client    *Client
	roomCode  model.RoomCode
	playerID  model.PlayerID
	direct    chan Message
	done      chan struct{}
	logger    *slog.Logger
}

// ServeWebsocket upgrades the request and runs the live channel for the room
// until either side closes the connection.
func (c *LiveConnector) ServeWebsocket(w http.ResponseWriter, r *http.Request, roomCode model.RoomCode) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		c.logger.Warn("websocket upgrade failed", slog.String("room_code", string(roomCode)), slog.Any("error", err))
		return
	}

	c.registry.Connect(roomCode)
	client, detach := c.hubs.Attach(roomCode, "", transportWebsocket)
	s := &wsSession{
		connector: c,
		conn:      conn,
		client:    client,
		roomCode:  roomCode,
		direct:    make(chan Message, 16),
		done:      make(chan struct{}),
		logger:    c.logger.With(slog.String("room_code", string(roomCode))),
	}

	go s.writePump()
	s.reply(c.snapshotMessage(roomCode))
	s.readPump(r.Context())

	close(s.done)
	detach()
	if s.playerID != "" {
		c.registry.Leave(roomCode, s.playerID)
	}
	c.registry.Disconnect(roomCode)
	c.publishSnapshot(context.WithoutCancel(r.Context()), roomCode)
}

func (c *LiveConnector) snapshotMessage(code model.RoomCode) Message {
	msg, err := Encode(model.Event{
		Type:      model.EventLiveSnapshot,
		Timestamp: c.clock.Now(),
		RoomCode:  code,
		Payload:   model.LiveSnapshotPayload{Participants: c.registry.Snapshot(code)},
	})
	if err != nil {
		return errorMessage(code, c.clock.Now(), "snapshot unavailable")
	}
	return msg
}

func (c *LiveConnector) publishSnapshot(ctx context.Context, code model.RoomCode) {
	if err := c.broadcaster.LiveSnapshot(ctx, code, c.registry.Snapshot(code)); err != nil {
		c.logger.Error("failed to publish live snapshot",
			slog.String("room_code", string(code)),
			slog.Any("error", err))
	}
}

func (s *wsSession) reply(msg Message) {
	select {
	case s.direct <- msg:
	case <-s.done:
	default:
		s.logger.Warn("direct reply dropped - buffer full", slog.String("event", msg.Event))
	}
}

func (s *wsSession) replyError(text string) {
	s.reply(errorMessage(s.roomCode, s.connector.clock.Now(), text))
}

func (s *wsSession) readPump(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		var in InboundMessage
		if err := json.Unmarshal(data, &in); err != nil {
			s.replyError("malformed message")
			continue
		}
		s.handle(ctx, in)
	}
}

func (s *wsSession) handle(ctx context.Context, in InboundMessage) {
	c := s.connector
	switch in.Type {
	case inboundJoin:
		player, err := c.players.GetPlayer(ctx, s.roomCode, model.PlayerID(in.PlayerID))
		if err != nil {
			s.replyError(err.Error())
			return
		}
		// A connection holds at most one Join, for its current player
		if s.playerID != player.ID {
			if s.playerID != "" {
				c.registry.Leave(s.roomCode, s.playerID)
			}
			s.playerID = player.ID
			c.registry.Join(s.roomCode, player.ID, player.Name)
			s.logger.Info("player joined live session", slog.String("player_id", string(player.ID)))
		}

	case inboundUpdateScore:
		if s.playerID == "" {
			s.replyError(model.ErrNotInSession.Error())
			return
		}
		if err := c.registry.UpdateTransientScore(s.roomCode, s.playerID, in.Score); err != nil {
			s.replyError(err.Error())
			return
		}

	case inboundLeave:
		if s.playerID == "" {
			return
		}
		c.registry.Leave(s.roomCode, s.playerID)
		s.playerID = ""

	default:
		s.replyError("unknown message type")
		return
	}
	c.publishSnapshot(ctx, s.roomCode)
}

func (s *wsSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.client.send:
			if !ok {
				_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.write(message); err != nil {
				return
			}

		case message := <-s.direct:
			if err := s.write(message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *wsSession) write(message Message) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := s.conn.WriteMessage(websocket.TextMessage, message.Data)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		s.logger.Debug("websocket write failed", slog.Any("error", err))
	}
	return err
}
