package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/connections-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a websocket peer
	pongWait = 60 * time.Second

	// Largest inbound websocket message accepted
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

const (
	transportSSE       = "sse"
	transportWebsocket = "websocket"
)

// Client is one connection attached to a room hub
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	transport   string
	send        chan Message
	connectedAt time.Time
}

func newClient(hub *Hub, playerID model.PlayerID, transport string) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		transport:   transport,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Messages exposes the client's outgoing queue. It is closed when the hub
// drops the client.
func (c *Client) Messages() <-chan Message {
	return c.send
}

// ServeSSE streams room events to the client as server-sent events until the
// request is cancelled or the hub closes.
func (m *HubManager) ServeSSE(w http.ResponseWriter, r *http.Request, roomCode model.RoomCode, playerID model.PlayerID) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client, detach := m.Attach(roomCode, playerID, transportSSE)
	defer detach()

	_, _ = w.Write(formatSSEMessage("connected", `{"status":"connected"}`))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(formatSSEMessage(message.Event, string(message.Data))); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// formatSSEMessage formats an SSE message with event name and data.
// Each line of data gets its own "data: " prefix.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteByte('\n')
	for _, line := range splitLines(data) {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitLines splits a string into lines, dropping carriage returns and a
// trailing empty line
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
