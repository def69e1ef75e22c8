// Package live tracks who is currently connected to each room and their
// client-reported running scores. Nothing here is persisted and nothing here
// is authoritative; the leaderboard service owns final results.
package live

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mcoot/connections-go/internal/dependencies/clock"
	"github.com/mcoot/connections-go/internal/model"
)

type roomState struct {
	participants map[model.PlayerID]*model.Participant
	// holds counts the Joins not yet matched by a Leave, per participant
	holds       map[model.PlayerID]int
	connections int
}

// Registry is a process-local, concurrency-safe view of live participants.
// A room's entries are dropped when its last connection disconnects.
type Registry struct {
	mu     sync.Mutex
	rooms  map[model.RoomCode]*roomState
	clock  clock.Clock
	logger *slog.Logger
}

// NewRegistry creates an empty Registry
func NewRegistry(clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[model.RoomCode]*roomState),
		clock:  clock,
		logger: logger.With(slog.String("component", "live")),
	}
}

func (r *Registry) room(code model.RoomCode) *roomState {
	st, ok := r.rooms[code]
	if !ok {
		st = &roomState{
			participants: make(map[model.PlayerID]*model.Participant),
			holds:        make(map[model.PlayerID]int),
		}
		r.rooms[code] = st
	}
	return st
}

// Connect records a new connection to the room
func (r *Registry) Connect(code model.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room(code).connections++
}

// Disconnect records a closed connection. When it was the room's last one,
// every participant entry for the room is evicted.
func (r *Registry) Disconnect(code model.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[code]
	if !ok {
		return
	}
	if st.connections > 0 {
		st.connections--
	}
	if st.connections == 0 {
		delete(r.rooms, code)
		r.logger.Debug("live room evicted", slog.String("room_code", string(code)))
	}
}

// Join adds the player to the room's live session. Joining again keeps the
// existing entry and score and only refreshes the display name. Each Join is
// a hold on the entry (one per connection acting as the player), released by
// Leave.
func (r *Registry) Join(code model.RoomCode, playerID model.PlayerID, name string) model.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.room(code)
	st.holds[playerID]++
	if p, ok := st.participants[playerID]; ok {
		if name != "" {
			p.Name = name
		}
		return *p
	}
	p := &model.Participant{
		RoomCode: code,
		PlayerID: playerID,
		Name:     name,
		JoinedAt: r.clock.Now(),
	}
	st.participants[playerID] = p
	return *p
}

// Leave releases one hold on the participant. The entry is removed when no
// holds remain, so a player connected twice stays live until both leave.
// It reports whether the entry was removed. Connection counts are untouched.
func (r *Registry) Leave(code model.RoomCode, playerID model.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[code]
	if !ok {
		return false
	}
	if st.holds[playerID] > 1 {
		st.holds[playerID]--
		return false
	}
	delete(st.holds, playerID)
	_, existed := st.participants[playerID]
	delete(st.participants, playerID)
	return existed
}

// UpdateTransientScore replaces the participant's running score
func (r *Registry) UpdateTransientScore(code model.RoomCode, playerID model.PlayerID, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[code]
	if !ok {
		return model.ErrNotInSession
	}
	p, ok := st.participants[playerID]
	if !ok {
		return model.ErrNotInSession
	}
	p.Score = score
	return nil
}

// Snapshot returns the room's participants by transient score descending,
// then name, then player ID
func (r *Registry) Snapshot(code model.RoomCode) []model.Participant {
	r.mu.Lock()
	st, ok := r.rooms[code]
	if !ok {
		r.mu.Unlock()
		return []model.Participant{}
	}
	out := make([]model.Participant, 0, len(st.participants))
	for _, p := range st.participants {
		out = append(out, *p)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		ni, nj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if ni != nj {
			return ni < nj
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Rooms returns how many rooms currently hold live state
func (r *Registry) Rooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
