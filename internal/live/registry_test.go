package live

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/connections-go/internal/dependencies/mocks"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/testutil"
)

func newRegistry() *Registry {
	return NewRegistry(mocks.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), testutil.NopLogger())
}

func TestJoinIsIdempotent(t *testing.T) {
	r := newRegistry()
	r.Connect("AB12CD")

	r.Join("AB12CD", "alice", "Alice")
	require.NoError(t, r.UpdateTransientScore("AB12CD", "alice", 60))
	r.Join("AB12CD", "alice", "Alice B")

	snap := r.Snapshot("AB12CD")
	require.Len(t, snap, 1)
	assert.Equal(t, "Alice B", snap[0].Name)
	assert.Equal(t, 60, snap[0].Score)
}

func TestSnapshotOrdering(t *testing.T) {
	r := newRegistry()
	r.Connect("AB12CD")
	r.Join("AB12CD", "c", "carol")
	r.Join("AB12CD", "a", "alice")
	r.Join("AB12CD", "b", "Bob")
	require.NoError(t, r.UpdateTransientScore("AB12CD", "a", 20))
	require.NoError(t, r.UpdateTransientScore("AB12CD", "b", 40))
	require.NoError(t, r.UpdateTransientScore("AB12CD", "c", 20))

	snap := r.Snapshot("AB12CD")
	names := []string{snap[0].Name, snap[1].Name, snap[2].Name}
	assert.Equal(t, []string{"Bob", "alice", "carol"}, names)
}

func TestUpdateUnknownParticipant(t *testing.T) {
	r := newRegistry()
	assert.ErrorIs(t, r.UpdateTransientScore("AB12CD", "alice", 1), model.ErrNotInSession)

	r.Connect("AB12CD")
	r.Join("AB12CD", "bob", "Bob")
	assert.ErrorIs(t, r.UpdateTransientScore("AB12CD", "alice", 1), model.ErrNotInSession)
}

func TestRoomsAreIsolated(t *testing.T) {
	r := newRegistry()
	r.Connect("AB12CD")
	r.Connect("ZZ99ZZ")
	r.Join("AB12CD", "alice", "Alice")

	assert.Len(t, r.Snapshot("AB12CD"), 1)
	assert.Empty(t, r.Snapshot("ZZ99ZZ"))
	assert.Empty(t, r.Snapshot("NOPE22"))
}

func TestEvictedWhenLastConnectionCloses(t *testing.T) {
	r := newRegistry()
	r.Connect("AB12CD")
	r.Connect("AB12CD")
	r.Join("AB12CD", "alice", "Alice")

	r.Disconnect("AB12CD")
	assert.Len(t, r.Snapshot("AB12CD"), 1)
	assert.Equal(t, 1, r.Rooms())

	r.Disconnect("AB12CD")
	assert.Empty(t, r.Snapshot("AB12CD"))
	assert.Equal(t, 0, r.Rooms())

	// Extra disconnects are harmless
	r.Disconnect("AB12CD")
	assert.Equal(t, 0, r.Rooms())
}

func TestLeave(t *testing.T) {
	r := newRegistry()
	r.Connect("AB12CD")
	r.Join("AB12CD", "alice", "Alice")
	r.Join("AB12CD", "bob", "Bob")

	assert.True(t, r.Leave("AB12CD", "alice"))
	snap := r.Snapshot("AB12CD")
	require.Len(t, snap, 1)
	assert.Equal(t, model.PlayerID("bob"), snap[0].PlayerID)
}

func TestLeaveKeepsParticipantWhileHeld(t *testing.T) {
	r := newRegistry()
	r.Connect("AB12CD")
	r.Join("AB12CD", "alice", "Alice")
	r.Join("AB12CD", "alice", "Alice")
	require.NoError(t, r.UpdateTransientScore("AB12CD", "alice", 35))

	assert.False(t, r.Leave("AB12CD", "alice"))
	snap := r.Snapshot("AB12CD")
	require.Len(t, snap, 1)
	assert.Equal(t, 35, snap[0].Score)
	assert.NoError(t, r.UpdateTransientScore("AB12CD", "alice", 40))

	assert.True(t, r.Leave("AB12CD", "alice"))
	assert.Empty(t, r.Snapshot("AB12CD"))
	assert.False(t, r.Leave("AB12CD", "alice"))
}

func TestConcurrentJoins(t *testing.T) {
	r := newRegistry()
	r.Connect("AB12CD")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := model.PlayerID(fmt.Sprintf("p%d", i%10))
			r.Join("AB12CD", id, string(id))
			_ = r.UpdateTransientScore("AB12CD", id, i)
		}()
	}
	wg.Wait()

	assert.Len(t, r.Snapshot("AB12CD"), 10)
}
