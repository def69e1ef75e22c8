package factory

import (
	"time"

	"github.com/mcoot/connections-go/internal/dependencies/mocks"
	"github.com/mcoot/connections-go/internal/model"
	"github.com/mcoot/connections-go/internal/services/room"
	"github.com/mcoot/connections-go/internal/services/scoring"
	"github.com/mcoot/connections-go/internal/storage"
	"github.com/mcoot/connections-go/internal/storage/memory"
	"github.com/mcoot/connections-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App on in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates an App on the given storage with mocked
// dependencies
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, testutil.NopLogger(), scoring.DefaultConfig(), room.DefaultCodeAttempts, nil)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// TestPuzzle returns a valid puzzle whose words are prefixed with tag so
// puzzles in the same room stay distinguishable
func TestPuzzle(tag string) model.Puzzle {
	group := func(name string, words ...string) model.Group {
		prefixed := make([]string, len(words))
		for i, w := range words {
			prefixed[i] = tag + w
		}
		return model.Group{Name: name, Connection: name + " things", Words: prefixed}
	}
	return model.Puzzle{Groups: []model.Group{
		group("fish", "bass", "pike", "sole", "carp"),
		group("trees", "oak", "ash", "elm", "fir"),
		group("planets", "mars", "venus", "saturn", "earth"),
		group("colors", "red", "blue", "green", "pink"),
	}}
}
