package matcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/connections-go/internal/model"
)

func testPuzzle() model.Puzzle {
	return model.Puzzle{Groups: []model.Group{
		{Name: "Yellow", Connection: "Fish", Words: []string{"Bass", "Pike", "Carp", "Sole"}},
		{Name: "Green", Connection: "Solfege", Words: []string{"Do", "Re", "Mi", "Fa"}},
		{Name: "Blue", Connection: "Planets", Words: []string{"Mars", "Venus", "Earth", "Saturn"}},
		{Name: "Purple", Connection: "Colors", Words: []string{"Red", "Blue", "Green", "Teal"}},
	}}
}

func TestEvaluate_CorrectGroupAnyCaseAnyOrder(t *testing.T) {
	p := testPuzzle()
	for _, g := range p.Groups {
		reversed := []string{
			strings.ToUpper(g.Words[3]),
			strings.ToLower(g.Words[2]),
			" " + g.Words[1] + " ",
			g.Words[0],
		}
		res, err := Evaluate(p, reversed)
		require.NoError(t, err)
		assert.True(t, res.Correct, g.Name)
		assert.Equal(t, g.Name, res.GroupName)
		assert.Equal(t, g.Connection, res.Connection)
	}
}

// Every 4-subset of the 16 words is correct iff it is exactly one group.
func TestEvaluate_AllSubsets(t *testing.T) {
	p := testPuzzle()
	words := p.Words()
	groupOf := make(map[string]int, len(words))
	for gi, g := range p.Groups {
		for _, w := range g.Words {
			groupOf[w] = gi
		}
	}

	n := len(words)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			for c := b + 1; c < n; c++ {
				for d := c + 1; d < n; d++ {
					guess := []string{words[a], words[b], words[c], words[d]}
					res, err := Evaluate(p, guess)
					require.NoError(t, err)

					g := groupOf[guess[0]]
					same := groupOf[guess[1]] == g && groupOf[guess[2]] == g && groupOf[guess[3]] == g
					assert.Equal(t, same, res.Correct, "guess %v", guess)
					if !same {
						assert.Empty(t, res.GroupName)
					}
				}
			}
		}
	}
}

func TestEvaluate_InvalidGuesses(t *testing.T) {
	p := testPuzzle()
	tests := []struct {
		name  string
		words []string
	}{
		{"empty", nil},
		{"three words", []string{"Bass", "Pike", "Carp"}},
		{"five words", []string{"Bass", "Pike", "Carp", "Sole", "Do"}},
		{"duplicate ignoring case", []string{"Bass", "BASS", "Carp", "Sole"}},
		{"blank word", []string{"Bass", "", "Carp", "Sole"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(p, tt.words)
			assert.ErrorIs(t, err, model.ErrInvalidGuess)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestEvaluate_UnknownWordsIncorrect(t *testing.T) {
	res, err := Evaluate(testPuzzle(), []string{"Bass", "Pike", "Carp", "Salmon"})
	require.NoError(t, err)
	assert.False(t, res.Correct)
}

func TestEvaluate_DoesNotMutatePuzzle(t *testing.T) {
	p := testPuzzle()
	before := testPuzzle()
	guess := []string{"BASS", "pike", "Carp", "Sole"}
	_, err := Evaluate(p, guess)
	require.NoError(t, err)
	assert.Equal(t, before, p)
	assert.Equal(t, []string{"BASS", "pike", "Carp", "Sole"}, guess)
}
