// Package matcher decides whether a four-word guess names one of a
// puzzle's groups.
package matcher

import (
	"github.com/mcoot/connections-go/internal/model"
)

// NormalizeGuess lowercases and trims each word and checks that the guess
// is exactly four distinct words.
func NormalizeGuess(words []string) (map[string]struct{}, error) {
	if len(words) != model.WordsPerGroup {
		return nil, model.ErrInvalidGuess
	}
	set := make(map[string]struct{}, model.WordsPerGroup)
	for _, w := range words {
		n := model.NormalizeWord(w)
		if n == "" {
			return nil, model.ErrInvalidGuess
		}
		set[n] = struct{}{}
	}
	if len(set) != model.WordsPerGroup {
		return nil, model.ErrInvalidGuess
	}
	return set, nil
}

// Evaluate compares the guess against every group in the puzzle.
// It never mutates the puzzle.
func Evaluate(puzzle model.Puzzle, words []string) (model.GuessResult, error) {
	guess, err := NormalizeGuess(words)
	if err != nil {
		return model.GuessResult{}, err
	}

	for _, g := range puzzle.Groups {
		if matches(g, guess) {
			return model.GuessResult{
				Correct:    true,
				GroupName:  g.Name,
				Connection: g.Connection,
			}, nil
		}
	}
	return model.GuessResult{Correct: false}, nil
}

func matches(g model.Group, guess map[string]struct{}) bool {
	if len(g.Words) != len(guess) {
		return false
	}
	for _, w := range g.Words {
		if _, ok := guess[model.NormalizeWord(w)]; !ok {
			return false
		}
	}
	return true
}
