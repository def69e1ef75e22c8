package model

import "strings"

const (
	// GroupsPerPuzzle is the number of groups in every puzzle
	GroupsPerPuzzle = 4
	// WordsPerGroup is the number of words in every group
	WordsPerGroup = 4
)

// Group is a named set of four words sharing a hidden connection
type Group struct {
	Name       string
	Connection string
	Words      []string
}

// Puzzle is a partition of sixteen words into four groups
type Puzzle struct {
	Groups []Group
}

// NormalizeWord is the canonical form used for all word comparisons
func NormalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// Validate checks that the puzzle has 4 groups of 4 non-empty words and that
// no word appears twice anywhere in the puzzle.
func (p Puzzle) Validate() error {
	if len(p.Groups) != GroupsPerPuzzle {
		return ErrInvalidPuzzle
	}
	seen := make(map[string]struct{}, GroupsPerPuzzle*WordsPerGroup)
	for _, g := range p.Groups {
		if len(g.Words) != WordsPerGroup {
			return ErrInvalidPuzzle
		}
		for _, w := range g.Words {
			n := NormalizeWord(w)
			if n == "" {
				return ErrInvalidPuzzle
			}
			if _, dup := seen[n]; dup {
				return ErrInvalidPuzzle
			}
			seen[n] = struct{}{}
		}
	}
	return nil
}

// Words returns every word in the puzzle, group by group
func (p Puzzle) Words() []string {
	words := make([]string, 0, GroupsPerPuzzle*WordsPerGroup)
	for _, g := range p.Groups {
		words = append(words, g.Words...)
	}
	return words
}
