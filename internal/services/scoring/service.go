package scoring

import (
	"math"

	"github.com/mcoot/connections-go/internal/model"
)

// Config holds the deployment-wide scoring constants
type Config struct {
	GroupPoints    int
	MistakePenalty int
	MaxTime        int
	SpeedDivider   int
	MaxMistakes    int
}

// DefaultConfig returns the standard scoring constants
func DefaultConfig() Config {
	return Config{
		GroupPoints:    20,
		MistakePenalty: 10,
		MaxTime:        300,
		SpeedDivider:   2,
		MaxMistakes:    4,
	}
}

// Service turns final round tallies into points
type Service struct {
	cfg Config
}

// New creates a new scoring Service. A non-positive speed divider disables
// the speed bonus.
func New(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Config returns the constants the service was built with
func (s *Service) Config() Config {
	return s.cfg
}

// Score computes
//
//	max(0, round(correctGroups*GroupPoints + speedBonus - mistakes*MistakePenalty))
//
// where speedBonus = max(0, (MaxTime-timeSeconds)/SpeedDivider). Rounding is
// half away from zero.
func (s *Service) Score(correctGroups, mistakes, timeSeconds int) int {
	raw := float64(correctGroups*s.cfg.GroupPoints) +
		s.speedBonus(timeSeconds) -
		float64(mistakes*s.cfg.MistakePenalty)
	points := int(math.Round(raw))
	if points < 0 {
		return 0
	}
	return points
}

func (s *Service) speedBonus(timeSeconds int) float64 {
	if s.cfg.SpeedDivider <= 0 {
		return 0
	}
	return math.Max(0, float64(s.cfg.MaxTime-timeSeconds)/float64(s.cfg.SpeedDivider))
}

// MaxPoints is the best possible score: every group, no mistakes, no time
func (s *Service) MaxPoints() int {
	return s.Score(model.GroupsPerPuzzle, 0, 0)
}

// Validate checks that reported tallies are within range
func (s *Service) Validate(correctGroups, mistakes, timeSeconds int) error {
	if correctGroups < 0 || correctGroups > model.GroupsPerPuzzle {
		return model.ErrInvalidResult
	}
	if mistakes < 0 || mistakes > s.cfg.MaxMistakes {
		return model.ErrInvalidResult
	}
	if timeSeconds < 0 {
		return model.ErrInvalidResult
	}
	return nil
}

// IsFinished reports whether a round with these tallies is over: every group
// solved or the mistake allowance used up. Clients decide when to submit;
// the result is reported back as FinishOutcome.Finished.
func (s *Service) IsFinished(correctGroups, mistakes int) bool {
	return correctGroups >= model.GroupsPerPuzzle || mistakes >= s.cfg.MaxMistakes
}
