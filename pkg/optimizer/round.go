package optimizer

import (
	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// DefaultRoundStrategy implements the trim / replicate / evaluate / merge /
// trim round. A nil maxSteps or minImprovement disables that termination
// check; with both nil the search never stops on its own and the caller must
// bound it externally.
type DefaultRoundStrategy struct {
	maxSteps       *int
	minImprovement *float64
	maxPopulation  int
	replicateBest  int

	currentStep  int
	lastAvgScore *float64
}

func NewDefaultRoundStrategy(maxSteps *int, minImprovement *float64,
	maxPopulation, replicateBest int) *DefaultRoundStrategy {
	return &DefaultRoundStrategy{
		maxSteps:       maxSteps,
		minImprovement: minImprovement,
		maxPopulation:  maxPopulation,
		replicateBest:  replicateBest,
	}
}

func (s *DefaultRoundStrategy) NextRound(current *keywords.Population,
	finder AlternativesFinder, evaluator Evaluator) (*keywords.Population, error) {

	// Trim to max size, already dropping the worst entries that replication
	// will replace.
	next := current.Best(s.maxPopulation - s.replicateBest)
	utils.Log.Infof("- Trimmed population to %d", next.Size())

	// Replicate the best entries into new candidates.
	best := next.Best(s.replicateBest)
	alternatives, err := finder.Derive(best)
	if err != nil {
		return nil, err
	}
	utils.Log.Infof("- Found %d alternatives based on the %d current best", alternatives.Size(), s.replicateBest)

	evaluated, err := evaluator.Evaluate(alternatives)
	if err != nil {
		return nil, err
	}

	// Merge the scored candidates in. Keywords already present are left
	// untouched: first writer wins within a round.
	for _, candidate := range evaluated.List() {
		if !next.Contains(candidate.Keyword) {
			next.Add(candidate)
		}
	}
	utils.Log.Infof("- Merged population, new size is %d", next.Size())

	next = next.Best(s.maxPopulation)
	utils.Log.Infof("- Trimmed population back to %d", next.Size())

	avg := next.AverageScore()
	s.lastAvgScore = &avg
	s.currentStep++

	return next, nil
}

func (s *DefaultRoundStrategy) IsFinished(current *keywords.Population) (bool, error) {
	if s.maxSteps != nil && s.currentStep >= *s.maxSteps {
		return true, nil
	}

	if s.minImprovement != nil && s.lastAvgScore != nil {
		improvement := (current.AverageScore() - *s.lastAvgScore) / *s.lastAvgScore
		if improvement < *s.minImprovement {
			return true, nil
		}
	}

	return false, nil
}
