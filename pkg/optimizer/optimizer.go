// Package optimizer implements the round-based evolutionary search over
// keyword populations: seed, score, then repeatedly trim the population,
// replicate its best entries through an alternatives finder, score the
// candidates and merge them back in, until a stopping condition holds.
package optimizer

import (
	"fmt"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// SeedGenerator produces the initial keyword population.
type SeedGenerator interface {
	Generate() (*keywords.Population, error)
}

// AlternativesFinder derives new candidate keywords from the best entries of
// a population.
type AlternativesFinder interface {
	Derive(population *keywords.Population) (*keywords.Population, error)
}

// TrafficEstimator attaches traffic estimates to every entry of a population
// in one bulk call.
type TrafficEstimator interface {
	Estimate(population *keywords.Population) (*keywords.Population, error)
}

// ScoreCalculator reduces a traffic estimate to a single comparable score;
// higher is better.
type ScoreCalculator interface {
	Calculate(estimate *keywords.TrafficEstimate) (float64, error)
}

// Evaluator attaches a score to every entry of a population.
type Evaluator interface {
	Evaluate(population *keywords.Population) (*keywords.Population, error)
}

// RoundStrategy decides how one round transforms the population and when the
// search stops. IsFinished inspects the population passed in, so callers
// must feed the latest population back for a correct termination check.
type RoundStrategy interface {
	NextRound(current *keywords.Population, finder AlternativesFinder, evaluator Evaluator) (*keywords.Population, error)
	IsFinished(current *keywords.Population) (bool, error)
}

// Error is the aggregate failure type Optimize surfaces: it names the stage
// that failed and wraps the underlying cause.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("keyword optimization failed during %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: stage, Err: err}
}

// Optimizer runs the optimization process over its injected collaborators.
type Optimizer struct {
	seedGenerator      SeedGenerator
	alternativesFinder AlternativesFinder
	evaluator          Evaluator
	roundStrategy      RoundStrategy
}

func New(seedGenerator SeedGenerator, alternativesFinder AlternativesFinder,
	evaluator Evaluator, roundStrategy RoundStrategy) *Optimizer {
	return &Optimizer{
		seedGenerator:      seedGenerator,
		alternativesFinder: alternativesFinder,
		evaluator:          evaluator,
		roundStrategy:      roundStrategy,
	}
}

// Optimize runs seed generation, the initial evaluation and then rounds until
// the strategy reports the search as finished. Rounds are strictly
// sequential; any stage failure aborts the whole run.
func (o *Optimizer) Optimize() (*keywords.Population, error) {
	seed, err := o.seedGenerator.Generate()
	if err != nil {
		return nil, wrapStage("seed generation", err)
	}

	current, err := o.evaluator.Evaluate(seed)
	if err != nil {
		return nil, wrapStage("seed evaluation", err)
	}

	step := 0
	logStatus(current, step)

	for {
		finished, err := o.roundStrategy.IsFinished(current)
		if err != nil {
			return nil, wrapStage("termination check", err)
		}
		if finished {
			break
		}

		step++
		current, err = o.roundStrategy.NextRound(current, o.alternativesFinder, o.evaluator)
		if err != nil {
			return nil, wrapStage(fmt.Sprintf("round %d", step), err)
		}
		logStatus(current, step)
	}

	return current, nil
}

func logStatus(population *keywords.Population, step int) {
	utils.Log.Infof("--- Optimization step %d (avg: %.3f, size: %d) ---",
		step, population.AverageScore(), population.Size())

	for _, info := range population.SortedByScore() {
		utils.Log.Debug(info.String())
	}
}
