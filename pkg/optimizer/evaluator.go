package optimizer

import (
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// EstimatorBasedEvaluator scores a population by fetching traffic estimates
// through the injected estimator and feeding each estimate through the score
// calculator. It is a pure transform: the input population is never touched.
type EstimatorBasedEvaluator struct {
	estimator  TrafficEstimator
	calculator ScoreCalculator
}

func NewEstimatorBasedEvaluator(estimator TrafficEstimator, calculator ScoreCalculator) *EstimatorBasedEvaluator {
	return &EstimatorBasedEvaluator{estimator: estimator, calculator: calculator}
}

func (e *EstimatorBasedEvaluator) Evaluate(population *keywords.Population) (*keywords.Population, error) {
	estimates, err := e.estimator.Estimate(population)
	if err != nil {
		return nil, err
	}

	evaluations := keywords.NewPopulationFrom(population)
	for _, estimate := range estimates.List() {
		score, err := e.calculator.Calculate(estimate.TrafficEstimate)
		if err != nil {
			return nil, err
		}
		evaluations.Add(estimate.WithScore(score))
	}

	return evaluations, nil
}
