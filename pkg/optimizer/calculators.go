package optimizer

import (
	"math"

	"github.com/adlabtools/kwopt/pkg/formula"
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// ClicksScoreCalculator scores a keyword by its estimated mean clicks per day.
type ClicksScoreCalculator struct{}

func (ClicksScoreCalculator) Calculate(estimate *keywords.TrafficEstimate) (float64, error) {
	if estimate == nil || estimate.Mean.ClicksPerDay == nil {
		return math.NaN(), nil
	}
	return *estimate.Mean.ClicksPerDay, nil
}

// ImpressionsScoreCalculator scores a keyword by its estimated mean
// impressions per day.
type ImpressionsScoreCalculator struct{}

func (ImpressionsScoreCalculator) Calculate(estimate *keywords.TrafficEstimate) (float64, error) {
	if estimate == nil || estimate.Mean.ImpressionsPerDay == nil {
		return math.NaN(), nil
	}
	return *estimate.Mean.ImpressionsPerDay, nil
}

// FormulaScoreCalculator evaluates a user-supplied arithmetic formula over the
// estimate's statistics. Fields the estimate does not carry evaluate to NaN,
// which then propagates into the score.
type FormulaScoreCalculator struct {
	expression *formula.Expression
}

func NewFormulaScoreCalculator(source string) (*FormulaScoreCalculator, error) {
	expression, err := formula.Parse(source)
	if err != nil {
		return nil, err
	}
	return &FormulaScoreCalculator{expression: expression}, nil
}

func (c *FormulaScoreCalculator) Calculate(estimate *keywords.TrafficEstimate) (float64, error) {
	return c.expression.Eval(formula.NewEstimateContext(estimate))
}
