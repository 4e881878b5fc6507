package optimizer

import (
	"fmt"
	"strings"
)

// Scorer names accepted by NewScoreCalculator.
const (
	ScorerClicks      = "clicks"
	ScorerImpressions = "impressions"
	ScorerFormula     = "formula"
)

// NewScoreCalculator builds a calculator from its configured name. The
// formula source is only consulted for the "formula" scorer.
func NewScoreCalculator(name, formulaSource string) (ScoreCalculator, error) {
	switch strings.ToLower(name) {
	case ScorerClicks:
		return ClicksScoreCalculator{}, nil
	case ScorerImpressions:
		return ImpressionsScoreCalculator{}, nil
	case ScorerFormula:
		if formulaSource == "" {
			return nil, fmt.Errorf("scorer %q requires a formula", name)
		}
		return NewFormulaScoreCalculator(formulaSource)
	}
	return nil, fmt.Errorf("unknown scorer %q (want %s, %s or %s)",
		name, ScorerClicks, ScorerImpressions, ScorerFormula)
}

// RoundStrategyParams carries the user-facing knobs of a round strategy.
// MaxSteps <= 0 and MinImprovement < 0 mean "no bound".
type RoundStrategyParams struct {
	MaxSteps       int
	MinImprovement float64
	MaxPopulation  int
	ReplicateBest  int
}

// NewRoundStrategy builds a round strategy from its configured name.
func NewRoundStrategy(name string, params RoundStrategyParams) (RoundStrategy, error) {
	switch strings.ToLower(name) {
	case "", "default":
		if params.MaxPopulation <= 0 {
			return nil, fmt.Errorf("max population must be positive, got %d", params.MaxPopulation)
		}
		if params.ReplicateBest <= 0 || params.ReplicateBest >= params.MaxPopulation {
			return nil, fmt.Errorf("replicate count must be in [1, %d), got %d",
				params.MaxPopulation, params.ReplicateBest)
		}
		var maxSteps *int
		if params.MaxSteps > 0 {
			maxSteps = &params.MaxSteps
		}
		var minImprovement *float64
		if params.MinImprovement >= 0 {
			minImprovement = &params.MinImprovement
		}
		return NewDefaultRoundStrategy(maxSteps, minImprovement,
			params.MaxPopulation, params.ReplicateBest), nil
	}
	return nil, fmt.Errorf("unknown round strategy %q", name)
}
