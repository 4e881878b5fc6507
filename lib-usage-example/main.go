package main

import (
	"flag"
	"fmt"
	"hash/fnv"

	"github.com/adlabtools/kwopt/pkg/adservice"
	"github.com/adlabtools/kwopt/pkg/keywords"
	"github.com/adlabtools/kwopt/pkg/optimizer"
)

// Shows how to embed the optimizer with custom collaborators instead of the
// remote ad services: a local alternatives finder that derives keyword
// variations, and a deterministic offline estimator.
//
// Usage: go run . -seed "plumber" -seed-2 "drain cleaning"

// modifierFinder derives alternatives by prefixing common purchase modifiers.
type modifierFinder struct{}

func (modifierFinder) Derive(population *keywords.Population) (*keywords.Population, error) {
	alternatives := keywords.NewPopulationFrom(population)
	for _, info := range population.List() {
		for _, modifier := range []string{"best", "cheap", "emergency", "local"} {
			alternatives.Add(keywords.NewKeywordInfo(
				keywords.NewKeyword(modifier+" "+info.Keyword.Text, info.Keyword.MatchType),
				nil, nil, nil))
		}
	}
	return alternatives, nil
}

// offlineEstimator fabricates stable per-keyword statistics so the example
// runs without any remote service.
type offlineEstimator struct{}

func (offlineEstimator) Estimate(population *keywords.Population) (*keywords.Population, error) {
	result := keywords.NewPopulationFrom(population)
	for _, info := range population.List() {
		h := fnv.New32a()
		h.Write([]byte(info.Keyword.String()))
		base := float64(h.Sum32()%1000) / 10

		min := keywords.StatsEstimate{ClicksPerDay: keywords.Float64Ptr(base)}
		max := keywords.StatsEstimate{ClicksPerDay: keywords.Float64Ptr(base * 2)}
		result.Add(info.WithTrafficEstimate(keywords.NewTrafficEstimate(min, max)))
	}
	return result, nil
}

func main() {
	seed1 := flag.String("seed", "plumber", "first seed keyword")
	seed2 := flag.String("seed-2", "drain cleaning", "second seed keyword")
	flag.Parse()

	campaign := keywords.NewCampaignConfigurationBuilder().
		WithMaxCpc(keywords.MoneyFromUnits(1.50)).
		Build()

	seeds := adservice.NewSimpleSeedGenerator(
		[]string{*seed1, *seed2},
		[]keywords.MatchType{keywords.MatchBroad, keywords.MatchPhrase},
		campaign)

	evaluator := optimizer.NewEstimatorBasedEvaluator(
		optimizer.NewCachedEstimator(offlineEstimator{}),
		optimizer.ClicksScoreCalculator{})

	strategy, err := optimizer.NewRoundStrategy("default", optimizer.RoundStrategyParams{
		MaxSteps:       5,
		MinImprovement: -1,
		MaxPopulation:  20,
		ReplicateBest:  4,
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	result, err := optimizer.New(seeds, modifierFinder{}, evaluator, strategy).Optimize()
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, info := range result.SortedByScore() {
		fmt.Println(info)
	}
}
