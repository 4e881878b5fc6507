package adservice

import (
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// AlternativesFinder derives new candidate keywords for a population by
// asking the ideas service for suggestions related to the population's texts,
// crossed with the population's match types.
type AlternativesFinder struct {
	finder *IdeasFinder
}

func NewAlternativesFinder(finder *IdeasFinder) *AlternativesFinder {
	return &AlternativesFinder{finder: finder}
}

func (f *AlternativesFinder) Derive(population *keywords.Population) (*keywords.Population, error) {
	ideas, err := f.finder.Related(population.Texts(), population.Config())
	if err != nil {
		return nil, err
	}

	matchTypes := population.MatchTypes()
	alternatives := keywords.NewPopulationFrom(population)
	for _, idea := range ideas {
		estimate := idea.Estimate
		crossMatchTypes(alternatives, []string{idea.Text}, matchTypes, &estimate)
	}
	return alternatives, nil
}
