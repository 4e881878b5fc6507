package adservice

import (
	"fmt"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// crossMatchTypes builds one keyword per (text, match type) pair and adds it
// to the population with the given idea estimate.
func crossMatchTypes(population *keywords.Population, texts []string,
	matchTypes []keywords.MatchType, estimate *keywords.IdeaEstimate) {
	for _, text := range texts {
		for _, matchType := range matchTypes {
			population.Add(keywords.NewKeywordInfo(
				keywords.NewKeyword(text, matchType), estimate, nil, nil))
		}
	}
}

// SimpleSeedGenerator seeds the population with literal keyword texts, no
// remote call involved.
type SimpleSeedGenerator struct {
	texts      []string
	matchTypes []keywords.MatchType
	config     *keywords.CampaignConfiguration
}

func NewSimpleSeedGenerator(texts []string, matchTypes []keywords.MatchType,
	config *keywords.CampaignConfiguration) *SimpleSeedGenerator {
	return &SimpleSeedGenerator{texts: texts, matchTypes: matchTypes, config: config}
}

func (g *SimpleSeedGenerator) Generate() (*keywords.Population, error) {
	if len(g.texts) == 0 {
		return nil, fmt.Errorf("no seed keywords given")
	}
	if len(g.matchTypes) == 0 {
		return nil, fmt.Errorf("no match types given")
	}
	population := keywords.NewPopulation(g.config)
	crossMatchTypes(population, g.texts, g.matchTypes, &keywords.EmptyIdeaEstimate)
	return population, nil
}

// FileSeedGenerator reads seed keywords from a file, one per line.
type FileSeedGenerator struct {
	path       string
	matchTypes []keywords.MatchType
	config     *keywords.CampaignConfiguration
}

func NewFileSeedGenerator(path string, matchTypes []keywords.MatchType,
	config *keywords.CampaignConfiguration) *FileSeedGenerator {
	return &FileSeedGenerator{path: path, matchTypes: matchTypes, config: config}
}

func (g *FileSeedGenerator) Generate() (*keywords.Population, error) {
	texts, err := utils.ReadLines(g.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed keywords: %w", err)
	}
	return NewSimpleSeedGenerator(texts, g.matchTypes, g.config).Generate()
}

// TermsSeedGenerator seeds the population with ideas derived from free-form
// search terms.
type TermsSeedGenerator struct {
	finder     *IdeasFinder
	terms      []string
	matchTypes []keywords.MatchType
	config     *keywords.CampaignConfiguration
}

func NewTermsSeedGenerator(finder *IdeasFinder, terms []string,
	matchTypes []keywords.MatchType, config *keywords.CampaignConfiguration) *TermsSeedGenerator {
	return &TermsSeedGenerator{finder: finder, terms: terms, matchTypes: matchTypes, config: config}
}

func (g *TermsSeedGenerator) Generate() (*keywords.Population, error) {
	ideas, err := g.finder.Related(g.terms, g.config)
	if err != nil {
		return nil, err
	}
	return populationFromIdeas(ideas, g.matchTypes, g.config)
}

// CategorySeedGenerator seeds the population with ideas for a product or
// service category.
type CategorySeedGenerator struct {
	finder     *IdeasFinder
	categoryID int64
	matchTypes []keywords.MatchType
	config     *keywords.CampaignConfiguration
}

func NewCategorySeedGenerator(finder *IdeasFinder, categoryID int64,
	matchTypes []keywords.MatchType, config *keywords.CampaignConfiguration) *CategorySeedGenerator {
	return &CategorySeedGenerator{finder: finder, categoryID: categoryID, matchTypes: matchTypes, config: config}
}

func (g *CategorySeedGenerator) Generate() (*keywords.Population, error) {
	ideas, err := g.finder.ByCategory(g.categoryID, g.config)
	if err != nil {
		return nil, err
	}
	return populationFromIdeas(ideas, g.matchTypes, g.config)
}

func populationFromIdeas(ideas []Idea, matchTypes []keywords.MatchType,
	config *keywords.CampaignConfiguration) (*keywords.Population, error) {
	if len(ideas) == 0 {
		return nil, fmt.Errorf("the ideas service returned no suggestions")
	}
	population := keywords.NewPopulation(config)
	for _, idea := range ideas {
		estimate := idea.Estimate
		crossMatchTypes(population, []string{idea.Text}, matchTypes, &estimate)
	}
	return population, nil
}
