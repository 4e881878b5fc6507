package keywords

import (
	"sort"
	"strings"
)

// Population is the working set of keywords in an optimization stage. It is a
// map from Keyword to KeywordInfo, so a keyword can never appear twice:
// adding an info whose keyword is already present replaces the old entry.
// Insertion order is remembered so sorting tie-breaks are deterministic.
type Population struct {
	config *CampaignConfiguration
	order  []Keyword
	items  map[Keyword]KeywordInfo
}

// NewPopulation creates an empty population for the given campaign settings.
func NewPopulation(config *CampaignConfiguration) *Population {
	return &Population{
		config: config,
		items:  make(map[Keyword]KeywordInfo),
	}
}

// NewPopulationFrom creates an empty population sharing another population's
// campaign settings.
func NewPopulationFrom(other *Population) *Population {
	return NewPopulation(other.config)
}

func (p *Population) Config() *CampaignConfiguration {
	return p.config
}

// Add upserts by keyword key; the last write wins. An upsert keeps the
// keyword's original position in the insertion order.
func (p *Population) Add(info KeywordInfo) {
	if _, ok := p.items[info.Keyword]; !ok {
		p.order = append(p.order, info.Keyword)
	}
	p.items[info.Keyword] = info
}

func (p *Population) Size() int {
	return len(p.items)
}

func (p *Population) Contains(keyword Keyword) bool {
	_, ok := p.items[keyword]
	return ok
}

func (p *Population) Get(keyword Keyword) (KeywordInfo, bool) {
	info, ok := p.items[keyword]
	return info, ok
}

// List returns all entries in insertion order.
func (p *Population) List() []KeywordInfo {
	infos := make([]KeywordInfo, 0, len(p.order))
	for _, k := range p.order {
		infos = append(infos, p.items[k])
	}
	return infos
}

// Texts returns the distinct keyword texts, in first-appearance order.
func (p *Population) Texts() []string {
	seen := make(map[string]bool)
	var texts []string
	for _, k := range p.order {
		if !seen[k.Text] {
			seen[k.Text] = true
			texts = append(texts, k.Text)
		}
	}
	return texts
}

// MatchTypes returns the distinct match types, in first-appearance order.
func (p *Population) MatchTypes() []MatchType {
	seen := make(map[MatchType]bool)
	var types []MatchType
	for _, k := range p.order {
		if !seen[k.MatchType] {
			seen[k.MatchType] = true
			types = append(types, k.MatchType)
		}
	}
	return types
}

// SortedByScore returns all entries sorted best score first. Entries without
// a score sort after all scored entries; ties keep insertion order.
func (p *Population) SortedByScore() []KeywordInfo {
	infos := p.List()
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i], infos[j]
		switch {
		case a.HasScore() && !b.HasScore():
			return true
		case !a.HasScore():
			return false
		default:
			return *a.Score > *b.Score
		}
	})
	return infos
}

// SortedByKeyword returns all entries in ascending (text, match type)
// alphabetic order.
func (p *Population) SortedByKeyword() []KeywordInfo {
	infos := p.List()
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i].Keyword, infos[j].Keyword
		if c := strings.Compare(a.Text, b.Text); c != 0 {
			return c < 0
		}
		return a.MatchType.String() < b.MatchType.String()
	})
	return infos
}

// Best returns a new population holding the count highest-scoring entries.
// A non-positive count yields an empty population; a count of at least Size
// yields a full copy.
func (p *Population) Best(count int) *Population {
	best := NewPopulationFrom(p)
	if count <= 0 {
		return best
	}
	for i, info := range p.SortedByScore() {
		if i >= count {
			break
		}
		best.Add(info)
	}
	return best
}

// AverageScore returns the sum of the scores of all scored entries divided by
// the total population size. Entries without a score contribute nothing to
// the sum but still count in the denominator; an empty population yields NaN.
func (p *Population) AverageScore() float64 {
	sum := 0.0
	for _, info := range p.items {
		if info.HasScore() {
			sum += *info.Score
		}
	}
	return sum / float64(len(p.items))
}

func (p *Population) String() string {
	var sb strings.Builder
	for _, info := range p.List() {
		sb.WriteString(info.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
