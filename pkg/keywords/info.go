package keywords

import "fmt"

// KeywordInfo ties a keyword to what is known about it: the idea estimate from
// the ideas service, the traffic estimate and the score. It is treated as
// immutable; "updating" means building a new KeywordInfo for the same keyword.
type KeywordInfo struct {
	Keyword         Keyword
	IdeaEstimate    *IdeaEstimate
	TrafficEstimate *TrafficEstimate
	Score           *float64
}

func NewKeywordInfo(keyword Keyword, idea *IdeaEstimate, traffic *TrafficEstimate, score *float64) KeywordInfo {
	return KeywordInfo{Keyword: keyword, IdeaEstimate: idea, TrafficEstimate: traffic, Score: score}
}

func (i KeywordInfo) HasEstimate() bool {
	return i.TrafficEstimate != nil
}

func (i KeywordInfo) HasIdeaEstimate() bool {
	return i.IdeaEstimate != nil
}

func (i KeywordInfo) HasScore() bool {
	return i.Score != nil
}

// WithScore returns a copy of this info with the score set.
func (i KeywordInfo) WithScore(score float64) KeywordInfo {
	i.Score = &score
	return i
}

// WithTrafficEstimate returns a copy of this info with the estimate set.
func (i KeywordInfo) WithTrafficEstimate(estimate *TrafficEstimate) KeywordInfo {
	i.TrafficEstimate = estimate
	return i
}

func (i KeywordInfo) String() string {
	if i.HasScore() {
		return fmt.Sprintf("%s: %.3f", i.Keyword, *i.Score)
	}
	return i.Keyword.String()
}

// Float64Ptr is a convenience for building optional scores and stats.
func Float64Ptr(v float64) *float64 {
	return &v
}

// MoneyPtr is a convenience for building optional money fields.
func MoneyPtr(m Money) *Money {
	return &m
}
