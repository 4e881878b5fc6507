package adservice

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/adlabtools/kwopt/pkg/keywords"
	"github.com/adlabtools/kwopt/pkg/ratelimit"
)

// Estimator fetches traffic estimates for whole populations in one call to
// the traffic-estimation service.
type Estimator struct {
	client *Client
}

func NewEstimator(client *Client) *Estimator {
	return &Estimator{client: client}
}

type estimateQuery struct {
	Keywords []estimateKeyword `json:"keywords"`

	MaxCpcMicros int64           `json:"maxCpcMicros,omitempty"`
	Criteria     []queryCriteria `json:"criteria,omitempty"`
}

type estimateKeyword struct {
	Text      string `json:"text"`
	MatchType string `json:"matchType"`
}

// Estimate sends every keyword of the population to /v1/traffic:estimate and
// returns a new population with min/max statistics attached and the mean
// computed client-side. Keywords the service does not answer for come back
// without an estimate.
func (e *Estimator) Estimate(population *keywords.Population) (*keywords.Population, error) {
	query := estimateQuery{}
	for _, info := range population.List() {
		query.Keywords = append(query.Keywords, estimateKeyword{
			Text:      info.Keyword.Text,
			MatchType: info.Keyword.MatchType.String(),
		})
	}
	if cfg := population.Config(); cfg != nil {
		if maxCpc := cfg.MaxCpc(); maxCpc != nil {
			query.MaxCpcMicros = int64(*maxCpc)
		}
		for _, criterion := range cfg.AdditionalCriteria() {
			query.Criteria = append(query.Criteria, queryCriteria{Kind: string(criterion.Kind), ID: criterion.ID})
		}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	response, err := e.client.post(ratelimit.BucketEstimates, "/v1/traffic:estimate", string(body))
	if err != nil {
		return nil, fmt.Errorf("traffic estimation failed: %w", err)
	}

	estimates := make(map[keywords.Keyword]*keywords.TrafficEstimate)
	for _, raw := range gjson.Get(response, "estimates").Array() {
		matchType, err := keywords.ParseMatchType(raw.Get("matchType").String())
		if err != nil {
			return nil, fmt.Errorf("bad estimate entry: %w", err)
		}
		keyword := keywords.NewKeyword(raw.Get("text").String(), matchType)
		estimates[keyword] = keywords.NewTrafficEstimate(
			parseStats(raw.Get("min")), parseStats(raw.Get("max")))
	}

	result := keywords.NewPopulationFrom(population)
	for _, info := range population.List() {
		if estimate, ok := estimates[info.Keyword]; ok {
			result.Add(info.WithTrafficEstimate(estimate))
		} else {
			result.Add(info)
		}
	}
	return result, nil
}

func parseStats(raw gjson.Result) keywords.StatsEstimate {
	var stats keywords.StatsEstimate
	if v := raw.Get("averageCpcMicros"); v.Exists() {
		stats.AverageCpc = keywords.MoneyPtr(keywords.Money(v.Int()))
	}
	if v := raw.Get("averagePosition"); v.Exists() {
		stats.AveragePosition = keywords.Float64Ptr(v.Float())
	}
	if v := raw.Get("clickThroughRate"); v.Exists() {
		stats.ClickThroughRate = keywords.Float64Ptr(v.Float())
	}
	if v := raw.Get("clicksPerDay"); v.Exists() {
		stats.ClicksPerDay = keywords.Float64Ptr(v.Float())
	}
	if v := raw.Get("impressionsPerDay"); v.Exists() {
		stats.ImpressionsPerDay = keywords.Float64Ptr(v.Float())
	}
	if v := raw.Get("totalCostMicros"); v.Exists() {
		stats.TotalCost = keywords.MoneyPtr(keywords.Money(v.Int()))
	}
	return stats
}
