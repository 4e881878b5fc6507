package keywords

import "fmt"

// StatsEstimate holds predicted per-day traffic statistics for a keyword.
// Absent fields are nil.
type StatsEstimate struct {
	AverageCpc        *Money   `json:"averageCpc,omitempty"`
	AveragePosition   *float64 `json:"averagePosition,omitempty"`
	ClickThroughRate  *float64 `json:"clickThroughRate,omitempty"`
	ClicksPerDay      *float64 `json:"clicksPerDay,omitempty"`
	ImpressionsPerDay *float64 `json:"impressionsPerDay,omitempty"`
	TotalCost         *Money   `json:"totalCost,omitempty"`
}

func (s StatsEstimate) String() string {
	return fmt.Sprintf("clicks=%s impressions=%s ctr=%s position=%s cpc=%s cost=%s",
		formatFloat(s.ClicksPerDay), formatFloat(s.ImpressionsPerDay),
		formatFloat(s.ClickThroughRate), formatFloat(s.AveragePosition),
		formatMoney(s.AverageCpc), formatMoney(s.TotalCost))
}

func formatFloat(v *float64) string {
	if v == nil {
		return "---"
	}
	return fmt.Sprintf("%.3f", *v)
}

func formatMoney(m *Money) string {
	if m == nil {
		return "---"
	}
	return m.String()
}

// MeanEstimate computes the per-field arithmetic midpoint of two estimates.
// A field missing on either side is missing in the result.
func MeanEstimate(min, max StatsEstimate) StatsEstimate {
	return StatsEstimate{
		AverageCpc:        meanMoney(min.AverageCpc, max.AverageCpc),
		AveragePosition:   meanFloat(min.AveragePosition, max.AveragePosition),
		ClickThroughRate:  meanFloat(min.ClickThroughRate, max.ClickThroughRate),
		ClicksPerDay:      meanFloat(min.ClicksPerDay, max.ClicksPerDay),
		ImpressionsPerDay: meanFloat(min.ImpressionsPerDay, max.ImpressionsPerDay),
		TotalCost:         meanMoney(min.TotalCost, max.TotalCost),
	}
}

func meanFloat(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	m := (*a + *b) / 2
	return &m
}

func meanMoney(a, b *Money) *Money {
	if a == nil || b == nil {
		return nil
	}
	m := (*a + *b) / 2
	return &m
}

// TrafficEstimate is the min/mean/max triple of traffic statistics for a
// keyword.
type TrafficEstimate struct {
	Min  StatsEstimate `json:"min"`
	Mean StatsEstimate `json:"mean"`
	Max  StatsEstimate `json:"max"`
}

// NewTrafficEstimate builds an estimate from min and max, computing the mean
// as the per-field midpoint.
func NewTrafficEstimate(min, max StatsEstimate) *TrafficEstimate {
	return &TrafficEstimate{Min: min, Mean: MeanEstimate(min, max), Max: max}
}

// NewTrafficEstimateWithMean builds an estimate with an explicitly provided
// mean.
func NewTrafficEstimateWithMean(min, mean, max StatsEstimate) *TrafficEstimate {
	return &TrafficEstimate{Min: min, Mean: mean, Max: max}
}

// MonthlySearchVolume is the search count for one calendar month.
type MonthlySearchVolume struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

// IdeaEstimate holds the statistics the ideas service attaches to a keyword
// suggestion.
type IdeaEstimate struct {
	Competition             float64               `json:"competition"`
	SearchVolume            int64                 `json:"searchVolume"`
	AverageCpc              Money                 `json:"averageCpc"`
	TargetedMonthlySearches []MonthlySearchVolume `json:"targetedMonthlySearches,omitempty"`
}

// EmptyIdeaEstimate marks "no estimate available".
var EmptyIdeaEstimate = IdeaEstimate{}
