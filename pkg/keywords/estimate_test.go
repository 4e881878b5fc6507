package keywords

import "testing"

func TestMeanEstimate(t *testing.T) {
	min := StatsEstimate{
		ClicksPerDay:      Float64Ptr(10),
		ImpressionsPerDay: Float64Ptr(1000),
		AverageCpc:        MoneyPtr(MoneyFromUnits(1)),
	}
	max := StatsEstimate{
		ClicksPerDay:      Float64Ptr(20),
		ImpressionsPerDay: Float64Ptr(2000),
		AverageCpc:        MoneyPtr(MoneyFromUnits(3)),
	}

	mean := MeanEstimate(min, max)
	if mean.ClicksPerDay == nil || *mean.ClicksPerDay != 15 {
		t.Fatalf("expected mean clicks 15, got %v", mean.ClicksPerDay)
	}
	if mean.ImpressionsPerDay == nil || *mean.ImpressionsPerDay != 1500 {
		t.Fatalf("expected mean impressions 1500, got %v", mean.ImpressionsPerDay)
	}
	if mean.AverageCpc == nil || mean.AverageCpc.Units() != 2 {
		t.Fatalf("expected mean cpc 2.0, got %v", mean.AverageCpc)
	}
}

func TestMeanEstimatePropagatesMissingFields(t *testing.T) {
	min := StatsEstimate{ClicksPerDay: Float64Ptr(10)}
	max := StatsEstimate{ClicksPerDay: Float64Ptr(20), ImpressionsPerDay: Float64Ptr(2000)}

	mean := MeanEstimate(min, max)
	if mean.ImpressionsPerDay != nil {
		t.Fatalf("expected missing impressions to stay missing, got %v", *mean.ImpressionsPerDay)
	}
	if mean.TotalCost != nil || mean.AverageCpc != nil {
		t.Fatal("expected fields missing on both sides to stay missing")
	}
}

func TestNewTrafficEstimateComputesMean(t *testing.T) {
	min := StatsEstimate{ClicksPerDay: Float64Ptr(10)}
	max := StatsEstimate{ClicksPerDay: Float64Ptr(20)}

	estimate := NewTrafficEstimate(min, max)
	if estimate.Mean.ClicksPerDay == nil || *estimate.Mean.ClicksPerDay != 15 {
		t.Fatalf("expected computed mean clicks 15, got %v", estimate.Mean.ClicksPerDay)
	}
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("5.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != Money(5000000) {
		t.Fatalf("expected 5000000 micros, got %d", m)
	}

	if _, err := ParseMoney("not-a-number"); err == nil {
		t.Fatal("expected error for invalid amount")
	}
}

func TestParseMatchType(t *testing.T) {
	for input, want := range map[string]MatchType{
		"EXACT":  MatchExact,
		"broad":  MatchBroad,
		" Phrase ": MatchPhrase,
	} {
		got, err := ParseMatchType(input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("%q: expected %v, got %v", input, want, got)
		}
	}

	if _, err := ParseMatchType("NEGATIVE"); err == nil {
		t.Fatal("expected error for unknown match type")
	}
}
