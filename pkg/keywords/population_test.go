package keywords

import (
	"math"
	"testing"
)

func scored(text string, matchType MatchType, score float64) KeywordInfo {
	return NewKeywordInfo(NewKeyword(text, matchType), nil, nil, &score)
}

func unscored(text string, matchType MatchType) KeywordInfo {
	return NewKeywordInfo(NewKeyword(text, matchType), nil, nil, nil)
}

func testPopulation() *Population {
	cfg := NewCampaignConfigurationBuilder().WithMaxCpc(MoneyFromUnits(1)).Build()
	pop := NewPopulation(cfg)
	pop.Add(scored("gamma", MatchExact, 4))
	pop.Add(scored("beta", MatchExact, 1))
	pop.Add(scored("alpha", MatchExact, 3))
	pop.Add(scored("beta", MatchBroad, 2))
	return pop
}

func TestAddDeduplicates(t *testing.T) {
	pop := testPopulation()
	if pop.Size() != 4 {
		t.Fatalf("expected size 4, got %d", pop.Size())
	}

	// Same (text, match type) replaces the entry; the second add wins.
	pop.Add(scored("alpha", MatchExact, 9))
	if pop.Size() != 4 {
		t.Fatalf("expected size to stay 4 after duplicate add, got %d", pop.Size())
	}
	info, ok := pop.Get(NewKeyword("alpha", MatchExact))
	if !ok || *info.Score != 9 {
		t.Fatalf("expected replaced score 9, got %+v", info)
	}

	// A different match type for the same text is a distinct keyword.
	pop.Add(scored("alpha", MatchPhrase, 5))
	if pop.Size() != 5 {
		t.Fatalf("expected size 5 after new match type, got %d", pop.Size())
	}
}

func TestSortedByScore(t *testing.T) {
	pop := testPopulation()
	sorted := pop.SortedByScore()

	want := []string{"gamma", "alpha", "beta", "beta"}
	for i, text := range want {
		if sorted[i].Keyword.Text != text {
			t.Fatalf("position %d: expected %q, got %q", i, text, sorted[i].Keyword.Text)
		}
	}
	if sorted[2].Keyword.MatchType != MatchBroad {
		t.Fatalf("expected beta[BROAD] (score 2) before beta[EXACT] (score 1)")
	}
}

func TestSortedByScoreUnscoredLast(t *testing.T) {
	pop := testPopulation()
	pop.Add(unscored("delta", MatchExact))

	sorted := pop.SortedByScore()
	last := sorted[len(sorted)-1]
	if last.Keyword.Text != "delta" {
		t.Fatalf("expected unscored entry last, got %q", last.Keyword.Text)
	}
}

func TestSortedByKeyword(t *testing.T) {
	pop := testPopulation()
	sorted := pop.SortedByKeyword()

	// BROAD sorts before EXACT because match types compare by name.
	want := []Keyword{
		NewKeyword("alpha", MatchExact),
		NewKeyword("beta", MatchBroad),
		NewKeyword("beta", MatchExact),
		NewKeyword("gamma", MatchExact),
	}
	for i, k := range want {
		if sorted[i].Keyword != k {
			t.Fatalf("position %d: expected %v, got %v", i, k, sorted[i].Keyword)
		}
	}
}

func TestBest(t *testing.T) {
	pop := testPopulation()

	if n := pop.Best(0).Size(); n != 0 {
		t.Fatalf("Best(0): expected empty, got %d entries", n)
	}

	best1 := pop.Best(1)
	if best1.Size() != 1 || !best1.Contains(NewKeyword("gamma", MatchExact)) {
		t.Fatalf("Best(1): expected only gamma, got %v", best1.List())
	}

	best2 := pop.Best(2)
	if best2.Size() != 2 ||
		!best2.Contains(NewKeyword("gamma", MatchExact)) ||
		!best2.Contains(NewKeyword("alpha", MatchExact)) {
		t.Fatalf("Best(2): expected gamma and alpha, got %v", best2.List())
	}

	if n := pop.Best(4).Size(); n != 4 {
		t.Fatalf("Best(size): expected full copy, got %d entries", n)
	}
	if n := pop.Best(5).Size(); n != 4 {
		t.Fatalf("Best(size+1): expected full copy, got %d entries", n)
	}
}

func TestBestIsFreshPopulation(t *testing.T) {
	pop := testPopulation()
	best := pop.Best(2)
	best.Add(scored("extra", MatchExact, 100))

	if pop.Contains(NewKeyword("extra", MatchExact)) {
		t.Fatal("modifying a Best() result must not touch the source population")
	}
	if pop.Config() != best.Config() {
		t.Fatal("Best() must share the campaign configuration by reference")
	}
}

func TestAverageScore(t *testing.T) {
	pop := testPopulation()
	if avg := pop.AverageScore(); avg != 2.5 {
		t.Fatalf("expected average 2.5, got %v", avg)
	}
}

func TestAverageScoreCountsUnscoredInDenominator(t *testing.T) {
	cfg := NewCampaignConfigurationBuilder().Build()
	pop := NewPopulation(cfg)
	pop.Add(scored("a", MatchExact, 1))
	pop.Add(scored("b", MatchExact, 2))
	pop.Add(scored("c", MatchExact, 3))
	pop.Add(unscored("d", MatchExact))

	// Unscored entries contribute 0 to the sum but still count: (1+2+3)/4.
	if avg := pop.AverageScore(); avg != 1.5 {
		t.Fatalf("expected average 1.5, got %v", avg)
	}
}

func TestAverageScoreEmpty(t *testing.T) {
	pop := NewPopulation(nil)
	if avg := pop.AverageScore(); !math.IsNaN(avg) {
		t.Fatalf("expected NaN for empty population, got %v", avg)
	}
}

func TestTextsAndMatchTypes(t *testing.T) {
	pop := testPopulation()

	texts := pop.Texts()
	if len(texts) != 3 {
		t.Fatalf("expected 3 distinct texts, got %v", texts)
	}

	types := pop.MatchTypes()
	if len(types) != 2 {
		t.Fatalf("expected 2 distinct match types, got %v", types)
	}
}
