package storage

import (
	"path/filepath"
	"testing"

	"github.com/adlabtools/kwopt/pkg/keywords"
)

func openTestCache(t *testing.T) *EstimateCache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "estimates.sqlite"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func sampleInfo(text string) keywords.KeywordInfo {
	stats := keywords.StatsEstimate{
		ClicksPerDay: keywords.Float64Ptr(12.5),
		AverageCpc:   keywords.MoneyPtr(keywords.MoneyFromUnits(1.5)),
	}
	info := keywords.NewKeywordInfo(
		keywords.NewKeyword(text, keywords.MatchPhrase),
		nil,
		keywords.NewTrafficEstimateWithMean(stats, stats, stats),
		keywords.Float64Ptr(12.5),
	)
	return info
}

func TestPutGetRoundTrip(t *testing.T) {
	cache := openTestCache(t)

	want := sampleInfo("plumber near me")
	if err := cache.Put(want); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, ok, err := cache.Get(want.Keyword)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got.Keyword != want.Keyword {
		t.Fatalf("keyword mismatch: got %s want %s", got.Keyword, want.Keyword)
	}
	if !got.HasScore() || *got.Score != *want.Score {
		t.Fatalf("score mismatch: got %v want %v", got.Score, want.Score)
	}
	if !got.HasEstimate() || *got.TrafficEstimate.Mean.ClicksPerDay != 12.5 {
		t.Fatalf("estimate did not survive the round trip: %+v", got.TrafficEstimate)
	}
	if got.TrafficEstimate.Mean.AverageCpc.Units() != 1.5 {
		t.Fatalf("money field did not survive the round trip: %v", got.TrafficEstimate.Mean.AverageCpc)
	}
}

func TestGetMiss(t *testing.T) {
	cache := openTestCache(t)

	_, ok, err := cache.Get(keywords.NewKeyword("never seen", keywords.MatchBroad))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatal("expected a miss")
	}
}

func TestMatchTypesAreDistinctKeys(t *testing.T) {
	cache := openTestCache(t)

	phrase := sampleInfo("plumber")
	if err := cache.Put(phrase); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	_, ok, err := cache.Get(keywords.NewKeyword("plumber", keywords.MatchExact))
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatal("EXACT lookup must not hit the PHRASE row")
	}
}

func TestPutReplaces(t *testing.T) {
	cache := openTestCache(t)

	info := sampleInfo("plumber")
	if err := cache.Put(info); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := cache.Put(info.WithScore(99)); err != nil {
		t.Fatalf("second put failed: %v", err)
	}

	got, _, err := cache.Get(info.Keyword)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if *got.Score != 99 {
		t.Fatalf("expected the replacement to win, got %v", *got.Score)
	}

	stats, err := cache.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Entries != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", stats.Entries)
	}
}

func TestStatsAndClear(t *testing.T) {
	cache := openTestCache(t)

	stats, err := cache.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("expected an empty cache, got %d entries", stats.Entries)
	}

	for _, text := range []string{"a", "b", "c"} {
		if err := cache.Put(sampleInfo(text)); err != nil {
			t.Fatalf("put failed: %v", err)
		}
	}

	stats, err = cache.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Entries != 3 {
		t.Fatalf("expected 3 entries, got %d", stats.Entries)
	}
	if stats.Oldest.IsZero() || stats.Newest.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}
	if stats.Newest.Before(stats.Oldest) {
		t.Fatalf("newest %s before oldest %s", stats.Newest, stats.Oldest)
	}

	removed, err := cache.Clear()
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed rows, got %d", removed)
	}

	stats, err = cache.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("expected an empty cache after clear, got %d", stats.Entries)
	}
}
