// Package storage persists traffic estimates in a local SQLite database so
// repeated optimization runs do not re-query the remote service for keywords
// it has already priced.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/adlabtools/kwopt/pkg/keywords"
)

type EstimateCache struct {
	sql *sql.DB
}

// Open opens (and if needed creates) the estimate cache at path.
func Open(path string) (*EstimateCache, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS estimates (
  text       TEXT NOT NULL,
  match_type TEXT NOT NULL,
  stats_json TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (text, match_type)
);
    `); err != nil {
		return nil, err
	}
	return &EstimateCache{sql: db}, nil
}

func (c *EstimateCache) Close() error {
	if c == nil || c.sql == nil {
		return nil
	}
	return c.sql.Close()
}

// storedInfo is the JSON shape of one cached row. The keyword itself lives in
// the key columns, everything else in stats_json.
type storedInfo struct {
	IdeaEstimate    *keywords.IdeaEstimate    `json:"ideaEstimate,omitempty"`
	TrafficEstimate *keywords.TrafficEstimate `json:"trafficEstimate,omitempty"`
	Score           *float64                  `json:"score,omitempty"`
}

// Get looks up a cached estimate. The second return value reports whether the
// keyword was present.
func (c *EstimateCache) Get(keyword keywords.Keyword) (keywords.KeywordInfo, bool, error) {
	var raw string
	err := c.sql.QueryRow(
		"SELECT stats_json FROM estimates WHERE text = ? AND match_type = ?",
		keyword.Text, keyword.MatchType.String(),
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return keywords.KeywordInfo{}, false, nil
	}
	if err != nil {
		return keywords.KeywordInfo{}, false, err
	}

	var stored storedInfo
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return keywords.KeywordInfo{}, false, fmt.Errorf("corrupt cache row for %s: %w", keyword, err)
	}
	return keywords.NewKeywordInfo(keyword, stored.IdeaEstimate, stored.TrafficEstimate, stored.Score), true, nil
}

// Put inserts or replaces the cached estimate for info's keyword.
func (c *EstimateCache) Put(info keywords.KeywordInfo) error {
	raw, err := json.Marshal(storedInfo{
		IdeaEstimate:    info.IdeaEstimate,
		TrafficEstimate: info.TrafficEstimate,
		Score:           info.Score,
	})
	if err != nil {
		return err
	}
	_, err = c.sql.Exec(`
INSERT INTO estimates(text, match_type, stats_json, updated_at) VALUES(?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(text, match_type) DO UPDATE SET stats_json = excluded.stats_json, updated_at = CURRENT_TIMESTAMP`,
		info.Keyword.Text, info.Keyword.MatchType.String(), string(raw))
	return err
}

// CacheStats summarizes the cache contents for the "cache stats" command.
type CacheStats struct {
	Entries int
	Oldest  time.Time
	Newest  time.Time
}

func (c *EstimateCache) Stats() (CacheStats, error) {
	var stats CacheStats
	if err := c.sql.QueryRow("SELECT COUNT(*) FROM estimates").Scan(&stats.Entries); err != nil {
		return CacheStats{}, err
	}
	if stats.Entries == 0 {
		return stats, nil
	}
	var oldest, newest string
	if err := c.sql.QueryRow("SELECT MIN(updated_at), MAX(updated_at) FROM estimates").Scan(&oldest, &newest); err != nil {
		return CacheStats{}, err
	}
	var err error
	if stats.Oldest, err = parseTimestamp(oldest); err != nil {
		return CacheStats{}, err
	}
	if stats.Newest, err = parseTimestamp(newest); err != nil {
		return CacheStats{}, err
	}
	return stats, nil
}

// Clear drops every cached estimate.
func (c *EstimateCache) Clear() (int64, error) {
	res, err := c.sql.Exec("DELETE FROM estimates")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
