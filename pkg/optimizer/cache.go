package optimizer

import (
	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/keywords"
)

// EstimateStore is an optional second cache layer that outlives the process,
// e.g. the sqlite store in pkg/storage.
type EstimateStore interface {
	Get(keyword keywords.Keyword) (keywords.KeywordInfo, bool, error)
	Put(info keywords.KeywordInfo) error
}

// CachedEstimator decorates a TrafficEstimator with an in-process memo of
// estimates per keyword, so a keyword seen in an earlier round is never sent
// to the remote service again. The cache is unbounded and never evicts,
// which is fine for the lifetime of one optimization run. Not safe for
// concurrent use; callers must serialize access per instance.
type CachedEstimator struct {
	estimator TrafficEstimator
	cache     map[keywords.Keyword]keywords.KeywordInfo
	store     EstimateStore
}

func NewCachedEstimator(estimator TrafficEstimator) *CachedEstimator {
	return &CachedEstimator{
		estimator: estimator,
		cache:     make(map[keywords.Keyword]keywords.KeywordInfo),
	}
}

// NewPersistentCachedEstimator additionally backs the in-process cache with
// a persistent store consulted on misses and updated on fresh retrievals.
func NewPersistentCachedEstimator(estimator TrafficEstimator, store EstimateStore) *CachedEstimator {
	cached := NewCachedEstimator(estimator)
	cached.store = store
	return cached
}

func (c *CachedEstimator) Estimate(population *keywords.Population) (*keywords.Population, error) {
	cached := keywords.NewPopulationFrom(population)
	missing := keywords.NewPopulationFrom(population)

	for _, info := range population.List() {
		if hit, ok := c.lookup(info.Keyword); ok {
			cached.Add(hit)
		} else {
			missing.Add(info)
		}
	}

	result := keywords.NewPopulationFrom(population)
	for _, info := range cached.List() {
		result.Add(info)
	}

	if missing.Size() > 0 {
		fresh, err := c.estimator.Estimate(missing)
		if err != nil {
			return nil, err
		}
		for _, info := range fresh.List() {
			c.remember(info)
			result.Add(info)
		}
	}

	utils.Log.Infof("Estimated %d keywords (%d cached, %d retrieved)",
		population.Size(), cached.Size(), missing.Size())

	return result, nil
}

func (c *CachedEstimator) lookup(keyword keywords.Keyword) (keywords.KeywordInfo, bool) {
	if info, ok := c.cache[keyword]; ok {
		return info, true
	}
	if c.store != nil {
		info, ok, err := c.store.Get(keyword)
		if err != nil {
			utils.Log.Warnf("Estimate store lookup failed for %s: %v", keyword, err)
			return keywords.KeywordInfo{}, false
		}
		if ok {
			c.cache[keyword] = info
			return info, true
		}
	}
	return keywords.KeywordInfo{}, false
}

func (c *CachedEstimator) remember(info keywords.KeywordInfo) {
	c.cache[info.Keyword] = info
	if c.store != nil {
		if err := c.store.Put(info); err != nil {
			utils.Log.Warnf("Estimate store write failed for %s: %v", info.Keyword, err)
		}
	}
}
