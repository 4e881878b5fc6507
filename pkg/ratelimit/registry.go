package ratelimit

import "sync"

// Bucket names an independent quota scope on the remote side. Throttling in
// one bucket never delays calls in another.
type Bucket string

const (
	// BucketIdeas covers the keyword-ideation service.
	BucketIdeas Bucket = "ideas"
	// BucketEstimates covers the traffic-estimation service.
	BucketEstimates Bucket = "estimates"
)

// Registry hands out one shared Limiter per bucket. It is constructed once
// with explicit config and passed to every component that makes remote
// calls, so all callers of a bucket share its wait state.
type Registry struct {
	cfg Config

	mu       sync.Mutex
	limiters map[Bucket]*Limiter
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, limiters: make(map[Bucket]*Limiter)}
}

// Bucket returns the limiter for the named bucket, creating it on first use.
func (r *Registry) Bucket(name Bucket) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.limiters[name]
	if !ok {
		limiter = NewLimiter(r.cfg)
		r.limiters[name] = limiter
	}
	return limiter
}
