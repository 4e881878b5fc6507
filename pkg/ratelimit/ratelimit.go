// Package ratelimit wraps remote calls against a quota-limited service with
// adaptive wait-and-retry. When a call reports a throttling signal, the
// limiter records a "don't call before" deadline for the signal's scope and
// sleeps callers of that scope until the deadline has passed. Scopes are
// independent: an account-level cooldown never stalls other accounts, and
// separate buckets (e.g. ideas vs. estimates) never stall each other.
package ratelimit

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adlabtools/kwopt/internal/utils"
)

// Scope is the granularity at which the remote service enforces quotas.
type Scope string

const (
	// ScopeDeveloper throttles every call made with the developer token.
	ScopeDeveloper Scope = "DEVELOPER"
	// ScopeAccount throttles calls for one client account only.
	ScopeAccount Scope = "ACCOUNT"
)

// maxJitter bounds the random extra sleep added to each cooldown so that
// callers released at the same deadline do not re-collide.
const maxJitter = 50 * time.Millisecond

// RateExceededError is the throttling signal a remote call reports when the
// service asks us to back off.
type RateExceededError struct {
	Scope      Scope
	AccountID  int64
	RetryAfter time.Duration
}

func (e *RateExceededError) Error() string {
	return fmt.Sprintf("rate exceeded (scope %s, retry after %s)", e.Scope, e.RetryAfter)
}

// AsRateExceeded unwraps err into a RateExceededError, if it carries one.
func AsRateExceeded(err error) (*RateExceededError, bool) {
	var re *RateExceededError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// ExhaustedError is returned when the limiter gives up: either the attempt
// budget ran out or the requested cooldown exceeded the wait timeout. It
// wraps the last underlying throttling error.
type ExhaustedError struct {
	Attempts   int
	WaitNeeded time.Duration
	Err        error
}

func (e *ExhaustedError) Error() string {
	if e.WaitNeeded > 0 {
		return fmt.Sprintf("rate limit cooldown of %s exceeds the configured wait timeout: %v", e.WaitNeeded, e.Err)
	}
	return fmt.Sprintf("rate limited after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Config holds the per-bucket retry budget.
type Config struct {
	// MaxAttempts is the number of call attempts before giving up.
	// 0 means unbounded.
	MaxAttempts int
	// Timeout caps how long a single wait may be before giving up.
	// 0 means unbounded.
	Timeout time.Duration
}

// Limiter guards one bucket of remote calls. It is safe for concurrent use;
// waiting blocks only the calling goroutine.
type Limiter struct {
	maxAttempts int
	timeout     time.Duration

	tokenWaitUntil atomic.Int64 // unix nanos

	mu               sync.Mutex
	accountWaitUntil map[int64]*atomic.Int64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewLimiter(cfg Config) *Limiter {
	return &Limiter{
		maxAttempts:      cfg.MaxAttempts,
		timeout:          cfg.Timeout,
		accountWaitUntil: make(map[int64]*atomic.Int64),
		now:              time.Now,
		sleep:            time.Sleep,
	}
}

// Do invokes call, retrying throttled attempts after the indicated cooldown.
// Non-throttling errors propagate immediately without retry. Exhausting the
// attempt budget, or a cooldown longer than the configured timeout, returns
// an ExhaustedError wrapping the last throttling error.
func (l *Limiter) Do(accountID int64, call func() error) error {
	var last *RateExceededError

	for attempt := 0; l.maxAttempts == 0 || attempt < l.maxAttempts; attempt++ {
		if err := l.wait(accountID, last); err != nil {
			return err
		}

		err := call()
		if err == nil {
			return nil
		}

		re, ok := AsRateExceeded(err)
		if !ok {
			return err
		}
		last = re

		utils.Log.Infof("Rate exceeded (scope %s, retry after %s)", re.Scope, re.RetryAfter)
		deadline := l.now().Add(re.RetryAfter).UnixNano()
		switch re.Scope {
		case ScopeDeveloper:
			extend(&l.tokenWaitUntil, deadline)
		case ScopeAccount:
			extend(l.accountEntry(accountID), deadline)
		default:
			return fmt.Errorf("unknown rate limit scope %q: %w", re.Scope, err)
		}
	}

	return &ExhaustedError{Attempts: l.maxAttempts, Err: last}
}

// wait sleeps until every deadline covering this call has passed. If the
// required wait exceeds the timeout budget it fails without sleeping.
func (l *Limiter) wait(accountID int64, last *RateExceededError) error {
	now := l.now().UnixNano()

	waitFor := time.Duration(0)
	if d := time.Duration(l.tokenWaitUntil.Load() - now); d > waitFor {
		waitFor = d
	}
	if d := time.Duration(l.accountEntry(accountID).Load() - now); d > waitFor {
		waitFor = d
	}

	if waitFor <= 0 {
		return nil
	}
	if l.timeout > 0 && waitFor > l.timeout {
		return &ExhaustedError{WaitNeeded: waitFor, Err: last}
	}

	jitter := time.Duration(rand.Int63n(int64(maxJitter)))
	utils.Log.Infof("Sleeping %s due to rate limit", waitFor+jitter)
	l.sleep(waitFor + jitter)
	return nil
}

func (l *Limiter) accountEntry(accountID int64) *atomic.Int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.accountWaitUntil[accountID]
	if !ok {
		entry = new(atomic.Int64)
		l.accountWaitUntil[accountID] = entry
	}
	return entry
}

// extend moves a deadline forward, never backward. Under concurrent updates
// the maximum requested deadline wins.
func extend(deadline *atomic.Int64, newDeadline int64) {
	for {
		old := deadline.Load()
		if old >= newDeadline {
			return
		}
		if deadline.CompareAndSwap(old, newDeadline) {
			return
		}
	}
}
