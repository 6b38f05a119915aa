// Package ratelimit gates message processing with a per-user sliding
// window. State is process-local; a restart resets every window.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of one admission check. RetryAfter is zero when
// the request was allowed.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter keeps timestamps of recent requests per user key and rejects a
// request once the window holds MaxRequests of them.
type Limiter struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	buckets map[int64][]time.Time
	now     func() time.Time
}

func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		buckets:     make(map[int64][]time.Time),
		now:         time.Now,
	}
}

// Admit records the request and allows it, or rejects it with the time
// until the oldest retained timestamp leaves the window.
func (l *Limiter) Admit(userID int64) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.prune(userID, now)

	if len(kept) >= l.maxRequests {
		retry := l.window - now.Sub(kept[0])
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, RetryAfter: retry}
	}

	l.buckets[userID] = append(kept, now)
	return Decision{Allowed: true}
}

func (l *Limiter) prune(userID int64, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	bucket := l.buckets[userID]
	i := 0
	for i < len(bucket) && !bucket[i].After(cutoff) {
		i++
	}
	kept := bucket[i:]
	if len(kept) == 0 {
		delete(l.buckets, userID)
		return nil
	}
	l.buckets[userID] = kept
	return kept
}
