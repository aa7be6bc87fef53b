package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Buckets hands out one token bucket per key. Image uploads use it so a
// single session cannot monopolize decode and encode work.
type Buckets struct {
	limit rate.Limit
	burst int
	clock Clock

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter *rate.Limiter
	lastAt  time.Time
}

// NewBuckets allows perMinute events per key with the given burst.
func NewBuckets(perMinute float64, burst int, clock Clock) *Buckets {
	if clock == nil {
		clock = realClock{}
	}
	if burst < 1 {
		burst = 1
	}
	return &Buckets{
		limit:   rate.Limit(perMinute / 60),
		burst:   burst,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token for key. When none is left it reports how long
// until the next one.
func (b *Buckets) Allow(key string) LimitResult {
	now := b.clock.Now()

	b.mu.Lock()
	defer b.mu.Unlock()

	bk := b.buckets[key]
	if bk == nil {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.buckets[key] = bk
	}
	bk.lastAt = now

	r := bk.limiter.ReserveN(now, 1)
	if !r.OK() {
		return LimitResult{Allowed: false, Reason: "burst_exceeded"}
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return LimitResult{Allowed: false, RetryAfter: delay, Reason: "upload_rate"}
	}
	return LimitResult{Allowed: true}
}

// Prune drops buckets idle for longer than idle.
func (b *Buckets) Prune(idle time.Duration) int {
	now := b.clock.Now()
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for k, bk := range b.buckets {
		if now.Sub(bk.lastAt) > idle {
			delete(b.buckets, k)
			n++
		}
	}
	return n
}
