package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	rule     Rule
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per (operation, user) in process.
// It is only correct for a single instance; use RedisLimiter when scaling out.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewMemoryLimiter(cleanupInterval time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go l.janitor(cleanupInterval)
	}

	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, op Operation, userID string) (Decision, error) {
	rule, err := ruleFor(op)
	if err != nil {
		return Decision{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	k := key(op, userID)
	b, ok := l.buckets[k]
	if !ok {
		b = &bucket{
			limiter: rate.NewLimiter(rate.Every(rule.Interval()), rule.Burst),
			rule:    rule,
		}
		l.buckets[k] = b
	}
	b.lastSeen = now

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: rule.Period}, nil
	}

	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}

	return Decision{Allowed: true}, nil
}

// Cleanup drops buckets that have been idle long enough to refill completely.
func (l *MemoryLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for k, b := range l.buckets {
		refill := b.rule.Interval() * time.Duration(b.rule.Burst)
		if now.Sub(b.lastSeen) >= refill {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}

func (l *MemoryLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stop:
			return
		}
	}
}
