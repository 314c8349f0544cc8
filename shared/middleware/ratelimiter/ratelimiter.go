package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter *rate.Limiter
	timer   *time.Timer
}

// UserRateLimiter keeps one token bucket per identity. Buckets nobody used
// for expirationTime are dropped.
type UserRateLimiter struct {
	mu             sync.Mutex
	limiters       map[string]*entry
	limit          rate.Limit
	burst          int
	expirationTime time.Duration
}

// NewUserRateLimiter creates a limiter refilling perSecond tokens up to burst.
func NewUserRateLimiter(perSecond float64, burst int, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:       make(map[string]*entry),
		limit:          rate.Limit(perSecond),
		burst:          burst,
		expirationTime: expirationTime,
	}
}

// PerMinute is a helper for limits configured as requests per minute.
func PerMinute(n int) float64 {
	return float64(n) / 60
}

func (u *UserRateLimiter) Allow(identity string) bool {
	return u.get(identity).Allow()
}

func (u *UserRateLimiter) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.limiters)
}

func (u *UserRateLimiter) get(identity string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()

	e, ok := u.limiters[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(u.limit, u.burst)}
		u.limiters[identity] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(u.expirationTime, func() { u.expire(identity, e) })
	return e.limiter
}

func (u *UserRateLimiter) expire(identity string, e *entry) {
	u.mu.Lock()
	defer u.mu.Unlock()
	// a newer entry may have replaced this one
	if u.limiters[identity] == e {
		delete(u.limiters, identity)
	}
}
