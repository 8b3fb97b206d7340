package api

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Token bucket per listing, limits delivery code guessing
type confirmLimiter struct {
	mtx      sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

func newConfirmLimiter(burst int, interval, ttl time.Duration) *confirmLimiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &confirmLimiter{
		limiters: cache.New(ttl, ttl),
		limit:    limit,
		burst:    burst,
	}
}

func (self *confirmLimiter) Allow(listingID string) bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	var limiter *rate.Limiter
	v, found := self.limiters.Get(listingID)
	if found {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(self.limit, self.burst)
	}

	// Prolongs expiration on every attempt
	self.limiters.SetDefault(listingID, limiter)

	return limiter.Allow()
}
