// Package ratelimit implements a per-key request throttle: per-key
// allowance state held in a shared map accessed under a short lock,
// modeled here as an LRU-bounded set of token-bucket limiters so a
// malicious flood of distinct keys cannot grow the map without bound.
package ratelimit

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Limiter reports whether a request for key is currently allowed via a
// simple check-and-decrement. In this single-process server the check is
// an in-process lock rather than an RPC to a separate manager process,
// since Go workers are goroutines in one process rather than separate
// forked processes.
type Limiter interface {
	Allow(key string) (bool, error)
	Len() int
}

// lruLimiter is the default Limiter: one golang.org/x/time/rate.Limiter per
// key, held in a bounded LRU so the key space cannot be used to exhaust
// memory.
type lruLimiter struct {
	mu             sync.Mutex
	cache          *lru.Cache[string, *rate.Limiter]
	maxRatePerItem int
	bucketSize     int
	cacheLimiter   *rate.Limiter
	cacheRate      int
}

// New constructs a Limiter bounding distinct keys to capacity entries,
// admitting new keys at no more than cacheRate per second, and allowing
// each key maxRatePerItem requests per second (burst equal to the rate).
// maxRatePerItem <= 0 disables throttling entirely, returning a Limiter
// that allows everything.
func New(capacity, cacheRate, maxRatePerItem int) (Limiter, error) {
	if maxRatePerItem <= 0 {
		return noopLimiter{}, nil
	}

	cache, err := lru.New[string, *rate.Limiter](capacity)
	if err != nil {
		return nil, err
	}

	var cacheLimiter *rate.Limiter
	if cacheRate <= 0 {
		cacheLimiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		cacheLimiter = rate.NewLimiter(rate.Limit(cacheRate), cacheRate)
	}

	return &lruLimiter{
		cache:          cache,
		maxRatePerItem: maxRatePerItem,
		bucketSize:     maxRatePerItem,
		cacheLimiter:   cacheLimiter,
		cacheRate:      cacheRate,
	}, nil
}

func (l *lruLimiter) Allow(key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.cache.Get(key)
	if !ok {
		if !l.cacheLimiter.Allow() {
			return false, fmt.Errorf("ratelimit: cache invalidation too fast (max %d new keys/sec)", l.cacheRate)
		}
		limiter = rate.NewLimiter(rate.Limit(l.maxRatePerItem), l.bucketSize)
		l.cache.Add(key, limiter)
		return limiter.Allow(), nil
	}
	return limiter.Allow(), nil
}

func (l *lruLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cache.Len()
}

// noopLimiter allows every request; used when throttling is configured off.
type noopLimiter struct{}

func (noopLimiter) Allow(string) (bool, error) { return true, nil }
func (noopLimiter) Len() int                   { return -1 }
