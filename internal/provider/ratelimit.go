package provider

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Default rate limits per provider (requests per second).
var defaultRateLimits = map[ProviderName]rate.Limit{
	NameMusicBrainz:    1,
	NameAcousticBrainz: 1,
	NameDiscogs:        1,
}

// RateLimiterMap holds one rate.Limiter per provider, created once at startup.
type RateLimiterMap struct {
	mu       sync.RWMutex
	limiters map[ProviderName]*rate.Limiter
}

// NewRateLimiterMap creates all provider rate limiters with default rates.
func NewRateLimiterMap() *RateLimiterMap {
	return NewRateLimiterMapWithRates(nil)
}

// NewRateLimiterMapWithRates creates provider rate limiters, overriding the
// defaults with any positive rate in overrides. A negative override disables
// limiting for that provider.
func NewRateLimiterMapWithRates(overrides map[ProviderName]float64) *RateLimiterMap {
	m := &RateLimiterMap{
		limiters: make(map[ProviderName]*rate.Limiter, len(defaultRateLimits)),
	}
	for name, limit := range defaultRateLimits {
		if v, ok := overrides[name]; ok {
			switch {
			case v < 0:
				limit = rate.Inf
			case v > 0:
				limit = rate.Limit(v)
			}
		}
		m.limiters[name] = rate.NewLimiter(limit, 1)
	}
	return m
}

// Limit returns the configured rate for a provider, or rate.Inf when none.
func (m *RateLimiterMap) Limit(name ProviderName) rate.Limit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.limiters[name]; ok {
		return l.Limit()
	}
	return rate.Inf
}

// Wait blocks until the rate limiter for the given provider allows a request,
// or the context is canceled.
func (m *RateLimiterMap) Wait(ctx context.Context, name ProviderName) error {
	m.mu.RLock()
	limiter, ok := m.limiters[name]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
