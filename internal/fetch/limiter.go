package fetch

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// adaptiveLimiter wraps a rate.Limiter that backs off when sites answer
// 429. A 2xx response raises the rate by 20% (up to 2x the initial rate);
// a 429 halves it (down to a quarter of the initial rate).
type adaptiveLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	current rate.Limit
	max     rate.Limit
	min     rate.Limit
}

func newAdaptiveLimiter(rps float64) *adaptiveLimiter {
	initial := rate.Limit(rps)
	return &adaptiveLimiter{
		limiter: rate.NewLimiter(initial, 1),
		current: initial,
		max:     initial * 2,
		min:     initial / 4,
	}
}

func (a *adaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func (a *adaptiveLimiter) onSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = min(a.current*1.2, a.max)
	a.limiter.SetLimit(a.current)
}

func (a *adaptiveLimiter) onRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = max(a.current*0.5, a.min)
	a.limiter.SetLimit(a.current)
	zap.L().Debug("fetch: 429 received, reducing request rate",
		zap.Float64("rps", float64(a.current)),
	)
}

func (a *adaptiveLimiter) rate() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}
