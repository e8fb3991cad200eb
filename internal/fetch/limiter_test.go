package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	a := newAdaptiveLimiter(10)
	assert.Equal(t, rate.Limit(10), a.rate())

	a.onSuccess()
	assert.InDelta(t, 12.0, float64(a.rate()), 1e-9)

	for range 10 {
		a.onSuccess()
	}
	assert.InDelta(t, 20.0, float64(a.rate()), 1e-9, "capped at 2x")

	for range 10 {
		a.onRateLimit()
	}
	assert.InDelta(t, 2.5, float64(a.rate()), 1e-9, "floored at initial/4")
}

func TestAdaptiveLimiter_Wait(t *testing.T) {
	a := newAdaptiveLimiter(1000)
	require.NoError(t, a.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, a.Wait(ctx))
}
