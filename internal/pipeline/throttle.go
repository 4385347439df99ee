package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const DefaultDelay = time.Second

// Throttle is consulted between two units of the same country.
type Throttle interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps a constant time after each unit.
type FixedDelay struct {
	Delay time.Duration
}

func (f FixedDelay) Wait(ctx context.Context) error {
	if f.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(f.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TokenBucket allows short bursts while holding the long-run unit rate to
// one per interval.
type TokenBucket struct {
	limiter *rate.Limiter
}

func NewTokenBucket(interval time.Duration, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Every(interval), burst)}
}

func (b *TokenBucket) Wait(ctx context.Context) error { return b.limiter.Wait(ctx) }

// NewThrottle builds a throttle by mode name: fixed or token_bucket.
func NewThrottle(mode string, delay time.Duration) (Throttle, error) {
	switch mode {
	case "", "fixed":
		return FixedDelay{Delay: delay}, nil
	case "token_bucket":
		return NewTokenBucket(delay, 3), nil
	}
	return nil, fmt.Errorf("unknown throttle mode %q", mode)
}
