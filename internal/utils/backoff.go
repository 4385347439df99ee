package utils

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type Backoff struct {
	base       time.Duration
	maxRetries int
	jitter     time.Duration
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxRetries: maxRetries, jitter: base + base/2}
}

type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err}
}

// Do calls fn until it succeeds, returns a Permanent error, the retries run
// out or ctx is done. Waits grow as base*2^i plus jitter.
func (b Backoff) Do(ctx context.Context, fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		var p permanent
		if errors.As(err, &p) {
			return p.err
		}
		if i == b.maxRetries {
			break
		}
		wait := time.Duration(1<<i) * b.base
		if b.jitter > 0 {
			wait += rand.N(b.jitter)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
	return err
}
