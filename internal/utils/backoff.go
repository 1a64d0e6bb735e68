package utils

import (
	"context"
	"math/rand"
	"time"
)

// Backoff is exponential with jitter: attempt i waits base*2^(i-1) plus up to
// half of that again, capped at max.
type Backoff struct {
	base       time.Duration
	max        time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return Backoff{base: base, max: 30 * time.Second, maxRetries: maxRetries}
}

func (b Backoff) MaxRetries() int { return b.maxRetries }

// Delay is the wait before retry number attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 0 || b.base <= 0 {
		return 0
	}
	d := b.max
	if attempt < 32 {
		d = b.base << (attempt - 1)
	}
	if d <= 0 || d > b.max {
		d = b.max
	}
	d += time.Duration(rand.Int63n(int64(d)/2 + 1))
	if d > b.max {
		d = b.max
	}
	return d
}

// Do runs fn until it succeeds, returns retry=false, or retries run out.
// Waits are cut short by ctx.
func (b Backoff) Do(ctx context.Context, fn func(attempt int) (retry bool, err error)) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		if i > 0 {
			t := time.NewTimer(b.Delay(i))
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				return err
			}
		}
		var retry bool
		retry, err = fn(i)
		if err == nil || !retry || ctx.Err() != nil {
			return err
		}
	}
	return err
}
