package utils

import (
	"context"
	"math/rand"
	"time"
)

// Backoff computes exponential retry delays with jitter and an optional cap.
type Backoff struct {
	Base        time.Duration
	Max         time.Duration
	JitterRatio float64
}

// Delay returns the wait before retry number attempt (zero-based).
func (b Backoff) Delay(attempt int) time.Duration {
	base := b.Base
	if base <= 0 {
		base = time.Second // config normalization should prevent this
	}
	if attempt > 30 {
		attempt = 30
	}
	d := base * time.Duration(1<<attempt)
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	jitterRatio := b.JitterRatio
	if jitterRatio < 0 || jitterRatio > 1 {
		jitterRatio = 0.1
	}
	jitter := time.Duration(float64(d) * jitterRatio)
	if jitter <= 0 {
		return d
	}
	return d - jitter + time.Duration(rand.Int63n(int64(2*jitter)+1))
}

// Sleep waits for Delay(attempt) or until ctx is done.
func (b Backoff) Sleep(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
