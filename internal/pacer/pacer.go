// Package pacer provides deliberate pacing between sequential external calls.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out sequential operations. Implementations must be safe for
// concurrent use.
type Pacer interface {
	// Wait blocks until the next operation may proceed, or the context
	// is canceled.
	Wait(ctx context.Context) error
}

// Interval is a Pacer that allows one operation per fixed interval, backed
// by a token bucket so the first call in an idle period proceeds
// immediately.
type Interval struct {
	limiter *rate.Limiter
}

// NewInterval creates a Pacer with the given spacing between operations.
// A non-positive interval yields a pacer that never waits.
func NewInterval(interval time.Duration) *Interval {
	if interval <= 0 {
		return &Interval{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Interval{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait implements Pacer.
func (p *Interval) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Nop is a Pacer that never waits. Useful in tests.
type Nop struct{}

// Wait implements Pacer.
func (Nop) Wait(context.Context) error { return nil }
