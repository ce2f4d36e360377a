package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out successive calls to an external provider. Wait blocks until
// the next call may proceed or ctx is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

type limiterPacer struct {
	limiter *rate.Limiter
}

// Every returns a Pacer that allows one call per interval. The first call is
// not delayed. A non-positive interval disables pacing.
func Every(interval time.Duration) Pacer {
	if interval <= 0 {
		return NoWait()
	}
	return &limiterPacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *limiterPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

type noWait struct{}

// NoWait returns a Pacer that never blocks.
func NoWait() Pacer {
	return noWait{}
}

func (noWait) Wait(ctx context.Context) error {
	return ctx.Err()
}
