package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a fixed pause between consecutive profiles. The pause is
// measured from the end of one profile to the start of the next.
type Pacer struct {
	limit rate.Limit
	lim   *rate.Limiter
}

// NewPacer returns a Pacer that keeps delay between profiles. A zero delay
// never waits.
func NewPacer(delay time.Duration) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{limit: limit, lim: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the pause since the last Mark has elapsed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

// Mark records that a profile just finished.
func (p *Pacer) Mark() {
	p.lim = rate.NewLimiter(p.limit, 1)
	p.lim.Allow()
}
