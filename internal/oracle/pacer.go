package oracle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Pacer spaces out oracle calls for batch jobs so they stay inside the
// provider's quota. The HTTP server does not use it.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows rps calls per second. A non-positive rps disables pacing.
func NewPacer(rps float64) *Pacer {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until another call is allowed.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Wrap returns an Oracle that waits on the pacer before each call.
func (p *Pacer) Wrap(o Oracle) Oracle {
	return Func(func(ctx context.Context, model, prompt string) (string, error) {
		if err := p.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
		return o.Generate(ctx, model, prompt)
	})
}
