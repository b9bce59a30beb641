package preview

import (
	"context"
	"fmt"
	"time"

	"media-preview/internal/metrics"
)

// Gate bounds how many generations of a kind run at once. Slots come from the
// delegate's semaphore, so they may be shared between processes.
type Gate struct {
	delegate Delegate
}

// NewGate returns a gate that takes limits and slots from d.
func NewGate(d Delegate) *Gate {
	return &Gate{delegate: d}
}

func semaphoreID(kind string) string {
	return "preview:" + kind
}

// Limit returns the configured number of concurrent generations for kind.
func (g *Gate) Limit(kind string) int {
	return g.delegate.NumConcurrentPreviews(KeyConcurrencyPrefix + kind)
}

// Run calls fn while holding one slot of kind. Acquisition blocks until a slot
// frees up or ctx is done. The slot is released on every exit path of fn,
// including panics.
func (g *Gate) Run(ctx context.Context, kind string, fn func() error) error {
	limit := g.Limit(kind)
	if limit <= 0 {
		metrics.PreviewGateRejections.WithLabelValues(kind, "no_limit").Inc()
		return fmt.Errorf("%w: concurrency limit for %q is %d", ErrResourceExhausted, kind, limit)
	}

	start := time.Now()
	token, err := g.delegate.GuardWithSemaphore(ctx, semaphoreID(kind), limit)
	metrics.PreviewGateWaitDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		reason := "limiter_error"
		if ctx.Err() != nil {
			reason = "canceled"
		}
		metrics.PreviewGateRejections.WithLabelValues(kind, reason).Inc()
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}

	metrics.PreviewGateSlotsInUse.WithLabelValues(kind).Inc()
	defer func() {
		metrics.PreviewGateSlotsInUse.WithLabelValues(kind).Dec()
		g.delegate.ReleaseSemaphore(token)
	}()

	return fn()
}
