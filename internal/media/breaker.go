package media

import (
	"context"
	"errors"
	"image"
	"time"

	"media-preview/internal/logging"
	"media-preview/internal/metrics"

	"github.com/sony/gobreaker/v2"
)

// BreakerSettings tunes the per-provider circuit breakers.
type BreakerSettings struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// Cooldown is how long an open breaker rejects calls before probing again.
	Cooldown time.Duration
}

// DefaultBreakerSettings returns the settings used by NewGenerator.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		Cooldown:            30 * time.Second,
	}
}

// breaker returns the circuit breaker guarding the named provider.
func (g *Generator) breaker(name string) *gobreaker.CircuitBreaker[image.Image] {
	g.breakersMu.Lock()
	defer g.breakersMu.Unlock()

	if b, ok := g.breakers[name]; ok {
		return b
	}

	threshold := g.breakerSettings.ConsecutiveFailures
	b := gobreaker.NewCircuitBreaker[image.Image](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     g.breakerSettings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up says nothing about the provider.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Preview provider %s breaker: %s -> %s", name, from, to)
			metrics.PreviewProviderBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	g.breakers[name] = b
	metrics.PreviewProviderBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return b
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
