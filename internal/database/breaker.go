// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package database

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/metrics"
	"github.com/tomtom215/edgewatch/internal/models"
)

// BreakerRepository wraps a SampleRepository with a circuit breaker so a
// failing store is not hammered by every dashboard request.
//
// The breaker uses real time for its interval and timeout. Tests drive it
// through request counts, not the clock.
type BreakerRepository struct {
	repo SampleRepository
	cb   *gobreaker.CircuitBreaker[any]
	name string
}

var _ SampleRepository = (*BreakerRepository)(nil)

// NewBreakerRepository wraps repo. The breaker opens once at least
// MinRequests calls were seen in the current interval and the failure
// ratio reaches FailureRatio.
func NewBreakerRepository(repo SampleRepository, cfg config.BreakerConfig) *BreakerRepository {
	name := "sample-store"

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= cfg.FailureRatio
			if trip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},

		// A caller giving up is not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerRepository{repo: repo, cb: cb, name: name}
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *BreakerRepository) State() string {
	return stateToString(b.cb.State())
}

func (b *BreakerRepository) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func (b *BreakerRepository) BandwidthSamples(ctx context.Context, w Window) ([]models.BandwidthSample, error) {
	return castResult[[]models.BandwidthSample](b.execute(func() (any, error) {
		return b.repo.BandwidthSamples(ctx, w)
	}))
}

func (b *BreakerRepository) LatestBandwidth(ctx context.Context, limit int) ([]models.BandwidthSample, error) {
	return castResult[[]models.BandwidthSample](b.execute(func() (any, error) {
		return b.repo.LatestBandwidth(ctx, limit)
	}))
}

func (b *BreakerRepository) BandwidthBounds(ctx context.Context) (Bounds, error) {
	return castResult[Bounds](b.execute(func() (any, error) {
		return b.repo.BandwidthBounds(ctx)
	}))
}

func (b *BreakerRepository) LoadSamples(ctx context.Context, w Window, f LoadFilter) ([]models.LoadSample, error) {
	return castResult[[]models.LoadSample](b.execute(func() (any, error) {
		return b.repo.LoadSamples(ctx, w, f)
	}))
}

func (b *BreakerRepository) QuerySelectionSamples(ctx context.Context, w Window) ([]models.QuerySelectionSample, error) {
	return castResult[[]models.QuerySelectionSample](b.execute(func() (any, error) {
		return b.repo.QuerySelectionSamples(ctx, w)
	}))
}

// Ping goes through the breaker so health checks report an open circuit.
func (b *BreakerRepository) Ping(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.repo.Ping(ctx)
	})
	return err
}

// Close closes the wrapped repository directly.
func (b *BreakerRepository) Close() error {
	return b.repo.Close()
}
