// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/metrics"
)

// Pinger checks that the sample store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreProbeService pings the sample store on an interval, publishes the
// result as store_reachable and logs when reachability changes.
type StoreProbeService struct {
	store    Pinger
	interval time.Duration
	timeout  time.Duration
	clock    clockwork.Clock

	reachable *bool
}

// NewStoreProbeService probes every interval (30s when not positive), each
// ping bounded by timeout (5s when not positive). clock may be nil.
func NewStoreProbeService(store Pinger, interval, timeout time.Duration, clock clockwork.Clock) *StoreProbeService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StoreProbeService{store: store, interval: interval, timeout: timeout, clock: clock}
}

// Serve implements suture.Service. The first probe runs immediately.
func (p *StoreProbeService) Serve(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			p.probe(ctx)
		}
	}
}

func (p *StoreProbeService) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.store.Ping(pingCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	ok := err == nil
	metrics.SetStoreReachable(ok)

	if p.reachable != nil && *p.reachable == ok {
		return
	}
	if ok {
		logging.Info().Msg("Sample store reachable")
	} else {
		logging.Warn().Err(err).Msg("Sample store unreachable")
	}
	p.reachable = &ok
}

// Reachable reports the last probe result and whether any probe has run.
// It is only safe to call when Serve is not running.
func (p *StoreProbeService) Reachable() (reachable, probed bool) {
	if p.reachable == nil {
		return false, false
	}
	return *p.reachable, true
}

// String implements fmt.Stringer for logging.
func (p *StoreProbeService) String() string {
	return "store-probe"
}
