// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package database reads raw telemetry samples from the sample store.
//
// Two backends implement SampleRepository: MongoRepository over the live
// document store and DuckDBRepository over a local replica file.
// BreakerRepository wraps either one with a circuit breaker. No backend
// guarantees result order, and "no rows" is an empty slice with a nil
// error, never an error of its own.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/edgewatch/internal/models"
)

// ErrUnavailable marks failures caused by the store being unreachable or
// the circuit breaker refusing calls.
var ErrUnavailable = errors.New("sample store unavailable")

// LoadFilter narrows LoadSamples with optional equality filters. Empty
// fields do not filter.
type LoadFilter struct {
	Region     string
	City       string
	Host       string
	SampleType string
}

// Bounds is the first and last bandwidth timestamp in the store. Both are
// zero when the store holds no bandwidth samples.
type Bounds struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

// IsZero reports whether the store was empty.
func (b Bounds) IsZero() bool {
	return b.First.IsZero() && b.Last.IsZero()
}

// SampleRepository is the read-only view of the sample store.
type SampleRepository interface {
	// BandwidthSamples returns global bandwidth rows inside w.
	BandwidthSamples(ctx context.Context, w Window) ([]models.BandwidthSample, error)

	// LatestBandwidth returns up to limit of the most recent bandwidth rows.
	LatestBandwidth(ctx context.Context, limit int) ([]models.BandwidthSample, error)

	// BandwidthBounds returns the time span covered by bandwidth rows.
	BandwidthBounds(ctx context.Context) (Bounds, error)

	// LoadSamples returns cache load rows inside w matching f.
	LoadSamples(ctx context.Context, w Window, f LoadFilter) ([]models.LoadSample, error)

	// QuerySelectionSamples returns cache selection rows inside w, in
	// storage order so the per-query ranking is preserved.
	QuerySelectionSamples(ctx context.Context, w Window) ([]models.QuerySelectionSample, error)

	Ping(ctx context.Context) error
	Close() error
}
