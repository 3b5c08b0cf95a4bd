// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/edgewatch/internal/metrics"
)

// Memoizer caches pipeline results by key and collapses concurrent
// identical computations into one. Errors are never cached.
type Memoizer struct {
	store Cacher
	group singleflight.Group
}

// NewMemoizer wraps store.
func NewMemoizer(store Cacher) *Memoizer {
	return &Memoizer{store: store}
}

// Store returns the underlying Cacher.
func (m *Memoizer) Store() Cacher {
	return m.store
}

// Invalidate drops every memoized result.
func (m *Memoizer) Invalidate() {
	m.store.Clear()
}

// Do returns the memoized value for key or computes it with fn. cached
// reports whether the value came from the store rather than this call's
// computation.
//
// fn runs detached from ctx cancellation so that one caller giving up does
// not fail the callers sharing its computation; ctx still bounds how long
// this caller waits.
func Do[T any](ctx context.Context, m *Memoizer, view, key string, ttl time.Duration, fn func(context.Context) (T, error)) (value T, cached bool, err error) {
	if v, ok := m.store.Get(key); ok {
		if typed, ok := v.(T); ok {
			metrics.RecordCacheLookup(view, true)
			return typed, true, nil
		}
		// A different type under the same key is a key collision; recompute.
		m.store.Delete(key)
	}
	metrics.RecordCacheLookup(view, false)

	detached := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		v, err := fn(detached)
		if err != nil {
			return nil, err
		}
		m.store.SetWithTTL(key, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.RecordSharedResult(view)
		}
		if res.Err != nil {
			var zero T
			return zero, false, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			var zero T
			return zero, false, fmt.Errorf("memo %s: unexpected result type %T", view, res.Val)
		}
		return typed, false, nil
	}
}
