// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		err       error
		wantType  string
	}{
		{"success", "bandwidth_window", nil, ""},
		{"timeout", "load_samples", fmt.Errorf("load_samples: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", "query_selections", context.Canceled, "canceled"},
		{"other", "bandwidth_bounds", errors.New("connection refused"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection := "test_" + tt.name
			RecordDBQuery(tt.operation, collection, 10*time.Millisecond, tt.err)

			h, ok := DBQueryDuration.WithLabelValues(tt.operation, collection).(prometheus.Histogram)
			if !ok {
				t.Fatal("observer is not a histogram")
			}
			if got := testutil.CollectAndCount(h); got != 1 {
				t.Errorf("expected histogram sample, got %d series", got)
			}
			if tt.err == nil {
				return
			}
			if got := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, collection, tt.wantType)); got != 1 {
				t.Errorf("error counter = %v, want 1", got)
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	view := "test_view_lookup"
	RecordCacheLookup(view, true)
	RecordCacheLookup(view, true)
	RecordCacheLookup(view, false)
	RecordSharedResult(view)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues(view)); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues(view)); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheShared.WithLabelValues(view)); got != 1 {
		t.Errorf("shared = %v, want 1", got)
	}
}

func TestCacheGauges(t *testing.T) {
	SetCacheEntries("test_backend", 42)
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("test_backend")); got != 42 {
		t.Errorf("entries = %v, want 42", got)
	}

	RecordCacheEvictions("test_backend", 3)
	RecordCacheEvictions("test_backend", 0)
	if got := testutil.ToFloat64(CacheEvictions.WithLabelValues("test_backend")); got != 3 {
		t.Errorf("evictions = %v, want 3", got)
	}
}

func TestRecordPipeline(t *testing.T) {
	RecordPipeline("test_ok", time.Millisecond, nil)
	RecordPipeline("test_fail", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(PipelineErrors.WithLabelValues("test_fail")); got != 1 {
		t.Errorf("pipeline errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(PipelineErrors.WithLabelValues("test_ok")); got != 0 {
		t.Errorf("successful pipeline counted as error: %v", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestSetTopologySize(t *testing.T) {
	SetTopologySize(24, 13)
	if got := testutil.ToFloat64(TopologyNodes); got != 24 {
		t.Errorf("nodes = %v", got)
	}
	if got := testutil.ToFloat64(TopologyCacheCities); got != 13 {
		t.Errorf("cache cities = %v", got)
	}
}
