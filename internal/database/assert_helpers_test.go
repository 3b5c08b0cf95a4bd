// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/edgewatch/internal/config"
)

// checkNoError fails the test if err is not nil
func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// checkLen checks a result length
func checkLen(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d rows, got %d", fieldName, want, got)
	}
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	w, err := ParseWindow(start, end)
	checkNoError(t, err)
	return w
}

// setupTestDB opens an in-memory DuckDB replica with the schema created.
func setupTestDB(t *testing.T) *DuckDBRepository {
	t.Helper()
	repo, err := OpenDuckDB(context.Background(), &config.StoreConfig{
		Backend:       "duckdb",
		DuckDBPath:    ":memory:",
		DuckDBThreads: 1,
		QueryTimeout:  10 * time.Second,
	})
	checkNoError(t, err)
	t.Cleanup(func() { closeQuietly(repo) })
	return repo
}
