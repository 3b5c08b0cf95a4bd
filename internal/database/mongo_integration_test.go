// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/edgewatch/internal/config"
	"github.com/tomtom215/edgewatch/internal/testinfra"
)

func TestMongoRepository_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testinfra.NewMongoContainer(ctx)
	checkNoError(t, err)
	defer testinfra.CleanupContainer(t, ctx, container)

	repo, err := ConnectMongo(ctx, &config.StoreConfig{
		Backend:             "mongo",
		MongoURI:            container.URI,
		MongoDatabase:       "steam",
		BandwidthCollection: "global_bandwidth",
		CacheCollection:     "cache",
		ConnectTimeout:      5 * time.Second,
		ConnectMaxElapsed:   30 * time.Second,
		QueryTimeout:        10 * time.Second,
	})
	checkNoError(t, err)
	defer closeQuietly(repo)

	_, err = repo.bandwidth.InsertMany(ctx, []any{
		bson.M{"timestamp": at("2024-01-01T00:00:00Z"), "Global": 10.0, "North America": 6.0, "Europe": int32(4)},
		bson.M{"timestamp": at("2024-01-01T00:05:00Z"), "Global": 12.0, "North America": 7.0, "Europe": int32(5)},
		bson.M{"timestamp": at("2024-01-04T00:00:00Z"), "Global": 9.0, "North America": 6.0, "Europe": int32(3)},
	})
	checkNoError(t, err)

	_, err = repo.cache.InsertMany(ctx, []any{
		bson.M{"timestamp": at("2024-01-01T00:00:00Z"), "query_id": 3, "host": "par-1", "city": "Paris", "region": "Europe", "load": 30.0, "type": "SteamCache"},
		bson.M{"timestamp": at("2024-01-01T00:00:00Z"), "query_id": 3, "host": "ams-1", "city": "Amsterdam", "region": "Europe", "load": int32(45), "type": "SteamCache"},
		bson.M{"timestamp": at("2024-01-01T00:00:00Z"), "query_id": 8, "host": "nyc-1", "city": "New York", "region": "North America", "load": 70.0, "type": "SteamCache"},
		bson.M{"timestamp": at("2024-01-01T00:00:00Z"), "query_id": 8.0, "host": "nyc-e", "city": "New York", "region": "North America", "load": 10.0, "type": "Edge"},
		bson.M{"timestamp": at("2024-01-01T00:00:00Z"), "host": "par-2", "city": "Paris", "region": "Europe", "type": "SteamCache"},
		bson.M{"timestamp": at("2024-01-01T00:00:00Z"), "host": "par-3", "city": "Paris", "region": "Europe", "load": nil, "type": "SteamCache"},
	})
	checkNoError(t, err)

	w := mustWindow(t, "2024-01-01", "2024-01-02")

	t.Run("bandwidth window", func(t *testing.T) {
		got, err := repo.BandwidthSamples(ctx, w)
		checkNoError(t, err)
		checkLen(t, "bandwidth", len(got), 2)
		for _, s := range got {
			if _, ok := s.Series["North_America"]; !ok {
				t.Errorf("series keys not canonicalized: %v", s.SeriesNames())
			}
		}
	})

	t.Run("bounds", func(t *testing.T) {
		b, err := repo.BandwidthBounds(ctx)
		checkNoError(t, err)
		want := Bounds{First: at("2024-01-01T00:00:00Z"), Last: at("2024-01-04T00:00:00Z")}
		if diff := cmp.Diff(want, b); diff != "" {
			t.Errorf("bounds mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("latest", func(t *testing.T) {
		got, err := repo.LatestBandwidth(ctx, 1)
		checkNoError(t, err)
		checkLen(t, "latest", len(got), 1)
	})

	t.Run("load samples by region", func(t *testing.T) {
		got, err := repo.LoadSamples(ctx, w, LoadFilter{Region: "North_America", SampleType: "SteamCache"})
		checkNoError(t, err)
		checkLen(t, "load", len(got), 1)
		if len(got) == 1 && (got[0].Host != "nyc-1" || got[0].Region != "North_America" || got[0].Load != 70) {
			t.Errorf("unexpected sample %+v", got[0])
		}
	})

	t.Run("integer load decodes", func(t *testing.T) {
		got, err := repo.LoadSamples(ctx, w, LoadFilter{Host: "ams-1"})
		checkNoError(t, err)
		if len(got) != 1 || got[0].Load != 45 {
			t.Errorf("unexpected samples %+v", got)
		}
	})

	t.Run("samples without load are skipped", func(t *testing.T) {
		got, err := repo.LoadSamples(ctx, w, LoadFilter{City: "Paris"})
		checkNoError(t, err)
		if len(got) != 1 || got[0].Host != "par-1" || got[0].Load != 30 {
			t.Errorf("unexpected samples %+v", got)
		}
	})

	t.Run("query selections", func(t *testing.T) {
		got, err := repo.QuerySelectionSamples(ctx, w)
		checkNoError(t, err)
		checkLen(t, "selections", len(got), 4)
		for _, s := range got {
			if s.OriginCellID != s.QueryID {
				t.Errorf("origin cell %d != query id %d", s.OriginCellID, s.QueryID)
			}
		}
	})

	checkNoError(t, repo.Ping(ctx))
}
