// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

/*
Package cache memoizes dashboard pipeline results in memory.

Three interchangeable backends implement Cacher:

  - Cache: a TTL map with an optional entry bound and an injectable
    clockwork.Clock ("memory")
  - TTLCache: jellydator/ttlcache ("ttlcache")
  - RistrettoCache: dgraph-io/ristretto with admission control ("ristretto")

Memoizer sits in front of a backend. Do looks a key up, and on a miss runs
the computation once per key no matter how many requests ask for it at the
same time (golang.org/x/sync/singleflight):

	res, cached, err := cache.Do(ctx, memo, "city_load", key, 30*time.Minute,
	    func(ctx context.Context) (*CityLoadResult, error) {
	        return buildCityLoad(ctx, q)
	    })

Keys come from GenerateKey, which hashes the JSON form of the query.

Nothing is persisted. A restart starts with an empty cache, and the
supervisor's janitor service calls Cleanup periodically to drop expired
entries.
*/
package cache
