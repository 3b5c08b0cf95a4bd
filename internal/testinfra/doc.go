// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package testinfra provides container helpers for integration tests.
//
// It uses testcontainers-go to run a real MongoDB so the document store
// backend is tested against the server it talks to in production:
//
//	func TestMongoRepository(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo)
//
//	    repo, err := database.ConnectMongo(ctx, &config.StoreConfig{MongoURI: mongo.URI, ...})
//	    // ...
//	}
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
package testinfra
