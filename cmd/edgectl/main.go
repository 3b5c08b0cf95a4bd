// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Command edgectl prints dashboard views as text and copies sample windows
// into a local DuckDB replica.
package main

import "os"

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		os.Exit(1)
	}
}
