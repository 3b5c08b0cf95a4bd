// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package models defines the raw telemetry records read from the sample
// store and the HTTP response envelope.
package models

import (
	"sort"
	"time"
)

// GlobalSeries is the bandwidth column holding total traffic across regions.
const GlobalSeries = "Global"

// OverloadThreshold is the load value at and above which a cache is
// conventionally considered overloaded or offline.
const OverloadThreshold = 100.0

// BandwidthSample is one row of the global bandwidth collection: a
// timestamp and traffic in Gbps per region plus the Global total. Region
// keys use the canonical underscore spelling (North_America).
type BandwidthSample struct {
	Timestamp time.Time          `json:"timestamp"`
	Series    map[string]float64 `json:"series"`
}

// Value returns the traffic for one series.
func (s BandwidthSample) Value(series string) (float64, bool) {
	v, ok := s.Series[series]
	return v, ok
}

// SeriesNames returns the sorted series keys present on the sample.
func (s BandwidthSample) SeriesNames() []string {
	names := make([]string, 0, len(s.Series))
	for k := range s.Series {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadSample is one cache-server load reading. Several samples may share
// a timestamp for the same host.
type LoadSample struct {
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	Host       string    `bson:"host" json:"host"`
	City       string    `bson:"city" json:"city"`
	Region     string    `bson:"region" json:"region"`
	Load       float64   `bson:"load" json:"load"`
	SampleType string    `bson:"type" json:"type"`
}

// QuerySelectionSample is one cache offered in response to a query. Rows
// for the same (Timestamp, QueryID) arrive ranked; only the first few count
// as selected. QueryID doubles as the origin cell of the query.
type QuerySelectionSample struct {
	Timestamp    time.Time `json:"timestamp"`
	QueryID      int       `json:"query_id"`
	OriginCellID int       `json:"origin_cell_id"`
	City         string    `json:"city"`
}
