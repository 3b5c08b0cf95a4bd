// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"sort"
	"strings"

	"github.com/tomtom215/edgewatch/internal/models"
)

// sortedByTime returns a copy of samples ordered by timestamp. The store
// gives no ordering guarantee.
func sortedByTime(samples []models.BandwidthSample) []models.BandwidthSample {
	out := append([]models.BandwidthSample(nil), samples...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// BandwidthSeries extracts one traffic column in chronological order.
// Samples without the column are skipped. Spaces in column are read as
// underscores, so "North America" selects North_America.
func BandwidthSeries(samples []models.BandwidthSample, column string) Series {
	column = strings.ReplaceAll(column, " ", "_")
	s := Series{Name: column, Points: make([]Point, 0, len(samples))}
	for _, b := range sortedByTime(samples) {
		if v, ok := b.Value(column); ok {
			s.Points = append(s.Points, Point{Timestamp: b.Timestamp.UTC(), Value: v})
		}
	}
	return s
}

// SelectBandwidth returns one series per traffic column for the home view.
// With regions empty, every column except Global is returned, plus Global
// when includeGlobal is set. Otherwise only the named regions are returned,
// in the order given.
func SelectBandwidth(samples []models.BandwidthSample, regions []string, includeGlobal bool) []Series {
	var columns []string
	if len(regions) > 0 {
		columns = append(columns, regions...)
	} else {
		present := make(map[string]struct{})
		for _, b := range samples {
			for name := range b.Series {
				if name != models.GlobalSeries {
					present[name] = struct{}{}
				}
			}
		}
		columns = sortedKeys(present)
		if includeGlobal {
			columns = append(columns, models.GlobalSeries)
		}
	}

	ordered := sortedByTime(samples)
	out := make([]Series, 0, len(columns))
	for _, c := range columns {
		out = append(out, BandwidthSeries(ordered, c))
	}
	return out
}
