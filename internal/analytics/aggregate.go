// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"fmt"

	"github.com/tomtom215/edgewatch/internal/models"
)

// GroupBy selects the topology key used by MeanLoadByGroup.
type GroupBy string

const (
	GroupByRegion GroupBy = "region"
	GroupByCity   GroupBy = "city"
)

// Valid reports whether g is a supported key.
func (g GroupBy) Valid() bool {
	return g == GroupByRegion || g == GroupByCity
}

func (g GroupBy) key() func(models.LoadSample) string {
	if g == GroupByCity {
		return func(s models.LoadSample) string { return s.City }
	}
	return func(s models.LoadSample) string { return s.Region }
}

// MeanLoadByHost pivots samples into a timestamp-by-host matrix, filling
// absent hosts with FlatOfflineSentinel. Feed the result to RowMeans for
// the mean regional load line.
func MeanLoadByHost(samples []models.LoadSample) Matrix {
	return pivotMean(samples, hostKey, discoveryOrder, flatFill)
}

// MeanLoadByGroup averages samples per (timestamp, region) or
// (timestamp, city). Columns are sorted; missing cells are
// FlatOfflineSentinel.
func MeanLoadByGroup(samples []models.LoadSample, groupBy GroupBy) (Matrix, error) {
	if !groupBy.Valid() {
		return Matrix{}, fmt.Errorf("%w: %q", ErrUnknownGroupBy, groupBy)
	}
	return pivotMean(samples, groupBy.key(), lexicalOrder, flatFill), nil
}

func flatFill(int) float64 {
	return FlatOfflineSentinel
}
