// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"time"

	"github.com/tomtom215/edgewatch/internal/models"
)

const (
	// offlineSentinelBase is the fill value for the first host discovered.
	offlineSentinelBase = 105.0
	// offlineSentinelStep separates consecutive hosts on the y axis.
	offlineSentinelStep = 2.0

	// FlatOfflineSentinel fills missing hosts when only the mean is charted.
	FlatOfflineSentinel = 100.0
)

// OfflineSentinel returns the fill value for the host at discovery
// position i: 105, 107, 109, ...
func OfflineSentinel(i int) float64 {
	return offlineSentinelBase + offlineSentinelStep*float64(i)
}

// LoadMatrix is the per-host load table for one city.
type LoadMatrix struct {
	Matrix
}

// Timestamps returns the distinct sample timestamps, ascending.
func (m LoadMatrix) Timestamps() []time.Time {
	return m.Index
}

// Hosts returns the hosts in discovery order.
func (m LoadMatrix) Hosts() []string {
	return m.Columns
}

// BuildLoadMatrix reduces duplicate (timestamp, host) samples to their mean
// and pivots them into a timestamp-by-host matrix. Rows are only the
// timestamps that occur in samples. Columns are hosts in the order they
// first appear in samples. A host without a sample at some timestamp gets
// OfflineSentinel(its column position).
func BuildLoadMatrix(samples []models.LoadSample) LoadMatrix {
	return LoadMatrix{
		Matrix: pivotMean(samples, hostKey, discoveryOrder, OfflineSentinel),
	}
}

func hostKey(s models.LoadSample) string {
	return s.Host
}

// ChartHints carries the axis ranges the per-host scatter uses.
type ChartHints struct {
	YMin      float64   `json:"y_min"`
	YMax      float64   `json:"y_max"`
	XStart    time.Time `json:"x_start"`
	XEnd      time.Time `json:"x_end"`
	Threshold float64   `json:"threshold"`
}

// chartXPadding keeps the last scatter column clear of the plot edge; it
// matches the ten-minute sampling cadence.
const chartXPadding = 10 * time.Minute

// LoadChartHints returns axis ranges for a load matrix. The y range leaves
// room for every host's sentinel row above the overload line.
func LoadChartHints(m LoadMatrix) ChartHints {
	h := ChartHints{
		YMax:      float64(len(m.Columns))*offlineSentinelStep + 130,
		Threshold: models.OverloadThreshold,
	}
	if !m.IsEmpty() {
		h.XStart = m.Index[0]
		h.XEnd = m.Index[len(m.Index)-1].Add(chartXPadding)
	}
	return h
}

// MeanChartHints returns axis ranges for a mean-load line chart.
func MeanChartHints(s Series) ChartHints {
	h := ChartHints{YMax: 130, Threshold: models.OverloadThreshold}
	if len(s.Points) > 0 {
		h.XStart = s.Points[0].Timestamp
		h.XEnd = s.Points[len(s.Points)-1].Timestamp.Add(chartXPadding)
	}
	return h
}
