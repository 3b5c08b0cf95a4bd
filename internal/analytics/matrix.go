// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"sort"
	"time"

	"github.com/tomtom215/edgewatch/internal/models"
)

// Point is one timestamped value.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is an ordered sequence of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// Timestamps returns the point timestamps in series order.
func (s Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Timestamp
	}
	return out
}

// Matrix is a dense table indexed by timestamp (rows) and a string key
// (columns). Values[i][j] is the cell for Index[i] and Columns[j]; every
// cell is populated.
type Matrix struct {
	Index   []time.Time `json:"index"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// IsEmpty reports whether the matrix has no rows. Callers show a
// "no data for this period" message instead of charting an empty matrix.
func (m Matrix) IsEmpty() bool {
	return len(m.Index) == 0
}

// ColumnIndex returns the position of name, or -1.
func (m Matrix) ColumnIndex(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column extracts one column as a series.
func (m Matrix) Column(name string) (Series, bool) {
	j := m.ColumnIndex(name)
	if j < 0 {
		return Series{}, false
	}
	s := Series{Name: name, Points: make([]Point, len(m.Index))}
	for i, ts := range m.Index {
		s.Points[i] = Point{Timestamp: ts, Value: m.Values[i][j]}
	}
	return s, true
}

// RowMeans returns the arithmetic mean across columns for every row.
func RowMeans(m Matrix, name string) Series {
	s := Series{Name: name, Points: make([]Point, 0, len(m.Index))}
	if len(m.Columns) == 0 {
		return s
	}
	for i, ts := range m.Index {
		var sum float64
		for _, v := range m.Values[i] {
			sum += v
		}
		s.Points = append(s.Points, Point{Timestamp: ts, Value: sum / float64(len(m.Columns))})
	}
	return s
}

type cellKey struct {
	ts  int64
	col string
}

type accumulator struct {
	sum float64
	n   int
}

// pivotMean groups samples by (timestamp, key(sample)), reduces each group
// to its mean and lays the result out as a dense matrix. Rows are the
// distinct input timestamps in ascending order; columns follow the order
// returned by order, which receives keys in first-seen order. Cells with
// no sample are filled with fill(column position in first-seen order).
func pivotMean(samples []models.LoadSample, key func(models.LoadSample) string, order func([]string) []string, fill func(discovery int) float64) Matrix {
	if len(samples) == 0 {
		return Matrix{Index: []time.Time{}, Columns: []string{}, Values: [][]float64{}}
	}

	cells := make(map[cellKey]*accumulator, len(samples))
	times := make(map[int64]time.Time)
	discovery := make(map[string]int)
	var discovered []string

	for _, s := range samples {
		k := key(s)
		ts := s.Timestamp.UnixNano()
		if _, ok := times[ts]; !ok {
			times[ts] = s.Timestamp.UTC()
		}
		if _, ok := discovery[k]; !ok {
			discovery[k] = len(discovered)
			discovered = append(discovered, k)
		}
		acc := cells[cellKey{ts, k}]
		if acc == nil {
			acc = &accumulator{}
			cells[cellKey{ts, k}] = acc
		}
		acc.sum += s.Load
		acc.n++
	}

	keys := make([]int64, 0, len(times))
	for ts := range times {
		keys = append(keys, ts)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	columns := order(append([]string(nil), discovered...))

	m := Matrix{
		Index:   make([]time.Time, len(keys)),
		Columns: columns,
		Values:  make([][]float64, len(keys)),
	}
	for i, ts := range keys {
		m.Index[i] = times[ts]
		row := make([]float64, len(columns))
		for j, col := range columns {
			if acc := cells[cellKey{ts, col}]; acc != nil {
				row[j] = acc.sum / float64(acc.n)
			} else {
				row[j] = fill(discovery[col])
			}
		}
		m.Values[i] = row
	}
	return m
}

func discoveryOrder(keys []string) []string {
	return keys
}

func lexicalOrder(keys []string) []string {
	sort.Strings(keys)
	return keys
}
