// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/edgewatch/internal/analytics"
)

const tsLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func underline(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.Repeat("-", len(h))
	}
	return out
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

// printMatrix prints one row per timestamp and one column per host or
// group.
func printMatrix(w io.Writer, m analytics.Matrix) error {
	tw := newTable(w)
	headers := append([]string{"TIMESTAMP"}, m.Columns...)
	writeRow(tw, headers)
	writeRow(tw, underline(headers))
	for i, ts := range m.Index {
		row := make([]string, 0, len(m.Columns)+1)
		row = append(row, ts.UTC().Format(tsLayout))
		for _, v := range m.Values[i] {
			row = append(row, formatValue(v))
		}
		writeRow(tw, row)
	}
	return tw.Flush()
}

// printSeries prints aligned series side by side. Points are matched by
// timestamp; a series without a point at some timestamp shows "-".
func printSeries(w io.Writer, series ...analytics.Series) error {
	var stamps []time.Time
	seen := make(map[time.Time]bool)
	cells := make([]map[time.Time]float64, len(series))
	headers := []string{"TIMESTAMP"}
	for i, s := range series {
		headers = append(headers, strings.ToUpper(s.Name))
		cells[i] = make(map[time.Time]float64, len(s.Points))
		for _, p := range s.Points {
			cells[i][p.Timestamp] = p.Value
			if !seen[p.Timestamp] {
				seen[p.Timestamp] = true
				stamps = append(stamps, p.Timestamp)
			}
		}
	}
	slices.SortFunc(stamps, time.Time.Compare)

	tw := newTable(w)
	writeRow(tw, headers)
	writeRow(tw, underline(headers))
	for _, ts := range stamps {
		row := []string{ts.UTC().Format(tsLayout)}
		for i := range series {
			if v, ok := cells[i][ts]; ok {
				row = append(row, formatValue(v))
			} else {
				row = append(row, "-")
			}
		}
		writeRow(tw, row)
	}
	return tw.Flush()
}

// printAffinity prints a square heatmap: rows are cache cities, columns
// the origin cities they were offered to.
func printAffinity(w io.Writer, m analytics.AffinityMatrix, ceiling float64) error {
	fmt.Fprintf(w, "%s (ceiling %s)\n", m.Region, formatValue(ceiling))
	tw := newTable(w)
	headers := append([]string{"CACHE/ORIGIN"}, m.Labels...)
	writeRow(tw, headers)
	writeRow(tw, underline(headers))
	for i, label := range m.Labels {
		row := []string{label}
		for _, v := range m.Counts[i] {
			row = append(row, formatValue(v))
		}
		writeRow(tw, row)
	}
	return tw.Flush()
}
