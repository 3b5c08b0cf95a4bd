// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

// Align restricts a and b to the timestamps they have in common. Points
// are matched by timestamp value, never by position, and each output keeps
// its input's order and values.
func Align(a, b Series) (Series, Series) {
	inA := timestampSet(a)
	inB := timestampSet(b)
	return filterSeries(a, inB), filterSeries(b, inA)
}

func timestampSet(s Series) map[int64]struct{} {
	set := make(map[int64]struct{}, len(s.Points))
	for _, p := range s.Points {
		set[p.Timestamp.UnixNano()] = struct{}{}
	}
	return set
}

func filterSeries(s Series, keep map[int64]struct{}) Series {
	out := Series{Name: s.Name, Points: make([]Point, 0, len(s.Points))}
	for _, p := range s.Points {
		if _, ok := keep[p.Timestamp.UnixNano()]; ok {
			out.Points = append(out.Points, p)
		}
	}
	return out
}
