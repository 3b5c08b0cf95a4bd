// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package database

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when a window's start date is after its end date.
var ErrInvalidRange = errors.New("invalid range: start date is after end date")

const day = 24 * time.Hour

// Window is a closed time interval [Start, End] used to filter samples.
// Windows built from calendar dates cover the whole end day: End is
// midnight after the end date.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds the window for the calendar dates startDate..endDate
// (inclusive). Only the UTC date of each argument is used. The check runs
// before any repository call, so an inverted range never reaches the store.
func NewWindow(startDate, endDate time.Time) (Window, error) {
	s, e := truncateDay(startDate), truncateDay(endDate)
	if s.After(e) {
		return Window{}, fmt.Errorf("%w (%s > %s)", ErrInvalidRange, s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return Window{Start: s, End: e.Add(day)}, nil
}

// ParseWindow parses two YYYY-MM-DD dates and calls NewWindow.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(time.DateOnly, start)
	if err != nil {
		return Window{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	e, err := time.Parse(time.DateOnly, end)
	if err != nil {
		return Window{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	return NewWindow(s, e)
}

// TrailingWindow returns the window of calendar days covering the span
// before now, the default range of the dashboard date pickers.
func TrailingWindow(now time.Time, span time.Duration) Window {
	w, _ := NewWindow(now.Add(-span), now)
	return w
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// StartDate and EndDate return the calendar dates the window was built from.
func (w Window) StartDate() time.Time { return w.Start }

func (w Window) EndDate() time.Time { return w.End.Add(-day) }

// ClampStart moves Start forward to earliest when the window begins
// before it. The end date is never moved, so a window that lies entirely
// before earliest becomes [earliest, earliest] plus one day.
func (w Window) ClampStart(earliest time.Time) Window {
	if earliest.IsZero() {
		return w
	}
	e := truncateDay(earliest)
	if w.Start.Before(e) {
		w.Start = e
	}
	if w.End.Before(w.Start.Add(day)) {
		w.End = w.Start.Add(day)
	}
	return w
}

// String renders the window as calendar dates.
func (w Window) String() string {
	return w.StartDate().Format(time.DateOnly) + ".." + w.EndDate().Format(time.DateOnly)
}
