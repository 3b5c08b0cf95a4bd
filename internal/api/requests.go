// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/edgewatch/internal/models"
	"github.com/tomtom215/edgewatch/internal/validation"
)

// DateRangeRequest is the optional start/end pair every view accepts.
// Omitted dates fall back to the view's default window.
type DateRangeRequest struct {
	Start string `query:"start" validate:"omitempty,isodate"`
	End   string `query:"end" validate:"omitempty,isodate"`
}

// TrafficRequest holds the /traffic parameters. Regions is the
// comma-separated region list. Global is set by include_global, with
// global accepted as a short alias.
type TrafficRequest struct {
	DateRangeRequest
	Regions []string `query:"region" validate:"max=32,dive,label,max=64"`
	Global  bool     `query:"include_global"`
}

// LatestTrafficRequest holds the /traffic/latest parameters.
type LatestTrafficRequest struct {
	Limit int `query:"limit" validate:"min=0,max=10000"`
}

// CityLoadRequest holds the /load/city parameters.
type CityLoadRequest struct {
	DateRangeRequest
	City    string `query:"city" validate:"required,label,max=64"`
	Overlay bool   `query:"overlay"`
}

// RegionLoadRequest holds the /load/region parameters.
type RegionLoadRequest struct {
	DateRangeRequest
	Region  string `query:"region" validate:"required,label,max=64"`
	Overlay bool   `query:"overlay"`
}

// GroupLoadRequest holds the /load/group parameters.
type GroupLoadRequest struct {
	DateRangeRequest
	GroupBy string `query:"group_by" validate:"required,oneof=region city"`
}

// AffinityRequest holds the /affinity parameters. An empty region
// returns every cache region.
type AffinityRequest struct {
	DateRangeRequest
	Region string `query:"region" validate:"omitempty,label,max=64"`
}

func parseDateRange(r *http.Request) DateRangeRequest {
	q := r.URL.Query()
	return DateRangeRequest{
		Start: strings.TrimSpace(q.Get("start")),
		End:   strings.TrimSpace(q.Get("end")),
	}
}

// dates converts validated dates; empty strings become zero times.
func (d DateRangeRequest) dates() (start, end time.Time) {
	if d.Start != "" {
		start, _ = time.Parse(time.DateOnly, d.Start)
	}
	if d.End != "" {
		end, _ = time.Parse(time.DateOnly, d.End)
	}
	return start, end
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// getBoolParam reads a boolean flag; a bare "?overlay" counts as true.
func getBoolParam(r *http.Request, key string) bool {
	q := r.URL.Query()
	if !q.Has(key) {
		return false
	}
	value := q.Get(key)
	if value == "" {
		return true
	}
	b, err := strconv.ParseBool(value)
	return err == nil && b
}

// getIntParam extracts an integer query parameter. A malformed value is
// reported so the handler can reject it instead of silently defaulting.
func getIntParam(r *http.Request, key string, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, true
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return intValue, true
}

// parseCommaSeparated parses repeated and comma-separated values into a slice
func parseCommaSeparated(values []string) []string {
	var result []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}
