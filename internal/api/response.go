// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/edgewatch/internal/analytics"
	"github.com/tomtom215/edgewatch/internal/dashboard"
	"github.com/tomtom215/edgewatch/internal/database"
	"github.com/tomtom215/edgewatch/internal/logging"
	"github.com/tomtom215/edgewatch/internal/middleware"
	"github.com/tomtom215/edgewatch/internal/models"
)

// Error codes for API responses
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidRange     = "INVALID_RANGE"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeDataIntegrity    = "DATA_INTEGRITY"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if status == http.StatusOK {
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Header().Set("ETag", generateETag(data))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondData writes a success envelope. cached marks a memo hit, which
// is also signalled in the X-Cache header for the performance monitor.
func respondData(w http.ResponseWriter, data interface{}, cached bool, start time.Time) {
	meta := models.Metadata{Timestamp: time.Now().UTC(), Cached: cached}
	if cached {
		w.Header().Set(middleware.CacheHeader, "HIT")
	} else {
		w.Header().Set(middleware.CacheHeader, "MISS")
		meta.QueryTimeMS = time.Since(start).Milliseconds()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// respondError sends an error response. err, when set, is logged with the
// request id and never shown to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).
			Str("path", r.URL.Path).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Data:     nil,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAPIError sends a prepared error body, such as a validation failure.
func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Data:     nil,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    apiErr,
	})
}

// respondServiceError maps dashboard errors onto statuses. Messages for
// client mistakes echo the error; store and internal failures do not.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var integrity *analytics.DataIntegrityError

	switch {
	case errors.Is(err, database.ErrInvalidRange):
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidRange, err.Error(), nil)
	case errors.Is(err, analytics.ErrUnknownGroupBy):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, dashboard.ErrUnknownScope):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.As(err, &integrity):
		respondError(w, r, http.StatusInternalServerError, ErrCodeDataIntegrity,
			fmt.Sprintf("Samples reference unknown cell %d; check the topology table", integrity.CellID), err)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		logging.Ctx(r.Context()).Debug().Str("path", r.URL.Path).Msg("Request canceled")
	case errors.Is(err, database.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Sample store unavailable", err)
	default:
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Failed to query sample store", err)
	}
}
