// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" or "error". On success Data holds the payload; on
// error Error is populated and Data is null.
//
//	{
//	  "status": "success",
//	  "data": {"city": "Frankfurt", "hosts": ["fra1", "fra2"], ...},
//	  "metadata": {"timestamp": "2026-03-02T12:00:00Z", "query_time_ms": 41}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata reports when the response was produced and whether it came from
// the memo cache. QueryTimeMS is 0 for cache hits.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Codes in use: VALIDATION_ERROR, INVALID_RANGE, NOT_FOUND, DATA_INTEGRITY,
// STORE_UNAVAILABLE, INTERNAL_ERROR, RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
