// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built on first use and shared; it caches
// struct reflection data and is safe for concurrent use. Two custom tags
// are registered:
//
//   - isodate: a YYYY-MM-DD calendar date
//   - label: a region or city name (letters, digits, spaces and _ . ' -)
//
// Field names in messages are taken from the `query` struct tag so errors
// name the URL parameter the client sent:
//
//	type cityLoadParams struct {
//	    City  string `query:"city" validate:"required,label,max=64"`
//	    Start string `query:"start" validate:"omitempty,isodate"`
//	}
//
//	if verr := validation.ValidateStruct(&p); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// ToAPIError produces the VALIDATION_ERROR body: one message and the
// failing field for a single error, or a "fields" list for several.
//
// Cross-field checks such as start <= end are not expressed as tags; they
// run when the window is built so every caller gets the same
// INVALID_RANGE error.
package validation
