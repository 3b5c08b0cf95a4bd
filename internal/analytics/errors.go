// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package analytics

import (
	"errors"
	"fmt"
)

// ErrNoData means the window contained no input rows at all. It is distinct
// from a valid result that happens to be empty after filtering.
var ErrNoData = errors.New("no data collected for window")

// ErrUnknownGroupBy is returned for a GroupBy value other than region or city.
var ErrUnknownGroupBy = errors.New("unknown group-by key")

// DataIntegrityError reports a sample that references a cell the topology
// does not know. The derivation is abandoned rather than guessing a city.
type DataIntegrityError struct {
	CellID int
	Err    error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: sample references unknown cell %d: %v", e.CellID, e.Err)
}

func (e *DataIntegrityError) Unwrap() error {
	return e.Err
}
