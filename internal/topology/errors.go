// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package topology

import (
	"errors"
	"fmt"
)

// ErrCellNotFound is returned by lookups for a cell id the registry does
// not know. Once the registry has loaded, callers should treat this as a
// data integrity problem upstream, not as a missing-data condition.
var ErrCellNotFound = errors.New("cell not found in topology")

// ConfigurationError reports a malformed topology source and is fatal at
// startup. Entry is the zero-based position in the table, or -1 when the
// error concerns the table as a whole.
type ConfigurationError struct {
	Source string
	Entry  int
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Entry < 0:
		return fmt.Sprintf("topology %s: %s", e.Source, e.Reason)
	case e.Field == "":
		return fmt.Sprintf("topology %s: entry %d: %s", e.Source, e.Entry, e.Reason)
	default:
		return fmt.Sprintf("topology %s: entry %d: field %q: %s", e.Source, e.Entry, e.Field, e.Reason)
	}
}
