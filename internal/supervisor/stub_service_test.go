// Edgewatch - CDN Cache Load and Bandwidth Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/edgewatch

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// stubService runs until canceled, optionally failing its first maxFails
// starts.
type stubService struct {
	name       string
	maxFails   int32
	startCount atomic.Int32
	stopCount  atomic.Int32
}

func newStubService(name string, maxFails int) *stubService {
	return &stubService{name: name, maxFails: int32(maxFails)}
}

func (s *stubService) Serve(ctx context.Context) error {
	n := s.startCount.Add(1)
	defer s.stopCount.Add(1)
	if n <= s.maxFails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }
