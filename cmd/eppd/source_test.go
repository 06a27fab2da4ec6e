// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"sync"

	"github.com/bureau-foundation/eppd/lib/profile"
)

// fakeSource is a profile.Source driven by the test. Events sent on
// events reach the daemon in order; closing it ends the subscription.
type fakeSource struct {
	current    profile.Profile
	currentErr error
	events     chan profile.Event

	mu     sync.Mutex
	calls  []string
	closed bool
}

func newFakeSource(current profile.Profile) *fakeSource {
	return &fakeSource{current: current, events: make(chan profile.Event, 16)}
}

func (s *fakeSource) Current(ctx context.Context) (profile.Profile, error) {
	s.record("Current")
	return s.current, s.currentErr
}

func (s *fakeSource) Subscribe(ctx context.Context) (<-chan profile.Event, error) {
	s.record("Subscribe")
	return s.events, nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeSource) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
