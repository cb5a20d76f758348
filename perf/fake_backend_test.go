// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perf

import "github.com/hwcounters/pmubench/events"

// fakeBackend is an in-memory backend for exercising Session's state
// machine and bookkeeping on any GOOS/GOARCH, independent of whether the
// host actually has PMU access.
type fakeBackend struct {
	openErr  error
	startErr error

	opened   bool
	counting bool
	counts   []uint64
}

func (b *fakeBackend) load() error { return nil }

func (b *fakeBackend) addEvent(kind events.Kind) (string, bool, error) {
	if kind == events.None {
		return "", false, nil
	}
	b.counts = append(b.counts, 0)
	return kind.String(), true, nil
}

func (b *fakeBackend) addEventRaw(raw uint64, name string) error {
	b.counts = append(b.counts, raw)
	return nil
}

func (b *fakeBackend) removeAllEvents() {
	b.counts = nil
}

func (b *fakeBackend) open() error {
	if b.openErr != nil {
		return b.openErr
	}
	b.opened = true
	return nil
}

func (b *fakeBackend) close() error {
	b.opened = false
	b.counting = false
	return nil
}

func (b *fakeBackend) start() error {
	if b.startErr != nil {
		return b.startErr
	}
	b.counting = true
	return nil
}

func (b *fakeBackend) stop() error {
	b.counting = false
	// Simulate monotonic counting: every Start/Stop cycle advances each
	// counter by one unit, so tests can assert Counters() changes.
	for i := range b.counts {
		b.counts[i]++
	}
	return nil
}

func (b *fakeBackend) read() ([]uint64, error) {
	out := make([]uint64, len(b.counts))
	copy(out, b.counts)
	return out, nil
}

// newTestSession builds a Session around a fakeBackend, bypassing
// NewSession's platform backend selection and the process-wide Load
// sync.Once (which would otherwise be poisoned by whatever the real
// platform backend's first Load returned).
func newTestSession(b *fakeBackend) *Session {
	return &Session{st: stateConfiguring, b: b}
}
