// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package perf

import (
	"testing"

	"github.com/hwcounters/pmubench/events"
)

// openRealSession opens a Session against the real syscall backend, or
// skips the test if this host's perf_event_paranoid setting (or sandboxing)
// denies access — the demux logic this exercises doesn't depend on root,
// but plenty of CI and container environments run with perf access locked
// down entirely.
func openRealSession(t *testing.T, kinds ...events.Kind) *Session {
	t.Helper()
	s := NewSession()
	for _, k := range kinds {
		if err := s.AddEvent(k); err != nil {
			t.Skipf("event %v unavailable: %v", k, err)
		}
	}
	if err := s.Open(); err != nil {
		t.Skipf("perf_event_open denied on this host: %v", err)
	}
	return s
}

func TestSessionRealBackendSingleEvent(t *testing.T) {
	s := openRealSession(t, events.Cycles)
	defer s.Close()

	before, err := s.Counters()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1_000_000; i++ {
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	after, err := s.Counters()
	if err != nil {
		t.Fatal(err)
	}
	if after[0] < before[0] {
		t.Fatalf("cycles decreased: before=%d after=%d", before[0], after[0])
	}
}

// TestSessionRealBackendGroupDemux is property 8: values come back attached
// to the right event even though the kernel is free to order a group's
// entries in the read buffer however it likes.
func TestSessionRealBackendGroupDemux(t *testing.T) {
	s := openRealSession(t, events.Cycles, events.Instructions, events.Branches)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1_000_000; i++ {
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	counts, err := s.Counters()
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 3 {
		t.Fatalf("got %d counts, want 3", len(counts))
	}
	// Instructions and branches should both be nonzero after a million-odd
	// loop iterations; cycles is always nonzero once the counter has run.
	for i, name := range s.EventNames() {
		if counts[i] == 0 {
			t.Errorf("event %s (index %d) read back zero", name, i)
		}
	}
}
