// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perf counts hardware performance events (cycles, instructions,
// branches, cache references) across a region of user-space code, using
// whichever native facility the host provides: perf_event_open on Linux,
// the private kperf/kperfdata frameworks on Apple platforms, and a
// false-everywhere dummy backend elsewhere.
//
// A Session is a small state machine: Configuring, opened-idle,
// opened-counting, and (after Free) a terminal closed state. Close returns
// to Configuring, freeing backend resources but keeping registered events,
// so a Session can be reopened; Free is the terminal teardown. Methods are
// only valid in the states their doc comment names; calling one out of
// order returns ErrState rather than panicking, since a benchmark driver
// may call Stop/Close during cleanup after an earlier error.
package perf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hwcounters/pmubench/events"
)

// state is the Session lifecycle.
type state int

const (
	stateConfiguring state = iota
	stateIdle
	stateCounting
	stateClosed
)

// ErrState is returned when a method is called in a state that doesn't
// support it (e.g. Start before Open, AddEvent after Open).
var ErrState = errors.New("perf: invalid session state for this operation")

// ErrNotLoaded is returned by operations that require the host PMU facility
// to have loaded successfully; see Load.
var ErrNotLoaded = errors.New("perf: PMU facility unavailable on this host")

// backend is implemented once per platform (session_linux.go,
// session_darwin.go, session_dummy.go). All methods execute with the
// Session's mutex held.
type backend interface {
	// load prepares process-wide state (e.g. dlopen'ing a framework,
	// checking perf_event_paranoid). Load calls it once per process, and
	// EventAvailable/EventAvailableRaw call it again on every probe backend,
	// so it must be idempotent. Load's call runs without any Session mutex.
	load() error
	// addEvent registers kind for counting. Returns ok=false if this host
	// can't count kind (not a hard error: the caller decides whether to
	// fall back).
	addEvent(kind events.Kind) (name string, ok bool, err error)
	// addEventRaw registers a raw per-backend descriptor. Interpretation is
	// backend-specific: a packed syscall descriptor on Linux, a kpep event
	// name on Darwin.
	addEventRaw(raw uint64, name string) error
	// removeAllEvents clears every registered event and releases any
	// configuration resources acquired for them. Only called while the
	// Session is in the Configuring state.
	removeAllEvents()
	// open acquires OS resources for all registered events.
	open() error
	// close releases OS resources. Safe to call on a backend that never
	// opened successfully.
	close() error
	// start begins counting.
	start() error
	// stop ends counting.
	stop() error
	// read returns one cumulative count per registered event, in
	// registration order.
	read() ([]uint64, error)
}

// newBackend constructs the platform backend; defined per-file via build
// tags as newPlatformBackend.
func newBackend() backend { return newPlatformBackend() }

var (
	loadOnce sync.Once
	loadErr  error
)

// Load prepares the host's PMU facility for use. It's idempotent and safe
// to call from multiple goroutines; only the first call does any work.
// NewSession calls Load automatically, so most callers never need it
// directly — it's exposed so a program can probe availability once at
// startup (e.g. to print a warning) before opening any sessions.
func Load() error {
	loadOnce.Do(func() {
		loadErr = newBackend().load()
	})
	return loadErr
}

// Session counts a fixed set of hardware events over a region of code. The
// zero value is not usable; construct with NewSession.
type Session struct {
	mu      sync.Mutex
	st      state
	b       backend
	names   []string
	lastErr error
}

// NewSession creates a Session in the Configuring state. It calls Load
// internally; if the host PMU facility is unavailable, NewSession still
// succeeds (the session degrades to counting nothing — see
// EventAvailable), but LastError reports the load failure for diagnostics.
func NewSession() *Session {
	err := Load()
	s := &Session{st: stateConfiguring, b: newBackend()}
	if err != nil {
		s.lastErr = err
	}
	return s
}

// LastError returns the most recent error encountered by this Session, or
// nil. It's retained across calls so a caller that ignores an AddEvent
// return value can still inspect what went wrong later.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// AddEvent registers a portable event kind for counting. Valid only in the
// Configuring state. Returns ErrState if called after Open.
func (s *Session) AddEvent(kind events.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != stateConfiguring {
		return ErrState
	}
	name, ok, err := s.b.addEvent(kind)
	if err != nil {
		s.lastErr = err
		return err
	}
	if !ok {
		err := fmt.Errorf("perf: event %v not available on this host", kind)
		s.lastErr = err
		return err
	}
	s.names = append(s.names, name)
	return nil
}

// EventAvailable reports whether kind can be counted on this host, without
// registering it. Safe to call in any state. On Linux it checks only that
// kind maps to a perf_event_open descriptor; it opens no counter, so a host
// that denies perf_event_open still reports true and the failure surfaces
// at Open.
func (s *Session) EventAvailable(kind events.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	probe := newBackend()
	defer probe.removeAllEvents()
	if err := probe.load(); err != nil {
		return false
	}
	_, ok, err := probe.addEvent(kind)
	return ok && err == nil
}

// AddEventRaw registers a backend-native raw descriptor, bypassing the
// portable Kind enumeration. On Linux this is a packed (type<<32)|config
// syscall descriptor (see events.PackSyscallDescriptor); on Darwin it's
// ignored in favor of name, which must be a kpep event name. Valid only in
// the Configuring state.
func (s *Session) AddEventRaw(raw uint64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != stateConfiguring {
		return ErrState
	}
	if err := s.b.addEventRaw(raw, name); err != nil {
		s.lastErr = err
		return err
	}
	s.names = append(s.names, name)
	return nil
}

// EventAvailableRaw reports whether a backend-native raw descriptor can be
// counted on this host, without registering it. Safe to call in any state.
func (s *Session) EventAvailableRaw(raw uint64, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	probe := newBackend()
	defer probe.removeAllEvents()
	if err := probe.load(); err != nil {
		return false
	}
	return probe.addEventRaw(raw, name) == nil
}

// RemoveAllEvents clears every registered event, releasing any backend
// configuration resources acquired for them. Valid only in the Configuring
// state; returns ErrState and mutates nothing otherwise.
func (s *Session) RemoveAllEvents() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != stateConfiguring {
		return ErrState
	}
	s.b.removeAllEvents()
	s.names = nil
	return nil
}

// EventNames returns the display names of registered events, in
// registration order.
func (s *Session) EventNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// EventCount returns the number of registered events.
func (s *Session) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// Open acquires OS resources for all registered events and transitions to
// the opened-idle state. Valid only in the Configuring state; with no
// registered events Open fails and the Session stays in Configuring.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != stateConfiguring {
		return ErrState
	}
	if len(s.names) == 0 {
		err := errors.New("perf: no events registered")
		s.lastErr = err
		return err
	}
	if err := s.b.open(); err != nil {
		s.lastErr = err
		return err
	}
	s.st = stateIdle
	return nil
}

// IsOpen reports whether the session has been opened and not yet closed.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st == stateIdle || s.st == stateCounting
}

// Start begins counting. Valid in the opened-idle state; calling Start
// again while already counting returns nil and changes nothing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == stateCounting {
		return nil
	}
	if s.st != stateIdle {
		return ErrState
	}
	if len(s.names) > 0 {
		if err := s.b.start(); err != nil {
			s.lastErr = err
			return err
		}
	}
	s.st = stateCounting
	return nil
}

// Stop ends counting and returns to the opened-idle state. Valid only in
// the opened-counting state.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != stateCounting {
		return ErrState
	}
	if len(s.names) > 0 {
		if err := s.b.stop(); err != nil {
			s.lastErr = err
			return err
		}
	}
	s.st = stateIdle
	return nil
}

// IsCounting reports whether the session is currently between Start and
// Stop.
func (s *Session) IsCounting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st == stateCounting
}

// Counters reads the current cumulative counts, one per registered event in
// registration order. Valid in the opened-idle or opened-counting state; a
// read while counting is a live snapshot, not a final value.
func (s *Session) Counters() ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st != stateIdle && s.st != stateCounting {
		return nil, ErrState
	}
	if len(s.names) == 0 {
		return nil, nil
	}
	vals, err := s.b.read()
	if err != nil {
		s.lastErr = err
		return nil, err
	}
	return vals, nil
}

// Close releases OS resources (implicitly stopping counting) and
// transitions back to the Configuring state; registered events are
// retained, so the Session can be reconfigured and Open'd again. Idempotent:
// calling Close from Configuring, or calling it twice, is a no-op that
// returns nil. For a Session that's done for good, call Free instead.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == stateClosed {
		return nil
	}
	var err error
	if s.st == stateIdle || s.st == stateCounting {
		err = s.b.close()
		if err != nil {
			s.lastErr = err
		}
	}
	s.st = stateConfiguring
	return err
}

// Free releases OS resources (as Close does) and transitions to the
// terminal Closed state. A Session must not be used after Free, except for
// further idempotent Free calls. Safe to call from any state.
func (s *Session) Free() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st == stateClosed {
		return nil
	}
	var err error
	if s.st == stateIdle || s.st == stateCounting {
		err = s.b.close()
		if err != nil {
			s.lastErr = err
		}
	}
	s.st = stateClosed
	return err
}
