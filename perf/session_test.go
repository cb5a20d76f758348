// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hwcounters/pmubench/events"
)

func TestSessionLifecycleHappyPath(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.AddEvent(events.Instructions))
	require.Equal(t, 2, s.EventCount())
	require.Equal(t, []string{"cycles", "instructions"}, s.EventNames())

	require.NoError(t, s.Open())
	require.True(t, s.IsOpen())

	require.NoError(t, s.Start())
	require.True(t, s.IsCounting())

	require.NoError(t, s.Stop())
	require.False(t, s.IsCounting())

	counts, err := s.Counters()
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 1}, counts)

	require.NoError(t, s.Close())
	require.False(t, s.IsOpen())
}

func TestSessionAddEventAfterOpenIsError(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Open())
	require.ErrorIs(t, s.AddEvent(events.Instructions), ErrState)
}

func TestSessionStartBeforeOpenIsError(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.ErrorIs(t, s.Start(), ErrState)
}

func TestSessionStopBeforeStartIsError(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Open())
	require.ErrorIs(t, s.Stop(), ErrState)
}

func TestSessionCountersWhileCountingIsLiveSnapshot(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Open())
	require.NoError(t, s.Start())

	counts, err := s.Counters()
	require.NoError(t, err)
	require.Equal(t, []uint64{0}, counts) // not yet Stopped, so no increment
}

func TestSessionDoubleCloseIsNoop(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Open())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestSessionCloseFromConfiguring(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Close())
	require.Equal(t, stateConfiguring, s.st)
}

func TestSessionCloseReturnsToConfiguring(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Open())
	require.NoError(t, s.Close())
	require.False(t, s.IsOpen())

	// Close goes back to Configuring, not a terminal state: the session can
	// be reconfigured and reopened.
	require.NoError(t, s.AddEvent(events.Instructions))
	require.Equal(t, 2, s.EventCount())
	require.NoError(t, s.Open())
	require.True(t, s.IsOpen())
}

func TestSessionFreeIsTerminal(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Open())
	require.NoError(t, s.Free())
	require.False(t, s.IsOpen())
	require.ErrorIs(t, s.AddEvent(events.Instructions), ErrState)
	require.ErrorIs(t, s.Open(), ErrState)

	// Free is idempotent.
	require.NoError(t, s.Free())
}

func TestSessionRemoveAllEvents(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.AddEvent(events.Instructions))
	require.Equal(t, 2, s.EventCount())

	require.NoError(t, s.RemoveAllEvents())
	require.Equal(t, 0, s.EventCount())
	require.Empty(t, s.EventNames())
}

func TestSessionRemoveAllEventsAfterOpenIsError(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.NoError(t, s.AddEvent(events.Cycles))
	require.NoError(t, s.Open())
	require.ErrorIs(t, s.RemoveAllEvents(), ErrState)
	require.Equal(t, 1, s.EventCount())
}

func TestSessionEventAvailableRaw(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	desc, ok := events.SyscallDescriptor(events.Cycles)
	require.True(t, ok)
	require.True(t, s.EventAvailableRaw(desc, "cpu-cycles"))
}

func TestSessionAddEventUnavailableLeavesSessionUsable(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	err := s.AddEvent(events.None)
	require.Error(t, err)
	require.ErrorIs(t, s.LastError(), err)

	// The session is still usable after a failed AddEvent.
	require.NoError(t, s.AddEvent(events.Cycles))
	require.Equal(t, 1, s.EventCount())
}

func TestSessionOpenWithNoEventsFails(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	require.Error(t, s.Open())
	require.False(t, s.IsOpen())
	_, err := s.Counters()
	require.ErrorIs(t, err, ErrState)
}

func TestSessionOpenErrorKeepsConfiguring(t *testing.T) {
	b := &fakeBackend{openErr: errTest}
	s := newTestSession(b)
	require.NoError(t, s.AddEvent(events.Cycles))
	require.Error(t, s.Open())
	// Still configuring: AddEvent should succeed again.
	require.NoError(t, s.AddEvent(events.Instructions))
}

func TestSessionAddEventRaw(t *testing.T) {
	s := newTestSession(&fakeBackend{})
	desc, ok := events.SyscallDescriptor(events.Cycles)
	require.True(t, ok)
	require.NoError(t, s.AddEventRaw(desc, "cpu-cycles"))
	require.Equal(t, []string{"cpu-cycles"}, s.EventNames())
}

var errTest = &stringError{"fake backend open failure"}

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }
