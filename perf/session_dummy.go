// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package perf

import (
	"errors"

	"github.com/hwcounters/pmubench/events"
)

func newPlatformBackend() backend { return &dummyBackend{} }

// errDummyUnavailable is returned by every dummyBackend operation. This
// keeps Session usable (construction, AddEvent failing gracefully) on
// platforms with no PMU access, so benchmark code using Session doesn't
// need a separate build-tagged code path of its own — but every call that
// would otherwise touch hardware counters fails outright, rather than
// silently no-opping.
var errDummyUnavailable = errors.New("perf: no PMU counting facility on this platform")

type dummyBackend struct{}

func (b *dummyBackend) load() error { return errDummyUnavailable }

func (b *dummyBackend) addEvent(kind events.Kind) (name string, ok bool, err error) {
	return "", false, nil
}

func (b *dummyBackend) addEventRaw(raw uint64, name string) error {
	return errDummyUnavailable
}

func (b *dummyBackend) removeAllEvents() {}

func (b *dummyBackend) open() error  { return errDummyUnavailable }
func (b *dummyBackend) close() error { return errDummyUnavailable }
func (b *dummyBackend) start() error { return errDummyUnavailable }
func (b *dummyBackend) stop() error  { return errDummyUnavailable }

func (b *dummyBackend) read() ([]uint64, error) {
	return nil, errDummyUnavailable
}
