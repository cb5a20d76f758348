// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin

package perf

import (
	"errors"

	"github.com/hwcounters/pmubench/events"
)

func newPlatformBackend() backend { return &darwinBackend{} }

// darwinBackend counts events via the private kperf/kperfdata frameworks
// (see kperf_cgo.go). kpc_get_thread_counters reports free-running counters
// that were never reset to zero, so every count is a delta between a begin
// and end snapshot; Open additionally measures a one-shot start/stop
// overhead sample and subtracts it from every subsequent delta, following
// the reference implementation's begin/end/overhead model.
type darwinBackend struct {
	cfg   *cConfig
	names []string

	begin    []uint64
	overhead []uint64
}

func (b *darwinBackend) load() error {
	if err := cLoadKperf(); err != nil {
		return err
	}
	return cLoadDB()
}

// darwinAvailability memoizes per-event-name kpep_db_event lookups: a
// session that probes the same handful of events repeatedly (e.g.
// EventAvailable called once per Kind at startup) shouldn't re-pay the
// lookup cost each time.
var darwinAvailability = events.NewOnceMap(func(name string) (bool, error) {
	return cEventAvailable(name), nil
})

func (b *darwinBackend) addEvent(kind events.Kind) (name string, ok bool, err error) {
	names := events.DarwinEventNames(kind)
	if len(names) == 0 {
		return "", false, nil
	}
	if err := b.ensureConfig(); err != nil {
		return "", false, err
	}
	for _, n := range names {
		avail, _ := darwinAvailability.Get(n)
		if !avail {
			continue
		}
		if err := b.cfg.addEvent(n); err == nil {
			b.names = append(b.names, n)
			return n, true, nil
		}
	}
	return "", false, nil
}

func (b *darwinBackend) addEventRaw(raw uint64, name string) error {
	if err := b.ensureConfig(); err != nil {
		return err
	}
	if err := b.cfg.addEvent(name); err != nil {
		return err
	}
	b.names = append(b.names, name)
	return nil
}

func (b *darwinBackend) removeAllEvents() {
	if b.cfg != nil {
		b.cfg.free()
		b.cfg = nil
	}
	b.names = nil
}

// ensureConfig makes sure b.cfg is non-nil, rebuilding it from b.names if
// Close previously freed it. Close keeps names but not the native config
// handle, so any call that needs a config (addEvent, addEventRaw, open)
// routes through here rather than assuming a fresh backend.
func (b *darwinBackend) ensureConfig() error {
	if b.cfg != nil {
		return nil
	}
	cfg, err := cNewConfig()
	if err != nil {
		return err
	}
	for _, n := range b.names {
		if err := cfg.addEvent(n); err != nil {
			cfg.free()
			return err
		}
	}
	b.cfg = cfg
	return nil
}

func (b *darwinBackend) open() error {
	if len(b.names) == 0 {
		return errors.New("perf: no events registered")
	}
	if err := b.ensureConfig(); err != nil {
		return err
	}
	if err := b.cfg.open(); err != nil {
		return err
	}

	n := len(b.names)
	b.begin = make([]uint64, n)
	b.overhead = make([]uint64, n)

	// One-shot start/stop measures the fixed overhead of the read itself,
	// so later deltas can subtract it out.
	if err := b.start(); err != nil {
		return err
	}
	end, err := cReadCounters(n)
	if err != nil {
		return err
	}
	for i := range b.overhead {
		b.overhead[i] = delta(b.begin[i], end[i])
	}
	return nil
}

func (b *darwinBackend) close() error {
	err := cCloseCounting()
	if b.cfg != nil {
		b.cfg.free()
		b.cfg = nil
	}
	return err
}

func (b *darwinBackend) start() error {
	vals, err := cReadCounters(len(b.names))
	if err != nil {
		return err
	}
	b.begin = vals
	return nil
}

func (b *darwinBackend) stop() error {
	return nil
}

func (b *darwinBackend) read() ([]uint64, error) {
	end, err := cReadCounters(len(b.names))
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(b.names))
	for i := range out {
		d := delta(b.begin[i], end[i])
		if d < b.overhead[i] {
			out[i] = 0
		} else {
			out[i] = d - b.overhead[i]
		}
	}
	return out, nil
}

func delta(begin, end uint64) uint64 {
	return end - begin
}
