// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfbench reports hardware performance counters as metrics on a
// Go benchmark. It builds directly on package perf's Session, so the same
// code path (and the same graceful degrade-to-nothing behavior on hosts
// without PMU access) is exercised whether it's called from a benchmark or
// from cmd/pmudemo.
package perfbench

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hwcounters/pmubench/events"
	"github.com/hwcounters/pmubench/perf"
)

// defaultKinds is the set of events Open tries to count. Any kind
// unavailable on the host is silently skipped (logged once, not per
// benchmark) rather than failing the whole set.
var defaultKinds = []events.Kind{
	events.Cycles,
	events.Instructions,
	events.Branches,
	events.BranchMisses,
	events.L1dLoads,
	events.L1dLoadMisses,
}

var printUnits = sync.OnceFunc(func() {
	for _, k := range defaultKinds {
		fmt.Printf("Unit %s/op better=lower\n", k)
	}
	fmt.Printf("\n")
})

var openErrors sync.Map

// testingB is the *testing.B interface Counters needs. Kept as an
// interface (rather than depending on *testing.B directly in open) so the
// counting logic itself can be unit-tested without a real benchmark.
type testingB interface {
	ReportMetric(n float64, unit string)
	Logf(format string, args ...any)
	Cleanup(func())
}

// Counters is a set of hardware performance counters reported as metrics
// on a benchmark.
type Counters struct {
	b  testingB
	bN int

	s        *perf.Session
	names    []string
	baseline []uint64
}

// Open starts counting defaultKinds for benchmark b. Counters are reported
// as "name/op" metrics when b finishes, via b.Cleanup.
//
// The counters are running on return. Any calls to b.StopTimer/StartTimer/
// ResetTimer should be paired with the equivalent call on the returned
// Counters.
func Open(b *testing.B) *Counters {
	printUnits()
	return open(b, b.N)
}

func open(b testingB, bN int) *Counters {
	s := perf.NewSession()
	var names []string
	for _, k := range defaultKinds {
		if err := s.AddEvent(k); err != nil {
			msg := fmt.Sprintf("error opening counter %s: %v", k, err)
			if _, seen := openErrors.Swap(msg, true); !seen {
				b.Logf("%s", msg)
			}
			continue
		}
		names = append(names, k.String())
	}

	cs := &Counters{b: b, bN: bN, s: s, names: names, baseline: make([]uint64, len(names))}

	if err := s.Open(); err != nil {
		b.Logf("error opening counter session: %v", err)
	}
	b.Cleanup(cs.close)
	cs.Start()
	return cs
}

// Start (re)starts all counters.
func (cs *Counters) Start() {
	if cs.s.IsOpen() && !cs.s.IsCounting() {
		if err := cs.s.Start(); err != nil {
			cs.b.Logf("error starting counters: %v", err)
		}
	}
}

// Stop stops all counters. Safe to call even if already stopped.
func (cs *Counters) Stop() {
	if cs.s.IsCounting() {
		if err := cs.s.Stop(); err != nil {
			cs.b.Logf("error stopping counters: %v", err)
		}
	}
}

// Reset records the current counter values as a new baseline for Total and
// the final report. Session has no hardware reset primitive that also
// resets scheduling time, so like the underlying library this tracks its
// own baseline instead of resetting the counters themselves.
func (cs *Counters) Reset() {
	vals, err := cs.s.Counters()
	if err != nil {
		cs.b.Logf("error reading counters: %v", err)
		return
	}
	copy(cs.baseline, vals)
}

// Total returns the current value of the named counter since the last
// Reset (or since Open, if Reset was never called), or false if name isn't
// being counted.
func (cs *Counters) Total(name string) (float64, bool) {
	vals, err := cs.s.Counters()
	if err != nil {
		return 0, false
	}
	for i, n := range cs.names {
		if n == name {
			return float64(vals[i] - cs.baseline[i]), true
		}
	}
	return 0, false
}

func (cs *Counters) close() {
	if cs.b == nil {
		return
	}
	cs.Stop()

	vals, err := cs.s.Counters()
	if err != nil {
		cs.b.Logf("error reading final counters: %v", err)
	} else {
		for i, name := range cs.names {
			v := vals[i] - cs.baseline[i]
			if cs.bN > 0 {
				cs.b.ReportMetric(float64(v)/float64(cs.bN), name+"/op")
			}
		}
	}
	cs.s.Close()
	cs.b = nil
}
