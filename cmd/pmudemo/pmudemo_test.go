// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"testing"

	"github.com/hwcounters/pmubench/events"
	"github.com/hwcounters/pmubench/perf"
	"github.com/hwcounters/pmubench/perfrand"
)

// TestBranchCurvePeakInPenaltyRange is the headline scenario: the peak
// cycles/branch-miss ratio across the sweep should land in the 10-50 range
// characteristic of a modern core's mispredict penalty. This needs real
// PMU access, which isn't available on every host (sandboxes, containers
// without perf_event_paranoid access, the dummy backend on unsupported
// platforms) — skip rather than fail when the events aren't countable.
func TestBranchCurvePeakInPenaltyRange(t *testing.T) {
	probe := perf.NewSession()
	defer probe.Close()
	if !probe.EventAvailable(events.Cycles) || !probe.EventAvailable(events.BranchMisses) {
		t.Skip("cycles/branch-misses not available on this host")
	}

	if testing.Short() {
		t.Skip("branch-curve sweep runs 201*128 iterations of a 4096-branch kernel; slow for -short")
	}

	samples, err := measureBranchCurve()
	if err != nil {
		t.Skipf("measurement failed (likely sandboxing): %v", err)
	}

	peak := branchCurveRatio(samples)
	if peak < 10 || peak > 50 {
		t.Errorf("peak cycles/branch-miss = %.2f, want in [10, 50]", peak)
	}
}

func TestBranchKernelDeterministic(t *testing.T) {
	// branchKernel itself has no hardware dependency: two runs from a fresh
	// PRNG must draw the same sequence, so both generators end in the same
	// state and produce the same next value.
	for _, threshold := range []int{0, sampleNum / 2, sampleNum} {
		r1, r2 := perfrand.New(), perfrand.New()
		branchKernel(r1, threshold)
		branchKernel(r2, threshold)
		if a, b := r1.Uint32(), r2.Uint32(); a != b {
			t.Errorf("threshold %d: runs diverged, next values %d != %d", threshold, a, b)
		}
	}
}

func TestBranchCurveRatioEmptySamples(t *testing.T) {
	if got := branchCurveRatio(nil); got != 0 {
		t.Errorf("branchCurveRatio(nil) = %v, want 0", got)
	}
}
