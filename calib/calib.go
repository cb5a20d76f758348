// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package calib calibrates the tick source in package tick against wall
// time, and derives a cycles-per-second estimate by differencing two
// instruction sequences of known length.
//
// Calibration has no failure mode: MeasureFreq always produces a value,
// though accuracy degrades under a debugger, an interpreter, or a
// thermally-throttled CPU. Converters (CyclePerTick, TickToSec, TickToCycle)
// are pure functions of the two calibrated globals and return zero before
// the first MeasureFreq call — using them before calibration is a caller
// error with unspecified value, not a panic.
package calib

import (
	"math"
	"sync/atomic"

	"github.com/hwcounters/pmubench/tick"
)

const (
	warmupCount = 8
	sampleCount = 128
)

var (
	ticksPerSecond  atomic.Uint64
	cyclesPerSecond atomic.Uint64
)

// MeasureFreq runs the calibration procedure: warm up, sample 128
// interleaved runs of sequence A and sequence B, and derive ticks-per-second
// (against wall time) and cycles-per-second (by differencing the two
// sequences' minimum tick counts to cancel loop and call overhead).
//
// MeasureFreq blocks for roughly the time it takes to execute
// warmupCount+sampleCount iterations of both sequences — on a modern core
// this is well under a second, but spec'd conservatively at around one
// second of wall time on a 1GHz machine. Not safe to call concurrently with
// itself; callers should call it once from a single thread at startup.
func MeasureFreq() {
	// Warm up: raise the CPU out of power-saving states and prime caches.
	for i := 0; i < warmupCount; i++ {
		runSeqA()
		runSeqB()
	}

	ticksA := make([]uint64, sampleCount)
	ticksB := make([]uint64, sampleCount)

	w0 := tick.NowSeconds()
	t0 := tick.NowTicks()
	for i := 0; i < sampleCount; i++ {
		s1 := tick.NowTicks()
		runSeqA()
		s2 := tick.NowTicks()
		runSeqB()
		s3 := tick.NowTicks()
		ticksA[i] = s2 - s1
		ticksB[i] = s3 - s2
	}
	t1 := tick.NowTicks()
	w1 := tick.NowSeconds()

	totalSeconds := w1 - w0
	totalTicks := t1 - t0
	tps := uint64(float64(totalTicks) / totalSeconds)

	// Noise-robust estimator: preempted or migrated samples inflate ticks,
	// so take the minimum across all samples rather than the mean.
	minA, minB := ticksA[0], ticksB[0]
	for i := 1; i < sampleCount; i++ {
		if ticksA[i] < minA {
			minA = ticksA[i]
		}
		if ticksB[i] < minB {
			minB = ticksB[i]
		}
	}

	// Differencing cancels loop/call overhead shared by both sequences,
	// leaving an estimate of instructions-per-tick for this IPC=1 workload.
	oneTicks := minB - minA
	oneInsts := uint64(seqBInstCount - seqAInstCount)
	var cps uint64
	if oneTicks > 0 {
		cps = uint64(float64(oneInsts) / float64(oneTicks) * float64(tps))
	}

	ticksPerSecond.Store(tps)
	cyclesPerSecond.Store(cps)
}

// CPUFreqHz returns the calibrated cycles-per-second estimate, or zero if
// MeasureFreq has not yet run.
func CPUFreqHz() uint64 { return cyclesPerSecond.Load() }

// TicksPerSec returns the calibrated ticks-per-second estimate, or zero if
// MeasureFreq has not yet run.
func TicksPerSec() uint64 { return ticksPerSecond.Load() }

// CyclePerTick returns cycles-per-second divided by ticks-per-second. Zero
// (not NaN) if MeasureFreq has not yet run, since ticksPerSecond is also
// zero and we guard the division.
func CyclePerTick() float64 {
	tps := ticksPerSecond.Load()
	if tps == 0 {
		return 0
	}
	return float64(cyclesPerSecond.Load()) / float64(tps)
}

// TickToSec converts a tick duration to seconds using the calibrated
// ticks-per-second rate.
func TickToSec(t uint64) float64 {
	tps := ticksPerSecond.Load()
	if tps == 0 {
		return 0
	}
	return float64(t) / float64(tps)
}

// TickToCycle converts a tick duration to an estimated cycle count,
// rounding to the nearest cycle rather than truncating.
func TickToCycle(t uint64) uint64 {
	return uint64(math.Round(float64(t) * CyclePerTick()))
}
