// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tick provides a monotonic, fixed-frequency, low-overhead tick
// source for benchmark timing, plus a high-resolution wall clock used as
// the reference timebase for calibrating that tick source.
//
// NowTicks reads a hardware counter register where one is available
// (x86 RDTSC; on ARM64 the virtual counter, or the physical counter on
// Apple platforms), uses QueryPerformanceCounter on other Windows targets,
// and falls back to a microsecond wall-time counter everywhere else. It has no failure mode and does not
// itself know the rate at which its return value advances — see package
// calib for that.
package tick

import "time"

// NowTicks returns a monotonic, nondecreasing tick count. Consecutive calls
// from the same goroutine never return a decreasing value. The tick rate is
// fixed but unknown to this package; use package calib to convert ticks to
// seconds or cycles.
//
// NowTicks has no failure mode and is expected to complete in a handful of
// cycles on its primary paths (no syscalls, no branches to speak of).
func NowTicks() uint64 {
	return nowTicks()
}

// NowSeconds returns the current wall-clock time in seconds, with at least
// microsecond resolution. This is a separate timebase from NowTicks and is
// unaffected by the scaling calib discovers for ticks.
func NowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
