// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package envinfo formats identifying strings about the host and the build
// that produced the running binary — OS, architecture, Go version and
// relevant CPU feature flags — for benchmark result headers. It never
// influences which PMU backend runs; that's decided entirely by build
// tags in package perf.
package envinfo

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/cpu"
)

// OSArch returns a string like "linux/amd64".
func OSArch() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}

// GoVersion returns the Go toolchain version that built this binary, e.g.
// "go1.22.0".
func GoVersion() string {
	return runtime.Version()
}

// CPUFeatures returns a short, platform-specific summary of CPU features
// relevant to this repository's assembly sequences (e.g. whether the
// RDTSCP serializing variant is available on amd64, or which ARM NEON/ASIMD
// extensions are present).
func CPUFeatures() string {
	switch runtime.GOARCH {
	case "amd64":
		return fmt.Sprintf("rdtscp=%v avx=%v avx2=%v", cpu.X86.HasRDTSCP, cpu.X86.HasAVX, cpu.X86.HasAVX2)
	case "arm64":
		return fmt.Sprintf("asimd=%v crc32=%v atomics=%v", cpu.ARM64.HasASIMD, cpu.ARM64.HasCRC32, cpu.ARM64.HasATOMICS)
	default:
		return "unknown"
	}
}

// Summary returns a single-line identification string suitable for a
// benchmark report header.
func Summary() string {
	return fmt.Sprintf("%s %s (%s)", OSArch(), GoVersion(), CPUFeatures())
}
