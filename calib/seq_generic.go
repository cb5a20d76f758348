// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64 && !arm64

package calib

// On targets without a hand-written linear assembly sequence, we fall back
// to one serial dependency chain of scalar adds threaded through four
// variables (each add consumes the previous add's result). The compiler is
// expected to lower each `+=` to a single-cycle integer add when built with
// optimizations on; we don't control that here, so accuracy is reduced
// relative to the asm sequences, not the correctness of the calibration
// itself (see spec's calibrator design notes).
var seqVals [4]uint32

const (
	seqAInstCount = 8192 * 4 * (32 + 64)
	seqBInstCount = 8192 * 4 * 128
)

func runSeqA() {
	loop := 8192
	v1, v2, v3, v4 := seqVals[0], seqVals[1], seqVals[2], seqVals[3]
	for ; loop > 0; loop-- {
		for i := 0; i < 32; i++ {
			v1 += v4
			v2 += v1
			v3 += v2
			v4 += v3
		}
		for i := 0; i < 64; i++ {
			v1 += v4
			v2 += v1
			v3 += v2
			v4 += v3
		}
	}
	seqVals[0] = v1
}

func runSeqB() {
	loop := 8192
	v1, v2, v3, v4 := seqVals[0], seqVals[1], seqVals[2], seqVals[3]
	for ; loop > 0; loop-- {
		for i := 0; i < 128; i++ {
			v1 += v4
			v2 += v1
			v3 += v2
			v4 += v3
		}
	}
	seqVals[0] = v1
}
