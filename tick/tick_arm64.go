// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build arm64

package tick

// nowTicksAsm reads the arm64 generic timer: CNTVCT_EL0 everywhere except
// Apple platforms, which use CNTPCT_EL0 (see tick_arm64_apple.s).
func nowTicksAsm() uint64

func nowTicks() uint64 {
	return nowTicksAsm()
}
