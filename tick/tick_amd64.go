// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64

package tick

// nowTicksAsm reads the x86 timestamp counter (RDTSC).
func nowTicksAsm() uint64

func nowTicks() uint64 {
	return nowTicksAsm()
}
