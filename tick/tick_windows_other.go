// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build windows && !amd64 && !arm64 && !386

package tick

import "golang.org/x/sys/windows"

// On Windows targets without a cheap CPU register read (e.g. arm32), fall
// back to the OS high-resolution counter, per spec: Windows non-x86 uses
// QueryPerformanceCounter rather than the microsecond wall clock.
func nowTicks() uint64 {
	var c int64
	windows.QueryPerformanceCounter(&c)
	return uint64(c)
}
