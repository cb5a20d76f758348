// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !amd64 && !386 && !arm64 && !windows

package tick

import "time"

// nowTicks falls back to a microsecond wall-time counter on architectures
// without a known cheap hardware tick register. Accuracy of anything built
// on package calib is correspondingly reduced (microsecond rather than
// sub-nanosecond resolution), but NowTicks remains monotonic and branch-free
// in the sense that matters: no syscalls beyond what time.Now already does.
func nowTicks() uint64 {
	return uint64(time.Now().UnixMicro())
}
