// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64 || arm64

package calib

func runSeqAAsm()
func runSeqBAsm()

const (
	seqAInstCount = 8192 * (128 + 256)
	seqBInstCount = 8192 * 512
)

func runSeqA() { runSeqAAsm() }
func runSeqB() { runSeqBAsm() }
