// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfrand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetIsReproducible(t *testing.T) {
	r := New()
	first := make([]uint32, 10)
	for i := range first {
		first[i] = r.Uint32()
	}

	r.Reset()
	second := make([]uint32, 10)
	for i := range second {
		second[i] = r.Uint32()
	}

	require.Equal(t, first, second)
}

func TestTwoGeneratorsAgree(t *testing.T) {
	a, b := New(), New()
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Uint32(), b.Uint32())
	}
}

func TestUint32UniformInBounds(t *testing.T) {
	r := New()
	for i := 0; i < 10000; i++ {
		v := r.Uint32Uniform(7)
		require.Less(t, v, uint32(7))
	}
}

func TestUint32UniformDegenerateBounds(t *testing.T) {
	r := New()
	require.Equal(t, uint32(0), r.Uint32Uniform(0))
	require.Equal(t, uint32(0), r.Uint32Uniform(1))
}

func TestUint32RangeInclusive(t *testing.T) {
	r := New()
	seen := make(map[uint32]bool)
	for i := 0; i < 10000; i++ {
		v := r.Uint32Range(5, 9)
		require.GreaterOrEqual(t, v, uint32(5))
		require.LessOrEqual(t, v, uint32(9))
		seen[v] = true
	}
	require.Len(t, seen, 5)
}

func TestUint64UniformInBounds(t *testing.T) {
	r := New()
	for i := 0; i < 10000; i++ {
		v := r.Uint64Uniform(1000)
		require.Less(t, v, uint64(1000))
	}
}

func TestUint64ComposesFromTwoUint32(t *testing.T) {
	r1 := New()
	hi := r1.Uint32()
	lo := r1.Uint32()

	r2 := New()
	require.Equal(t, uint64(hi)<<32|uint64(lo), r2.Uint64())
}
