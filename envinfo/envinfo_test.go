// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package envinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOSArchHasSlash(t *testing.T) {
	require.Contains(t, OSArch(), "/")
}

func TestGoVersionHasPrefix(t *testing.T) {
	require.True(t, strings.HasPrefix(GoVersion(), "go"))
}

func TestSummaryNonEmpty(t *testing.T) {
	s := Summary()
	require.NotEmpty(t, s)
	require.Contains(t, s, OSArch())
}
