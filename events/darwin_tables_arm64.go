// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build arm64

package events

// darwinEventNames maps a portable Kind to the kpep_db event name the
// userspace backend looks up via kpep_db_event, on Apple Silicon. Ported
// from perf_event_to_name's TARGET_CPU_ARM64 branch; names are the
// vendor-published Apple Silicon PMU event names, which vary across chip
// generations, so AddEvent falls back through aliases (see the Darwin
// backend's addEvent in package perf) when the primary name isn't in the db.
var darwinEventNames = map[Kind][]string{
	Cycles:         {"FIXED_CYCLES"},
	Instructions:   {"FIXED_INSTRUCTIONS"},
	Branches:       {"INST_BRANCH"},
	BranchMisses:   {"BRANCH_MISPRED_NONSPEC"},
	L1iLoads:       {"L1I_TAG_ACCESS"},
	L1iLoadMisses:  {"L1I_MISS_DEMAND"},
	L1dLoads:       {"L1D_CACHE_MISS_LD", "L1D_CACHE_MISS_LD_NONSPEC"},
	L1dLoadMisses:  {"L1D_CACHE_MISS_LD_NONSPEC"},
	L1dStores:      {"L1D_CACHE_MISS_ST", "L1D_CACHE_MISS_ST_NONSPEC"},
	L1dStoreMisses: {"L1D_CACHE_MISS_ST_NONSPEC"},
	LlcLoads:       {"L2C_AGU_LD"},
	LlcLoadMisses:  {"L2C_AGU_LD_MISS"},
	LlcStores:      {"L2C_AGU_ST"},
	LlcStoreMisses: {"L2C_AGU_ST_MISS"},
}

// DarwinEventNames returns the candidate kpep event names for k, most
// specific first, or nil if k has no Apple Silicon mapping.
func DarwinEventNames(k Kind) []string { return darwinEventNames[k] }
