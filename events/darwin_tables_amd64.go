// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build amd64

package events

// darwinEventNames maps a portable Kind to the kpep_db event name the
// userspace backend looks up, on Intel Macs. Ported from
// perf_event_to_name's TARGET_CPU_X86_64 branch (pre-defined architectural
// events common across Intel generations kperf ships a db for).
var darwinEventNames = map[Kind][]string{
	Cycles:         {"CPU_CLK_UNHALTED.THREAD"},
	Instructions:   {"INST_RETIRED.ANY"},
	Branches:       {"BR_INST_RETIRED.ALL_BRANCHES"},
	BranchMisses:   {"BR_MISP_RETIRED.ALL_BRANCHES"},
	L1iLoads:       {"L1I.HIT"},
	L1iLoadMisses:  {"L1I.MISSES"},
	L1dLoads:       {"MEM_LOAD_RETIRED.L1_HIT", "MEM_UOPS_RETIRED.ALL_LOADS"},
	L1dLoadMisses:  {"MEM_LOAD_RETIRED.L1_MISS"},
	L1dStores:      {"MEM_UOPS_RETIRED.ALL_STORES"},
	L1dStoreMisses: {"L2_RQSTS.ALL_RFO"},
	LlcLoads:       {"MEM_LOAD_RETIRED.L3_HIT", "LONGEST_LAT_CACHE.REFERENCE"},
	LlcLoadMisses:  {"MEM_LOAD_RETIRED.L3_MISS", "LONGEST_LAT_CACHE.MISS"},
	LlcStores:      {"OFFCORE_REQUESTS.DEMAND_RFO"},
	LlcStoreMisses: {"OFFCORE_REQUESTS_OUTSTANDING.DEMAND_RFO"},
}

// DarwinEventNames returns the candidate kpep event names for k, most
// specific first, or nil if k has no Intel mapping.
func DarwinEventNames(k Kind) []string { return darwinEventNames[k] }
