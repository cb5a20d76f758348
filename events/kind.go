// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events defines the portable event-kind enumeration shared by all
// perf.Session backends, plus the bit-packing and per-backend lookup tables
// each backend uses to resolve a Kind to its native descriptor.
package events

// Kind is a closed, portable enumeration of semantic PMU event names. A
// backend resolves each Kind to its own native descriptor; not every Kind is
// resolvable on every host (see perf.Session.EventAvailable).
type Kind int

const (
	None Kind = iota
	Cycles
	Instructions
	Branches
	BranchMisses
	L1iLoads
	L1iLoadMisses
	L1dLoads
	L1dLoadMisses
	L1dStores
	L1dStoreMisses
	LlcLoads
	LlcLoadMisses
	LlcStores
	LlcStoreMisses

	numKinds
)

var kindNames = [numKinds]string{
	None:           "none",
	Cycles:         "cycles",
	Instructions:   "instructions",
	Branches:       "branches",
	BranchMisses:   "branch-misses",
	L1iLoads:       "L1i-loads",
	L1iLoadMisses:  "L1i-load-misses",
	L1dLoads:       "L1d-loads",
	L1dLoadMisses:  "L1d-load-misses",
	L1dStores:      "L1d-stores",
	L1dStoreMisses: "L1d-store-misses",
	LlcLoads:       "LLC-loads",
	LlcLoadMisses:  "LLC-load-misses",
	LlcStores:      "LLC-stores",
	LlcStoreMisses: "LLC-store-misses",
}

// String returns the canonical display name for a Kind, or "unknown-event"
// for a value outside the enumeration.
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown-event"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the named enumeration values (None
// included — None is a placeholder, not an error value, per spec).
func (k Kind) Valid() bool {
	return k >= None && k < numKinds
}

// ParseKind resolves a canonical display name (as returned by Kind.String)
// back to its Kind, for command-line and config parsing.
func ParseKind(name string) (Kind, bool) {
	for k := Kind(0); k < numKinds; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return None, false
}
