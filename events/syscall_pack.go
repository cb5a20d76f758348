// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

// These constants mirror <linux/perf_event.h>'s PERF_TYPE_* and
// PERF_COUNT_HW_CACHE_{L1D,L1I,LL,OP_READ,OP_WRITE,RESULT_ACCESS,RESULT_MISS}.
// They're declared here (rather than only behind the linux build tag) so
// that PackSyscallDescriptor/PackCacheConfig — and tests for them — build on
// every platform; only perf/session_linux.go actually issues the syscall.
const (
	PerfTypeHardware = 0
	PerfTypeSoftware = 1
	PerfTypeHWCache  = 3

	cacheL1D = 0
	cacheL1I = 1
	cacheLL  = 2

	cacheOpRead  = 0
	cacheOpWrite = 1

	cacheResultAccess = 0
	cacheResultMiss   = 1
)

// PackSyscallDescriptor packs a (type, config) pair into the 64-bit
// descriptor format the syscall backend's AddEventRawSyscall accepts:
// (type<<32)|(config&0xFFFFFFFF). This bit layout is wire-compatible with
// the kernel's perf_event_open ABI and must be preserved exactly.
func PackSyscallDescriptor(typ uint32, config uint32) uint64 {
	return uint64(typ)<<32 | uint64(config)
}

// PackCacheConfig packs a cache id/op/result triple into the config half of
// a HW_CACHE descriptor: id | (op<<8) | (result<<16).
func PackCacheConfig(id, op, result uint8) uint32 {
	return uint32(id) | uint32(op)<<8 | uint32(result)<<16
}

// UnpackSyscallDescriptor splits a packed descriptor back into its type and
// config halves.
func UnpackSyscallDescriptor(d uint64) (typ uint32, config uint32) {
	return uint32(d >> 32), uint32(d)
}

// syscallDescriptor resolves a Kind to its Linux perf_event_open (type,
// config) descriptor. Ported from original_source/src/yybench_perf.c's
// perf_event_conv, restricted to the portable Kinds.
func syscallDescriptor(k Kind) (desc uint64, ok bool) {
	switch k {
	case Cycles:
		return PackSyscallDescriptor(PerfTypeHardware, 0), true // PERF_COUNT_HW_CPU_CYCLES
	case Instructions:
		return PackSyscallDescriptor(PerfTypeHardware, 1), true // PERF_COUNT_HW_INSTRUCTIONS
	case Branches:
		return PackSyscallDescriptor(PerfTypeHardware, 4), true // PERF_COUNT_HW_BRANCH_INSTRUCTIONS
	case BranchMisses:
		return PackSyscallDescriptor(PerfTypeHardware, 5), true // PERF_COUNT_HW_BRANCH_MISSES
	case L1iLoads:
		return cacheDescriptor(cacheL1I, cacheOpRead, cacheResultAccess), true
	case L1iLoadMisses:
		return cacheDescriptor(cacheL1I, cacheOpRead, cacheResultMiss), true
	case L1dLoads:
		return cacheDescriptor(cacheL1D, cacheOpRead, cacheResultAccess), true
	case L1dLoadMisses:
		return cacheDescriptor(cacheL1D, cacheOpRead, cacheResultMiss), true
	case L1dStores:
		return cacheDescriptor(cacheL1D, cacheOpWrite, cacheResultAccess), true
	case L1dStoreMisses:
		return cacheDescriptor(cacheL1D, cacheOpWrite, cacheResultMiss), true
	case LlcLoads:
		return cacheDescriptor(cacheLL, cacheOpRead, cacheResultAccess), true
	case LlcLoadMisses:
		return cacheDescriptor(cacheLL, cacheOpRead, cacheResultMiss), true
	case LlcStores:
		return cacheDescriptor(cacheLL, cacheOpWrite, cacheResultAccess), true
	case LlcStoreMisses:
		return cacheDescriptor(cacheLL, cacheOpWrite, cacheResultMiss), true
	default:
		return 0, false
	}
}

func cacheDescriptor(id, op, result uint8) uint64 {
	return PackSyscallDescriptor(PerfTypeHWCache, PackCacheConfig(id, op, result))
}

// SyscallDescriptor is the exported form of syscallDescriptor, used by
// perf/session_linux.go and by tests outside the package.
func SyscallDescriptor(k Kind) (desc uint64, ok bool) { return syscallDescriptor(k) }

// SyscallEventName reverse-maps a packed descriptor to a display name,
// ported from original_source's perf_event_get_name. Covers HARDWARE,
// SOFTWARE and HW_CACHE, including TLB/BPU/node categories the portable
// Kind enumeration doesn't itself name, for completeness when displaying
// raw-added events.
func SyscallEventName(desc uint64) string {
	typ, cfg := UnpackSyscallDescriptor(desc)
	switch typ {
	case PerfTypeHardware:
		switch cfg {
		case 0:
			return "cpu-cycles"
		case 1:
			return "instructions"
		case 2:
			return "cache-references"
		case 3:
			return "cache-misses"
		case 4:
			return "branches"
		case 5:
			return "branch-misses"
		case 6:
			return "bus-cycles"
		case 7:
			return "stalled-cycles-frontend"
		case 8:
			return "stalled-cycles-backend"
		case 9:
			return "ref-cycles"
		default:
			return "unknown-hardware-event"
		}
	case PerfTypeSoftware:
		switch cfg {
		case 0:
			return "cpu-clock"
		case 1:
			return "task-clock"
		case 2:
			return "page-faults"
		case 3:
			return "context-switches"
		case 4:
			return "cpu-migrations"
		case 5:
			return "page-faults-min"
		case 6:
			return "page-faults-maj"
		case 7:
			return "alignment-faults"
		case 8:
			return "emulation-faults"
		case 9:
			return "dummy"
		case 10:
			return "bpf-output"
		default:
			return "unknown-software-event"
		}
	case PerfTypeHWCache:
		return cacheEventName(cfg)
	case 4: // PERF_TYPE_RAW
		return "raw"
	default:
		return "unknown"
	}
}

var cacheIDNames = map[uint8]string{0: "L1d", 1: "L1i", 2: "LLC", 3: "DTLB", 4: "ITLB", 5: "BPU", 6: "node"}
var cacheOpNames = map[uint8]string{0: "read", 1: "write", 2: "prefetch"}
var cacheResultNames = map[uint8]string{0: "", 1: "-misses"}

func cacheEventName(cfg uint32) string {
	id := uint8(cfg)
	op := uint8(cfg >> 8)
	result := uint8(cfg >> 16)
	idName, ok := cacheIDNames[id]
	if !ok {
		return "unknown-cache-event"
	}
	opName, ok := cacheOpNames[op]
	if !ok {
		return "unknown-cache-event"
	}
	return idName + "-" + opName + cacheResultNames[result]
}
