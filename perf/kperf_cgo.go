// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build darwin

package perf

/*
#cgo LDFLAGS: -ldl

#include <stdlib.h>
#include <stdint.h>
#include <dlfcn.h>
#include <string.h>

typedef struct kpep_db kpep_db;
typedef struct kpep_config kpep_config;
typedef struct kpep_event kpep_event;

#define KPC_MAX_COUNTERS 32

static uint32_t (*kpc_pmu_version)(void);
static int (*kpc_set_counting)(uint32_t classes);
static int (*kpc_set_thread_counting)(uint32_t classes);
static int (*kpc_get_thread_counters)(uint32_t tid, uint32_t buf_count, uint64_t *buf);

static int (*kpep_config_create)(kpep_db *db, kpep_config **cfg_ptr);
static void (*kpep_config_free)(kpep_config *cfg);
static int (*kpep_config_add_event)(kpep_config *cfg, kpep_event **ev_ptr, uint32_t flag, uint32_t *err);
static int (*kpep_config_remove_event)(kpep_config *cfg, size_t idx);
static int (*kpep_config_events_count)(kpep_config *cfg, size_t *count_ptr);
static int (*kpep_config_kpc_classes)(kpep_config *cfg, uint32_t *classes_ptr);
static int (*kpep_config_apply)(kpep_config *cfg);
static int (*kpep_db_create)(const char *cpu_name, kpep_db **db_ptr);
static int (*kpep_db_event)(kpep_db *db, const char *name, kpep_event **ev_ptr);

#define KPC_PMU_ERROR 0xffffffffu

static int pmubench_kperf_loaded = 0;

#define PMUBENCH_LOAD_SYMBOL(handle, symbol) \
	do { \
		*(void **)&symbol = dlsym(handle, #symbol); \
		if (!symbol) return -1; \
	} while (0)

static int pmubench_kperf_load(void) {
	if (pmubench_kperf_loaded) return 0;

	void *kperf = dlopen("/System/Library/PrivateFrameworks/kperf.framework/kperf", RTLD_LAZY);
	if (!kperf) return -1;
	void *kperfdata = dlopen("/System/Library/PrivateFrameworks/kperfdata.framework/kperfdata", RTLD_LAZY);
	if (!kperfdata) return -1;

	PMUBENCH_LOAD_SYMBOL(kperf, kpc_pmu_version);
	PMUBENCH_LOAD_SYMBOL(kperf, kpc_set_counting);
	PMUBENCH_LOAD_SYMBOL(kperf, kpc_set_thread_counting);
	PMUBENCH_LOAD_SYMBOL(kperf, kpc_get_thread_counters);

	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_config_create);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_config_free);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_config_add_event);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_config_remove_event);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_config_events_count);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_config_kpc_classes);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_config_apply);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_db_create);
	PMUBENCH_LOAD_SYMBOL(kperfdata, kpep_db_event);

	pmubench_kperf_loaded = 1;
	return 0;
}

static kpep_db *pmubench_db = NULL;

static int pmubench_db_load(void) {
	if (pmubench_db) return 0;
	if (pmubench_kperf_load() != 0) return -1;
	if (kpep_db_create(NULL, &pmubench_db) != 0) return -1;
	if (kpc_pmu_version() == KPC_PMU_ERROR) return -1;
	return 0;
}

static kpep_config *pmubench_config_new(void) {
	if (pmubench_db_load() != 0) return NULL;
	kpep_config *cfg = NULL;
	if (kpep_config_create(pmubench_db, &cfg) != 0) return NULL;
	return cfg;
}

static void pmubench_config_free(kpep_config *cfg) {
	if (cfg) kpep_config_free(cfg);
}

// pmubench_config_add_event looks up name in the host's event db and adds it
// to cfg, at whatever index kpep assigns (callers track names in parallel on
// the Go side, in add order).
static int pmubench_config_add_event(kpep_config *cfg, const char *name) {
	kpep_event *ev = NULL;
	if (kpep_db_event(pmubench_db, name, &ev) != 0) return -1;
	return kpep_config_add_event(cfg, &ev, 0, NULL);
}

static int pmubench_config_event_available(const char *name) {
	if (pmubench_db_load() != 0) return 0;
	kpep_event *ev = NULL;
	return kpep_db_event(pmubench_db, name, &ev) == 0 ? 1 : 0;
}

// pmubench_open applies cfg and enables both system- and thread-scoped
// counting for whatever PMC classes the configured events need.
static int pmubench_open(kpep_config *cfg, uint32_t *classes_out) {
	uint32_t classes = 0;
	if (kpep_config_kpc_classes(cfg, &classes) != 0) return -1;
	if (kpep_config_apply(cfg) != 0) return -1;
	if (kpc_set_counting(classes) != 0) return -1;
	if (kpc_set_thread_counting(classes) != 0) return -1;
	*classes_out = classes;
	return 0;
}

static int pmubench_close(void) {
	if (kpc_set_counting(0) != 0) return -1;
	if (kpc_set_thread_counting(0) != 0) return -1;
	return 0;
}

static int pmubench_read_counters(uint64_t *buf, int n) {
	return kpc_get_thread_counters(0, (uint32_t)n, buf);
}
*/
import "C"

import (
	"errors"
	"unsafe"
)

const kpcMaxCounters = int(C.KPC_MAX_COUNTERS)

func cLoadKperf() error {
	if C.pmubench_kperf_load() != 0 {
		return errors.New("perf: failed to load kperf/kperfdata private frameworks")
	}
	return nil
}

func cLoadDB() error {
	if C.pmubench_db_load() != 0 {
		return errors.New("perf: failed to create kpep database for host CPU")
	}
	return nil
}

type cConfig struct {
	ptr *C.kpep_config
}

func cNewConfig() (*cConfig, error) {
	ptr := C.pmubench_config_new()
	if ptr == nil {
		return nil, errors.New("perf: failed to create kpep config")
	}
	return &cConfig{ptr: ptr}, nil
}

func (c *cConfig) free() {
	if c.ptr != nil {
		C.pmubench_config_free(c.ptr)
		c.ptr = nil
	}
}

func (c *cConfig) addEvent(name string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	if C.pmubench_config_add_event(c.ptr, cname) != 0 {
		return errors.New("perf: event " + name + " rejected by kpep config")
	}
	return nil
}

func cEventAvailable(name string) bool {
	if cLoadDB() != nil {
		return false
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.pmubench_config_event_available(cname) != 0
}

func (c *cConfig) open() error {
	var classes C.uint32_t
	if C.pmubench_open(c.ptr, &classes) != 0 {
		return errors.New("perf: failed to apply kpep config and enable counting")
	}
	return nil
}

func cCloseCounting() error {
	if C.pmubench_close() != 0 {
		return errors.New("perf: failed to disable kpc counting")
	}
	return nil
}

func cReadCounters(n int) ([]uint64, error) {
	buf := make([]C.uint64_t, kpcMaxCounters)
	if C.pmubench_read_counters((*C.uint64_t)(unsafe.Pointer(&buf[0])), C.int(kpcMaxCounters)) != 0 {
		return nil, errors.New("perf: kpc_get_thread_counters failed")
	}
	out := make([]uint64, n)
	for i := 0; i < n; i++ {
		out[i] = uint64(buf[i])
	}
	return out, nil
}
