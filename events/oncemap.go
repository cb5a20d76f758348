// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import "sync"

// OnceMap memoizes the result of a possibly expensive, keyed computation
// (e.g. a kpep_db_event lookup, or a perf_event_open probe) so that callers
// who ask about the same key repeatedly pay for it once per process. Each
// key's new func runs at most once, even under concurrent callers racing
// on a fresh key.
//
// perf/session_darwin.go uses this to cache per-event-name kpep
// availability probes, since EventAvailable may be called once per event
// per benchmark invocation and the underlying dlsym'd lookup isn't free.
type OnceMap[K comparable, V any] struct {
	m   sync.Map /*[K, onceMapEntry[V]]*/
	new func(K) (V, error)
}

type onceMapEntry[V any] struct {
	once sync.Once
	val  V
	err  error
}

// NewOnceMap returns an OnceMap that computes each key's value with new.
func NewOnceMap[K comparable, V any](new func(K) (V, error)) *OnceMap[K, V] {
	return &OnceMap[K, V]{new: new}
}

// Get returns the memoized value for key, computing it via new on first
// access.
func (m *OnceMap[K, V]) Get(key K) (V, error) {
	var ent *onceMapEntry[V]
	entX, ok := m.m.Load(key)
	if ok {
		ent = entX.(*onceMapEntry[V])
	} else {
		ent = new(onceMapEntry[V])
		entX, ok = m.m.LoadOrStore(key, ent)
		if ok {
			ent = entX.(*onceMapEntry[V])
		}
	}

	ent.once.Do(func() {
		ent.val, ent.err = m.new(key)
	})

	return ent.val, ent.err
}
