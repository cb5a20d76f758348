// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package perf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/hwcounters/pmubench/events"
)

func newPlatformBackend() backend { return &linuxBackend{} }

// linuxBackend counts events via perf_event_open(2). Events are opened as
// a single group so they're scheduled onto the PMU together; the group
// leader's fd is used for enable/disable and for the grouped read.
//
// Unlike a plain PERF_FORMAT_GROUP read, this backend also requests
// PERF_FORMAT_ID and retrieves each fd's kernel-assigned id via
// PERF_EVENT_IOC_ID at open time, then demultiplexes the read buffer by id
// rather than by position. This matters because the kernel is free to
// reorder a group's entries in the read buffer from the order they were
// opened in.
type linuxBackend struct {
	descs []uint64 // packed (type<<32)|config per registered event, in registration order
	fds   []int    // open fds, leader first
	ids   []uint64 // kernel-assigned id per fd, parallel to fds
	files []*os.File

	readBuf []byte
}

func (b *linuxBackend) load() error {
	// There's no global setup beyond what open() does per-session; the
	// perf_event_paranoid check happens lazily on EACCES, matching the
	// teacher's OpenCounter diagnostic.
	return nil
}

func (b *linuxBackend) addEvent(kind events.Kind) (name string, ok bool, err error) {
	desc, ok := events.SyscallDescriptor(kind)
	if !ok {
		return "", false, nil
	}
	b.descs = append(b.descs, desc)
	return kind.String(), true, nil
}

func (b *linuxBackend) addEventRaw(raw uint64, name string) error {
	b.descs = append(b.descs, raw)
	return nil
}

func (b *linuxBackend) removeAllEvents() {
	b.descs = nil
}

func (b *linuxBackend) open() error {
	runtime.LockOSThread()

	success := false
	defer func() {
		if !success {
			runtime.UnlockOSThread()
		}
	}()

	for i, desc := range b.descs {
		typ, config := events.UnpackSyscallDescriptor(desc)

		attr := unix.PerfEventAttr{}
		attr.Size = uint32(unsafe.Sizeof(attr))
		attr.Type = typ
		attr.Config = uint64(config)
		attr.Bits = unix.PerfBitDisabled | unix.PerfBitExcludeKernel | unix.PerfBitExcludeHv

		var groupFd int
		if i == 0 {
			groupFd = -1
			attr.Read_format = unix.PERF_FORMAT_TOTAL_TIME_ENABLED |
				unix.PERF_FORMAT_TOTAL_TIME_RUNNING |
				unix.PERF_FORMAT_GROUP |
				unix.PERF_FORMAT_ID
		} else {
			groupFd = b.fds[0]
			attr.Read_format = unix.PERF_FORMAT_ID
		}

		fd, err := unix.PerfEventOpen(&attr, 0, -1, groupFd, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			if errors.Is(err, syscall.EACCES) {
				err = wrapEACCES(err)
			}
			b.closeFds()
			return fmt.Errorf("perf: opening event %d: %w", i, err)
		}

		var id uint64
		if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.PERF_EVENT_IOC_ID), uintptr(unsafe.Pointer(&id))); errno != 0 {
			unix.Close(fd)
			b.closeFds()
			return fmt.Errorf("perf: reading id for event %d: %w", i, errno)
		}

		b.fds = append(b.fds, fd)
		b.ids = append(b.ids, id)
		b.files = append(b.files, os.NewFile(uintptr(fd), "<perf-event>"))
	}

	// nr (8) + time_enabled (8) + time_running (8), then value/id pairs.
	b.readBuf = make([]byte, 24+len(b.descs)*16)
	success = true
	return nil
}

func wrapEACCES(err error) error {
	const path = "/proc/sys/kernel/perf_event_paranoid"
	data, readErr := os.ReadFile(path)
	data = bytes.TrimSpace(data)
	val, convErr := strconv.Atoi(string(data))
	if readErr != nil || convErr != nil || val > 0 {
		return fmt.Errorf("%w (consider: echo 0 | sudo tee %s)", err, path)
	}
	return err
}

func (b *linuxBackend) closeFds() {
	for _, f := range b.files {
		f.Close()
	}
	b.files = nil
	b.fds = nil
	b.ids = nil
}

func (b *linuxBackend) close() error {
	b.closeFds()
	runtime.UnlockOSThread()
	return nil
}

func (b *linuxBackend) start() error {
	return unix.IoctlSetInt(b.fds[0], unix.PERF_EVENT_IOC_ENABLE, unix.PERF_IOC_FLAG_GROUP)
}

func (b *linuxBackend) stop() error {
	return unix.IoctlSetInt(b.fds[0], unix.PERF_EVENT_IOC_DISABLE, unix.PERF_IOC_FLAG_GROUP)
}

// read decodes a grouped read buffer laid out per PERF_FORMAT_GROUP with
// PERF_FORMAT_TOTAL_TIME_ENABLED|TOTAL_TIME_RUNNING|PERF_FORMAT_ID:
//
//	[0:8]    nr
//	[8:16]   time_enabled
//	[16:24]  time_running
//	[24+i*16 : 24+i*16+8]  value_i
//	[24+i*16+8 : 24+i*16+16] id_i
//
// and demultiplexes by id so the returned slice is in registration order
// regardless of how the kernel orders the group internally.
func (b *linuxBackend) read() ([]uint64, error) {
	const headerSize = 24 // nr + time_enabled + time_running

	buf := b.readBuf
	if _, err := b.files[0].Read(buf); err != nil {
		return nil, err
	}

	nr := binary.NativeEndian.Uint64(buf[0:])
	if int(nr) != len(b.descs) {
		return nil, fmt.Errorf("perf: read returned %d events, expected %d", nr, len(b.descs))
	}

	byID := make(map[uint64]uint64, nr)
	for i := uint64(0); i < nr; i++ {
		off := headerSize + i*16
		value := binary.NativeEndian.Uint64(buf[off:])
		id := binary.NativeEndian.Uint64(buf[off+8:])
		byID[id] = value
	}

	out := make([]uint64, len(b.ids))
	for i, id := range b.ids {
		v, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("perf: no value for event %d (id %d) in read buffer", i, id)
		}
		out[i] = v
	}
	return out, nil
}
