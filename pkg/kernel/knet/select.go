// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package knet

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
	"github.com/antimetal/oskernel/pkg/kernel/ktime"
)

// SelectFlags is a bitmask of the readiness conditions MultiSelect and
// MultiReadSelect report per item.
type SelectFlags uint32

const (
	SelectNone SelectFlags = 0
)

const (
	SelectRead SelectFlags = 1 << iota
	SelectWrite
	SelectExcept
	SelectMaxIdle
)

// MultiSelectItem pairs a socket with the readiness flags most recently
// observed for it and the last time a message was seen on it, which
// MultiSelect's idle sweep uses to flag long-silent connections.
type MultiSelectItem struct {
	Socket      *Socket
	LastMsgTime ktime.Stamp
	Flags       SelectFlags
}

// fd extracts the raw file descriptor behind a socket's wrapped net.Conn,
// needed because unix.Poll operates on descriptors, not net.Conn values.
func fd(s *Socket) (int, error) {
	var sc syscall.Conn
	switch {
	case s.conn != nil:
		sc, _ = s.conn.(syscall.Conn)
	case s.pktConn != nil:
		sc, _ = s.pktConn.(syscall.Conn)
	}
	if sc == nil {
		return -1, kerrors.New(kerrors.InvalidHandle, 0, "socket has no underlying file descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, translateNetError(err)
	}
	var fdOut int
	ctrlErr := raw.Control(func(d uintptr) { fdOut = int(d) })
	if ctrlErr != nil {
		return -1, translateNetError(ctrlErr)
	}
	return fdOut, nil
}

// MultiSelect polls every item's socket for read/write/except readiness,
// updating each item's Flags in place, and returns the count of items whose
// flags changed from SelectNone. Zero changed items is not an error.
//
// maxIdle, if non-zero, additionally sets SelectMaxIdle on any item whose
// LastMsgTime is older than now - maxIdle, regardless of poll readiness.
func MultiSelect(items []*MultiSelectItem, timeout time.Duration, maxIdle time.Duration) (int, error) {
	pollFds := make([]unix.PollFd, 0, len(items))
	indexOf := make([]int, 0, len(items))

	for i, item := range items {
		descriptor, err := fd(item.Socket)
		if err != nil {
			continue
		}
		pollFds = append(pollFds, unix.PollFd{Fd: int32(descriptor), Events: unix.POLLIN | unix.POLLOUT})
		indexOf = append(indexOf, i)
	}

	for i := range items {
		items[i].Flags = SelectNone
	}

	if len(pollFds) > 0 {
		_, err := unix.Poll(pollFds, int(timeout.Milliseconds()))
		if err != nil && err != unix.EINTR {
			return 0, translateNetError(err)
		}
		for j, pf := range pollFds {
			var flags SelectFlags
			if pf.Revents&unix.POLLIN != 0 {
				flags |= SelectRead
			}
			if pf.Revents&unix.POLLOUT != 0 {
				flags |= SelectWrite
			}
			if pf.Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
				flags |= SelectExcept
			}
			items[indexOf[j]].Flags = flags
		}
	}

	changed := 0
	if maxIdle > 0 {
		cutoff := ktime.Now().Add(-ktime.Stamp(maxIdle.Nanoseconds() / 100))
		for _, item := range items {
			if item.LastMsgTime < cutoff {
				item.Flags |= SelectMaxIdle
			}
		}
	}
	for _, item := range items {
		if item.Flags != SelectNone {
			changed++
		}
	}
	return changed, nil
}

// MultiReadSelect is MultiSelect restricted to read-readiness only,
// convenient for the common "wake me when any of these sockets has data"
// pattern.
func MultiReadSelect(items []*MultiSelectItem, timeout time.Duration) (int, error) {
	pollFds := make([]unix.PollFd, 0, len(items))
	indexOf := make([]int, 0, len(items))

	for i, item := range items {
		descriptor, err := fd(item.Socket)
		if err != nil {
			continue
		}
		pollFds = append(pollFds, unix.PollFd{Fd: int32(descriptor), Events: unix.POLLIN})
		indexOf = append(indexOf, i)
	}
	for i := range items {
		items[i].Flags = SelectNone
	}
	if len(pollFds) == 0 {
		return 0, nil
	}

	_, err := unix.Poll(pollFds, int(timeout.Milliseconds()))
	if err != nil && err != unix.EINTR {
		return 0, translateNetError(err)
	}

	changed := 0
	for j, pf := range pollFds {
		if pf.Revents&unix.POLLIN != 0 {
			items[indexOf[j]].Flags = SelectRead
			changed++
		}
	}
	return changed, nil
}
