// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kerrors

import "golang.org/x/sys/unix"

// PosixHostTable maps POSIX errno values (as returned by syscalls on the
// backend this repo targets) to kernel error codes. Built once at package
// init and verified ascending by kinit at process startup.
var PosixHostTable = sortedTable([]HostMapping{
	{int64(unix.EACCES), AccessDenied},
	{int64(unix.EADDRINUSE), AlreadyExists},
	{int64(unix.EADDRNOTAVAIL), InvalidAddress},
	{int64(unix.EAFNOSUPPORT), UnknownProtocol},
	{int64(unix.EAGAIN), WouldBlock}, // EAGAIN == EWOULDBLOCK on Linux; one entry covers both
	{int64(unix.EALREADY), NotReady},
	{int64(unix.EBADF), InvalidHandle},
	{int64(unix.ECONNABORTED), ConnectionAborted},
	{int64(unix.ECONNREFUSED), ConnectionRefused},
	{int64(unix.ECONNRESET), ConnectionReset},
	{int64(unix.EEXIST), AlreadyExists},
	{int64(unix.EHOSTUNREACH), HostUnreachable},
	{int64(unix.EINTR), Interrupted},
	{int64(unix.EINVAL), InvalidArguments},
	{int64(unix.EISCONN), AlreadyExists},
	{int64(unix.EMFILE), TooMany},
	{int64(unix.ENETDOWN), NetworkDown},
	{int64(unix.ENETUNREACH), NetworkDown},
	{int64(unix.ENFILE), TooMany},
	{int64(unix.ENOBUFS), OutOfMemory},
	{int64(unix.ENOENT), FileNotFound},
	{int64(unix.ENOMEM), OutOfMemory},
	{int64(unix.ENOPROTOOPT), BadSockOpt},
	{int64(unix.ENOTCONN), NotConnected},
	{int64(unix.ENOTSOCK), InvalidHandle},
	{int64(unix.ENOTSUP), NotSupported},
	{int64(unix.EPROTONOSUPPORT), UnknownProtocol},
	{int64(unix.ETIMEDOUT), Timeout},
})

// WindowsHostTable maps the Winsock/Win32 error codes the original Windows
// backend (CIDKernel_Error_Win32.cpp / CIDKernel_Socket_Win32.cpp) translates.
// This repo does not build a Windows backend (see SPEC_FULL.md, backend
// decision), but the table documents the other face of the abstraction and
// is exercised by tests purely as a second HostTable shape.
var WindowsHostTable = sortedTable([]HostMapping{
	{2, FileNotFound},         // ERROR_FILE_NOT_FOUND
	{3, PathNotFound},         // ERROR_PATH_NOT_FOUND
	{5, AccessDenied},         // ERROR_ACCESS_DENIED
	{6, InvalidHandle},        // ERROR_INVALID_HANDLE
	{8, OutOfMemory},          // ERROR_NOT_ENOUGH_MEMORY
	{87, InvalidArguments},    // ERROR_INVALID_PARAMETER
	{122, InsufficientBuffer}, // ERROR_INSUFFICIENT_BUFFER
	{183, AlreadyExists},      // ERROR_ALREADY_EXISTS
	{1460, Timeout},           // ERROR_TIMEOUT
	{10004, Interrupted},      // WSAEINTR
	{10035, WouldBlock},       // WSAEWOULDBLOCK
	{10036, NotReady},         // WSAEINPROGRESS
	{10037, NotReady},         // WSAEALREADY
	{10047, UnknownProtocol},  // WSAEAFNOSUPPORT
	{10053, ConnectionAborted},// WSAECONNABORTED
	{10054, ConnectionReset},  // WSAECONNRESET
	{10057, NotConnected},     // WSAENOTCONN
	{10060, Timeout},          // WSAETIMEDOUT
	{10061, ConnectionRefused},// WSAECONNREFUSED
	{10065, HostUnreachable},  // WSAEHOSTUNREACH
})
