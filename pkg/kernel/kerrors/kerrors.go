// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package kerrors implements the kernel's closed error taxonomy and the
// host-errno to kernel-error mapping table, plus a per-goroutine last-error
// context rather than ambient thread-local storage.
//
// Go has no thread-local storage, so there is no way to fault in an ErrorInfo
// keyed implicitly by "the calling thread". Instead, code that wants
// last-error semantics constructs its own *Context once (one per goroutine
// it cares about) and threads it explicitly, matching the explicit-handle
// strategy used by the per-thread slot registry.
package kerrors

import (
	"errors"
	"fmt"
	"sort"
)

// As, Is, Join, and Unwrap re-export the standard library so callers never
// need a second import for ordinary error composition alongside this
// package's taxonomy.
var (
	As     = errors.As
	Is     = errors.Is
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// ErrorCode is the closed kernel-error enumeration exported by this core.
type ErrorCode uint32

const (
	NoError ErrorCode = iota
	FileNotFound
	PathNotFound
	AccessDenied
	InvalidHandle
	OutOfMemory
	InvalidFormat
	InvalidData
	InvalidArguments
	BufferOverflow
	InsufficientBuffer
	Timeout
	NotSupported
	NotFound
	AlreadyExists
	NegativeResult
	PossibleDeadlock
	ConnectionReset
	ConnectionAborted
	ConnectionRefused
	HostUnreachable
	NetworkDown
	NotConnected
	Interrupted
	WouldBlock
	Full
	TooMany
	InvalidAddress
	InvalidAddrString
	UnknownProtocol
	BadSockOpt
	InvalidDrive
	NotReady
	GenFailure
	HostError
)

var codeNames = map[ErrorCode]string{
	NoError:            "NoError",
	FileNotFound:       "FileNotFound",
	PathNotFound:       "PathNotFound",
	AccessDenied:       "AccessDenied",
	InvalidHandle:      "InvalidHandle",
	OutOfMemory:        "OutOfMemory",
	InvalidFormat:      "InvalidFormat",
	InvalidData:        "InvalidData",
	InvalidArguments:   "InvalidArguments",
	BufferOverflow:     "BufferOverflow",
	InsufficientBuffer: "InsufficientBuffer",
	Timeout:            "Timeout",
	NotSupported:       "NotSupported",
	NotFound:           "NotFound",
	AlreadyExists:      "AlreadyExists",
	NegativeResult:     "NegativeResult",
	PossibleDeadlock:   "PossibleDeadlock",
	ConnectionReset:    "ConnectionReset",
	ConnectionAborted:  "ConnectionAborted",
	ConnectionRefused:  "ConnectionRefused",
	HostUnreachable:    "HostUnreachable",
	NetworkDown:        "NetworkDown",
	NotConnected:       "NotConnected",
	Interrupted:        "Interrupted",
	WouldBlock:         "WouldBlock",
	Full:               "Full",
	TooMany:            "TooMany",
	InvalidAddress:     "InvalidAddress",
	InvalidAddrString:  "InvalidAddrString",
	UnknownProtocol:    "UnknownProtocol",
	BadSockOpt:         "BadSockOpt",
	InvalidDrive:       "InvalidDrive",
	NotReady:           "NotReady",
	GenFailure:         "GenFailure",
	HostError:          "HostError",
}

func (c ErrorCode) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ErrorCode(%d)", uint32(c))
}

// sentinel lets callers use errors.Is(err, kerrors.Sentinel(code)) without
// knowing the wrapped Error's shape.
type sentinel ErrorCode

func (s sentinel) Error() string { return ErrorCode(s).String() }

// Sentinel returns the comparable sentinel value errors.Is matches against
// for a given code, regardless of Host/Detail.
func Sentinel(code ErrorCode) error { return sentinel(code) }

// Error is the concrete error type every fallible kernel operation returns.
// It carries two layers: the kernel code exported by this package, and the
// raw host error code the mapping was derived from (0 when the failure
// originated in the kernel itself, not a host call).
type Error struct {
	Kernel ErrorCode
	Host   int64
	Detail string
}

func New(code ErrorCode, host int64, detail string) *Error {
	return &Error{Kernel: code, Host: host, Detail: detail}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("kernel error %s (host=%d)", e.Kernel, e.Host)
	}
	return fmt.Sprintf("kernel error %s (host=%d): %s", e.Kernel, e.Host, e.Detail)
}

// Unwrap makes errors.Is(err, kerrors.Sentinel(code)) work without exposing
// the Error struct's fields to the matcher.
func (e *Error) Unwrap() error { return sentinel(e.Kernel) }

// Is lets callers compare two *Error values or an *Error against a bare
// sentinel by kernel code alone, ignoring Host/Detail.
func (e *Error) Is(target error) bool {
	if other, ok := target.(*Error); ok {
		return e.Kernel == other.Kernel
	}
	if s, ok := target.(sentinel); ok {
		return e.Kernel == ErrorCode(s)
	}
	return false
}

// retryable is the set of codes safe to retry rather than surface as a hard
// failure.
var retryable = map[ErrorCode]bool{
	Timeout:     true,
	WouldBlock:  true,
	Interrupted: true,
}

// Retryable reports whether err (or something it wraps) carries a kernel
// code the caller may retry.
func Retryable(err error) bool {
	var kerr *Error
	if !As(err, &kerr) {
		return false
	}
	return retryable[kerr.Kernel]
}

// HostMapping pairs one host error code with the kernel code it translates
// to. A HostTable must be sorted ascending by Host; this is checked once at
// process init (see Verify).
type HostMapping struct {
	Host   int64
	Kernel ErrorCode
}

// HostTable is a host_code -> kernel_code translation table, sorted strictly
// ascending on Host so Lookup can binary search it.
type HostTable []HostMapping

// Verify checks that the table is strictly ascending on Host. Call once at
// process init (kinit does this); a violation is a fatal configuration
// error, not a runtime one.
func (t HostTable) Verify() error {
	for i := 1; i < len(t); i++ {
		if t[i-1].Host >= t[i].Host {
			return fmt.Errorf("kerrors: host error table not strictly ascending at index %d (%d >= %d)",
				i, t[i-1].Host, t[i].Host)
		}
	}
	return nil
}

// Lookup binary searches the table for host. A miss returns HostError, the
// sentinel meaning "untranslated host error".
func (t HostTable) Lookup(host int64) ErrorCode {
	lo, hi := 0, len(t)
	for lo < hi {
		mid := (lo + hi) / 2
		if t[mid].Host < host {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(t) && t[lo].Host == host {
		return t[lo].Kernel
	}
	return HostError
}

// sortedTable builds a HostTable sorted ascending on Host from unordered
// mappings, for tests and for backends that assemble their table from
// multiple sources. It does not reject duplicate host codes; Verify does.
func sortedTable(mappings []HostMapping) HostTable {
	t := make(HostTable, len(mappings))
	copy(t, mappings)
	sort.Slice(t, func(i, j int) bool { return t[i].Host < t[j].Host })
	return t
}
