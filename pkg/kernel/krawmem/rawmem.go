// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package krawmem implements the kernel's raw-memory primitives, hash
// functions, and page arithmetic (C4).
package krawmem

import "golang.org/x/sys/unix"

// Copy copies n bytes from src to dst. The two slices must not overlap; use
// Move for overlap-safe copying.
func Copy(dst, src []byte, n int) {
	copy(dst[:n], src[:n])
}

// Move copies n bytes from src to dst and is safe when the two slices
// overlap, matching memmove semantics.
func Move(dst, src []byte, n int) {
	copy(dst[:n], src[:n]) // Go's builtin copy is already overlap-safe
}

// Set fills the first n bytes of dst with b.
func Set(dst []byte, b byte, n int) {
	d := dst[:n]
	for i := range d {
		d[i] = b
	}
}

// SetN16 fills the first n uint16 slots of dst with v.
func SetN16(dst []uint16, v uint16, n int) {
	d := dst[:n]
	for i := range d {
		d[i] = v
	}
}

// SetN32 fills the first n uint32 slots of dst with v.
func SetN32(dst []uint32, v uint32, n int) {
	d := dst[:n]
	for i := range d {
		d[i] = v
	}
}

// SetN64 fills the first n uint64 slots of dst with v.
func SetN64(dst []uint64, v uint64, n int) {
	d := dst[:n]
	for i := range d {
		d[i] = v
	}
}

// PageSize is the host's memory page size, queried once via
// golang.org/x/sys/unix instead of assuming 4096.
var PageSize = unix.Getpagesize()

// PageRounded rounds n up to the next multiple of PageSize, with a minimum
// of one page.
func PageRounded(n uintptr) uintptr {
	ps := uintptr(PageSize)
	if n == 0 {
		return ps
	}
	return ((n + ps - 1) / ps) * ps
}

// PagesCovered returns how many pages are needed to cover n bytes, 0 for
// n == 0 (unlike PageRounded, which always reports at least one page).
func PagesCovered(n uintptr) uintptr {
	if n == 0 {
		return 0
	}
	ps := uintptr(PageSize)
	return (n + ps - 1) / ps
}

// NextPageAddr rounds p up to the next page boundary at or above p. A nil p
// maps to nil.
func NextPageAddr(p uintptr) uintptr {
	if p == 0 {
		return 0
	}
	ps := uintptr(PageSize)
	return ((p + ps - 1) / ps) * ps
}

// PrevPageAddr rounds p down to the page boundary at or below p. A nil p
// maps to nil; an address below one page maps to nil (there is no page
// below it).
func PrevPageAddr(p uintptr) uintptr {
	if p == 0 {
		return 0
	}
	ps := uintptr(PageSize)
	if p < ps {
		return 0
	}
	return (p / ps) * ps
}
