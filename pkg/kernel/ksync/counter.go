// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package ksync

import "sync/atomic"

// AtomicCounter32 is a 32-bit signed atomic cell. All operations are
// linearizable against other operations on the same counter.
//
// Fetch-add/fetch-sub return the *new* (post-op) value; CAS/Exchange return
// the *previous* value. There is a single backend here, so no pointer-
// arithmetic discrepancy between platforms is reproduced.
type AtomicCounter32 struct {
	v atomic.Int32
}

// NewAtomicCounter32 returns a counter initialized to v.
func NewAtomicCounter32(v int32) *AtomicCounter32 {
	c := &AtomicCounter32{}
	c.v.Store(v)
	return c
}

// Load returns the current value.
func (c *AtomicCounter32) Load() int32 { return c.v.Load() }

// Exchange installs new and returns the previous value.
func (c *AtomicCounter32) Exchange(new int32) (previous int32) {
	return c.v.Swap(new)
}

// CAS installs new if the current value equals expected, and always returns
// the value observed before the attempt (whether or not it matched).
func (c *AtomicCounter32) CAS(new, expected int32) (previous int32) {
	for {
		cur := c.v.Load()
		if cur != expected {
			return cur
		}
		if c.v.CompareAndSwap(cur, new) {
			return cur
		}
	}
}

// Add returns the value after adding delta.
func (c *AtomicCounter32) Add(delta int32) int32 { return c.v.Add(delta) }

// Sub returns the value after subtracting delta.
func (c *AtomicCounter32) Sub(delta int32) int32 { return c.v.Add(-delta) }

// Inc returns the value after incrementing by one.
func (c *AtomicCounter32) Inc() int32 { return c.v.Add(1) }

// Dec returns the value after decrementing by one.
func (c *AtomicCounter32) Dec() int32 { return c.v.Add(-1) }

// AtomicCounterU32 is the unsigned counterpart, for counts that must never
// be negative.
type AtomicCounterU32 struct {
	v atomic.Uint32
}

func NewAtomicCounterU32(v uint32) *AtomicCounterU32 {
	c := &AtomicCounterU32{}
	c.v.Store(v)
	return c
}

func (c *AtomicCounterU32) Load() uint32 { return c.v.Load() }

func (c *AtomicCounterU32) Exchange(new uint32) (previous uint32) { return c.v.Swap(new) }

func (c *AtomicCounterU32) CAS(new, expected uint32) (previous uint32) {
	for {
		cur := c.v.Load()
		if cur != expected {
			return cur
		}
		if c.v.CompareAndSwap(cur, new) {
			return cur
		}
	}
}

func (c *AtomicCounterU32) Add(delta uint32) uint32 { return c.v.Add(delta) }

func (c *AtomicCounterU32) Inc() uint32 { return c.v.Add(1) }

func (c *AtomicCounterU32) Dec() uint32 { return c.v.Add(^uint32(0)) }
