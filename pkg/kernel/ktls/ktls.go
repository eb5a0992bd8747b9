// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package ktls implements the kernel's per-thread slot registry (C5): a
// global slot-id allocator plus a per-"thread" growable slot array.
//
// Go has no thread-local storage and no thread-exit hook, so "thread" here
// maps to an explicit *ThreadContext a goroutine binds once (typically at
// the top of its run loop) and closes with a deferred Close call before
// returning: any thread that has touched per-thread data must close its
// context before it exits so slot cleanups run.
package ktls

import (
	"unsafe"

	"github.com/antimetal/oskernel/pkg/kernel/ksync"
)

const growIncrement = 16

// Cleanup is invoked for a slot's live value when the owning ThreadContext
// closes, exactly once per (context, slot) pair whose value is non-nil at
// that moment. Values replaced by a later Set are not cleaned up.
type Cleanup func(value unsafe.Pointer)

// SlotID identifies one per-thread-data object across all threads.
type SlotID uint32

type slotOwner struct {
	cleanup Cleanup
}

// Registry is the process-wide ThreadDataRegistry: the slot-id allocator and
// the owner table every ThreadContext consults when it needs to grow or
// clean up.
type Registry struct {
	lock   ksync.CritSec
	owners []slotOwner // index by SlotID
}

// NewRegistry returns an empty, ready-to-use registry. Most programs want
// exactly one process-wide instance (see kinit).
func NewRegistry() *Registry {
	return &Registry{}
}

// PerThreadObject is the handle returned by NewPerThreadObject: a typed
// reservation of one slot. The slot's cleanup is held by the registry, not
// by the handle.
type PerThreadObject struct {
	id SlotID
}

// ID returns the slot id this handle was bound to.
func (o PerThreadObject) ID() SlotID { return o.id }

// NewPerThreadObject reserves a new slot under the registry's global lock
// and records cleanup as its owner, so any ThreadContext that later closes
// with a live value in this slot invokes cleanup for it.
func (r *Registry) NewPerThreadObject(cleanup Cleanup) PerThreadObject {
	owner := new(int)
	r.lock.Enter(owner)
	defer r.lock.Exit(owner)

	id := SlotID(len(r.owners))
	r.owners = append(r.owners, slotOwner{cleanup: cleanup})
	return PerThreadObject{id: id}
}

// slotCount returns the number of slots registered so far; ThreadContext
// uses it to decide how far to grow on a Set that exceeds its current
// array length.
func (r *Registry) slotCount() int {
	owner := new(int)
	r.lock.Enter(owner)
	defer r.lock.Exit(owner)
	return len(r.owners)
}

// cleanupSlot invokes owner id's cleanup for value, if any was registered.
func (r *Registry) cleanupSlot(id SlotID, value unsafe.Pointer) {
	lockOwner := new(int)
	r.lock.Enter(lockOwner)
	owner := r.owners[id]
	r.lock.Exit(lockOwner)
	if owner.cleanup != nil && value != nil {
		owner.cleanup(value)
	}
}

// ThreadContext is the per-thread owned vector: one goroutine's slot array.
// Reads never take the registry lock; only growth does.
type ThreadContext struct {
	registry *Registry
	slots    []unsafe.Pointer
	closed   bool
}

// Bind creates a new ThreadContext bound to this registry. Call it once per
// goroutine that will touch per-thread data, and defer Close.
func (r *Registry) Bind() *ThreadContext {
	return &ThreadContext{registry: r}
}

// Get returns the calling thread's value for handle, or nil if it was never
// set or is out of range for this thread's current slot array.
func (c *ThreadContext) Get(handle PerThreadObject) unsafe.Pointer {
	if int(handle.id) >= len(c.slots) {
		return nil
	}
	return c.slots[handle.id]
}

// Set installs value at handle's slot for the calling thread, growing the
// thread's slot array under the registry's global lock if needed, and
// returns the previous value (nil if none).
func (c *ThreadContext) Set(handle PerThreadObject, value unsafe.Pointer) unsafe.Pointer {
	if int(handle.id) >= len(c.slots) {
		c.grow(int(handle.id) + 1)
	}
	prev := c.slots[handle.id]
	c.slots[handle.id] = value
	return prev
}

// grow extends the thread's slot array to at least n entries, in fixed
// increments rather than doubling, since growth is rare and the doubling
// strategy would waste space for a structure that rarely resizes. New slots
// are zero-filled.
func (c *ThreadContext) grow(n int) {
	global := c.registry.slotCount()
	target := n
	if global > target {
		target = global
	}
	target += growIncrement - (target % growIncrement)

	grown := make([]unsafe.Pointer, target)
	copy(grown, c.slots)
	c.slots = grown
}

// Close runs cleanup for every slot that holds a non-nil value on this
// thread, then frees the thread's slot array. Call it (typically via defer)
// before the owning goroutine returns. Close is idempotent.
func (c *ThreadContext) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for id, v := range c.slots {
		if v != nil {
			c.registry.cleanupSlot(SlotID(id), v)
			c.slots[id] = nil
		}
	}
	c.slots = nil
}
