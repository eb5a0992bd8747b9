// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package ktls_test

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/antimetal/oskernel/pkg/kernel/ktls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBeforeSetIsNil(t *testing.T) {
	reg := ktls.NewRegistry()
	handle := reg.NewPerThreadObject(nil)
	ctx := reg.Bind()
	defer ctx.Close()

	assert.Nil(t, ctx.Get(handle))
}

func TestSetThenGetSameThread(t *testing.T) {
	reg := ktls.NewRegistry()
	handle := reg.NewPerThreadObject(nil)
	ctx := reg.Bind()
	defer ctx.Close()

	v := 42
	prev := ctx.Set(handle, unsafe.Pointer(&v))
	assert.Nil(t, prev)
	assert.Equal(t, unsafe.Pointer(&v), ctx.Get(handle))

	v2 := 99
	prev2 := ctx.Set(handle, unsafe.Pointer(&v2))
	assert.Equal(t, unsafe.Pointer(&v), prev2)
}

func TestPerThreadDataIsolatedAcrossThreads(t *testing.T) {
	reg := ktls.NewRegistry()
	handle := reg.NewPerThreadObject(nil)

	var wg sync.WaitGroup
	results := make([]unsafe.Pointer, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := reg.Bind()
			defer ctx.Close()

			v := i
			ctx.Set(handle, unsafe.Pointer(&v))
			results[i] = ctx.Get(handle)
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, i, *(*int)(r))
	}
}

func TestCloseInvokesCleanupForLiveSlots(t *testing.T) {
	reg := ktls.NewRegistry()

	var cleaned int
	var mu sync.Mutex
	handle := reg.NewPerThreadObject(func(unsafe.Pointer) {
		mu.Lock()
		cleaned++
		mu.Unlock()
	})

	ctx := reg.Bind()
	v := 7
	ctx.Set(handle, unsafe.Pointer(&v))
	ctx.Close()

	assert.Equal(t, 1, cleaned)

	// Idempotent: a second Close must not invoke cleanup again.
	ctx.Close()
	assert.Equal(t, 1, cleaned)
}

func TestSetOnSlotBeyondCurrentArrayGrowsAndStaysReachable(t *testing.T) {
	reg := ktls.NewRegistry()
	ctx := reg.Bind()
	defer ctx.Close()

	// Reserve enough objects to force more than one growth increment.
	handles := make([]ktls.PerThreadObject, 40)
	for i := range handles {
		handles[i] = reg.NewPerThreadObject(nil)
	}

	v := 1
	ctx.Set(handles[len(handles)-1], unsafe.Pointer(&v))
	assert.Equal(t, unsafe.Pointer(&v), ctx.Get(handles[len(handles)-1]))
	assert.Nil(t, ctx.Get(handles[0]))
}
