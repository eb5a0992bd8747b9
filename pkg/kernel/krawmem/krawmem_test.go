// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package krawmem_test

import (
	"testing"

	"github.com/antimetal/oskernel/pkg/kernel/krawmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32TableFoldProperty(t *testing.T) {
	table := krawmem.CRC32Table()
	for i := 0; i < 256; i++ {
		v := uint32(i)
		for b := 0; b < 8; b++ {
			if v&1 != 0 {
				v = (v >> 1) ^ 0xEDB88320
			} else {
				v >>= 1
			}
		}
		require.Equal(t, v, table[i], "table[%d]", i)
	}
}

func TestCRC32RoundTrip(t *testing.T) {
	buf := []byte("the quick brown fox")
	a := krawmem.CRC32(buf)
	b := krawmem.CRC32(buf)
	assert.Equal(t, a, b)
}

func TestCRC32EmptyBuffer(t *testing.T) {
	// Identity: starting seed XOR final XOR cancels out for zero bytes folded.
	assert.Equal(t, uint32(0), krawmem.CRC32(nil))
}

func TestAdler32EmptyBufferIsOne(t *testing.T) {
	assert.Equal(t, uint32(1), krawmem.Adler32(nil))
}

func TestAdler32RoundTrip(t *testing.T) {
	buf := []byte("another buffer")
	assert.Equal(t, krawmem.Adler32(buf), krawmem.Adler32(buf))
}

func TestAdler32Combine(t *testing.T) {
	a := []byte("hello, ")
	b := []byte("world!")
	whole := append(append([]byte{}, a...), b...)

	combined := krawmem.Adler32Combine(krawmem.Adler32(a), krawmem.Adler32(b), int64(len(b)))
	assert.Equal(t, krawmem.Adler32(whole), combined)
}

func TestHashFoldRoundTrip(t *testing.T) {
	buf := []byte("per-thread slot registry")
	a := krawmem.HashFold(buf, 0, 2048)
	b := krawmem.HashFold(buf, 0, 2048)
	assert.Equal(t, a, b)
	assert.Less(t, a, uint32(2048))
}

func TestPageArithmetic(t *testing.T) {
	ps := uintptr(krawmem.PageSize)

	assert.Equal(t, ps, krawmem.PageRounded(0))
	assert.Equal(t, ps, krawmem.PageRounded(1))
	assert.Equal(t, 2*ps, krawmem.PageRounded(ps+1))

	assert.Equal(t, uintptr(0), krawmem.PagesCovered(0))
	assert.Equal(t, uintptr(1), krawmem.PagesCovered(1))
	assert.Equal(t, uintptr(2), krawmem.PagesCovered(ps+1))

	assert.Equal(t, uintptr(0), krawmem.NextPageAddr(0))
	assert.Equal(t, ps, krawmem.NextPageAddr(1))

	assert.Equal(t, uintptr(0), krawmem.PrevPageAddr(0))
	assert.Equal(t, uintptr(0), krawmem.PrevPageAddr(ps-1))
	assert.Equal(t, ps, krawmem.PrevPageAddr(ps))
}

func TestSetHelpers(t *testing.T) {
	buf := make([]byte, 8)
	krawmem.Set(buf, 0xAB, 4)
	assert.Equal(t, []byte{0xAB, 0xAB, 0xAB, 0xAB, 0, 0, 0, 0}, buf)

	u32 := make([]uint32, 4)
	krawmem.SetN32(u32, 0xDEADBEEF, 2)
	assert.Equal(t, []uint32{0xDEADBEEF, 0xDEADBEEF, 0, 0}, u32)
}
