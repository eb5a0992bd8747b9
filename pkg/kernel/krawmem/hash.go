// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package krawmem

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// crc16Table is the 256-entry table the incremental hash folds each byte
// through. It is independent of the CRC-32 table below despite the similar
// construction.
var crc16Table = buildCRC16Table()

func buildCRC16Table() [256]uint32 {
	var t [256]uint32
	for i := 0; i < 256; i++ {
		v := uint32(i)
		for b := 0; b < 8; b++ {
			if v&1 != 0 {
				v = (v >> 1) ^ 0xA001 // reflected CRC-16/IBM (0x8005) polynomial
			} else {
				v >>= 1
			}
		}
		t[i] = v
	}
	return t
}

// HashFold computes an incremental fold hash over buf starting from seed h,
// then reduces the result modulo modulus. Starting h at 0 gives the
// non-incremental, single-shot form.
func HashFold(buf []byte, h uint32, modulus uint32) uint32 {
	for _, b := range buf {
		h = h + (h * 37) + (h >> 24) + crc16Table[b]
	}
	return h % modulus
}

// crc32Table is the 256-entry ISO-3309 (polynomial 0xEDB88320) table, built
// lazily under a singleflight group the first time it is needed —
// singleflight.Do collapses concurrent first callers into one builder and
// publishes the result with the necessary happens-before edge.
var (
	crc32TableReady atomic.Bool
	crc32TableValue [256]uint32
	crc32Group      singleflight.Group
)

const crc32Poly = 0xEDB88320

func ensureCRC32Table() {
	if crc32TableReady.Load() {
		return
	}
	_, _, _ = crc32Group.Do("crc32-table", func() (any, error) {
		if crc32TableReady.Load() {
			return nil, nil
		}
		var t [256]uint32
		for i := 0; i < 256; i++ {
			v := uint32(i)
			for b := 0; b < 8; b++ {
				if v&1 != 0 {
					v = (v >> 1) ^ crc32Poly
				} else {
					v >>= 1
				}
			}
			t[i] = v
		}
		crc32TableValue = t
		crc32TableReady.Store(true)
		return nil, nil
	})
}

// CRC32Table returns the lazily-built ISO-3309 table, building it on first
// call. Exposed so tests can check the fold property directly against the
// published table.
func CRC32Table() [256]uint32 {
	ensureCRC32Table()
	return crc32TableValue
}

// CRC32Incremental folds buf into the running CRC state h (caller supplies
// the previous h; start with 0xFFFFFFFF for a fresh stream). The caller is
// responsible for the final XOR with 0xFFFFFFFF when finishing a stream —
// see CRC32 for the single-shot convenience form.
func CRC32Incremental(buf []byte, h uint32) uint32 {
	ensureCRC32Table()
	for _, b := range buf {
		h = crc32TableValue[(h^uint32(b))&0xFF] ^ (h >> 8)
	}
	return h
}

// CRC32 computes the whole-buffer ISO-3309 CRC-32, starting from the
// standard seed and applying the standard final XOR.
func CRC32(buf []byte) uint32 {
	return CRC32Incremental(buf, 0xFFFFFFFF) ^ 0xFFFFFFFF
}

// Adler32Incremental extends the RFC 1950 Adler-32 running sums (a, b) over
// buf. A fresh stream starts with a=1, b=0 (the empty-buffer identity).
func Adler32Incremental(buf []byte, a, b uint32) (uint32, uint32) {
	const modAdler = 65521
	for _, c := range buf {
		a = (a + uint32(c)) % modAdler
		b = (b + a) % modAdler
	}
	return a, b
}

// Adler32 computes the whole-buffer Adler-32 checksum; an empty buffer
// returns 1, matching the stream identity.
func Adler32(buf []byte) uint32 {
	a, b := Adler32Incremental(buf, 1, 0)
	return (b << 16) | a
}

// Adler32Combine computes the Adler-32 of concat(a, b) given adlerA = the
// Adler-32 of a, adlerB = the Adler-32 of b, and lenB = len(b), without
// rehashing a's bytes. This is the standard zlib adler32_combine algorithm.
func Adler32Combine(adlerA, adlerB uint32, lenB int64) uint32 {
	const modAdler uint64 = 65521
	if lenB < 0 {
		return 0xFFFFFFFF
	}
	rem := uint64(lenB) % modAdler

	sum1 := uint64(adlerA) & 0xFFFF
	sum2 := (rem * sum1) % modAdler
	sum1 += (uint64(adlerB) & 0xFFFF) + modAdler - 1
	sum2 += ((uint64(adlerA) >> 16) & 0xFFFF) + ((uint64(adlerB) >> 16) & 0xFFFF) + modAdler - rem

	if sum1 >= modAdler {
		sum1 -= modAdler
	}
	if sum1 >= modAdler {
		sum1 -= modAdler
	}
	if sum2 >= modAdler<<1 {
		sum2 -= modAdler << 1
	}
	if sum2 >= modAdler {
		sum2 -= modAdler
	}
	return uint32(sum1) | uint32(sum2<<16)
}
