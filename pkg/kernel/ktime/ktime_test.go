// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package ktime_test

import (
	"testing"
	"time"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
	"github.com/antimetal/oskernel/pkg/kernel/ktime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTimeRoundTrip(t *testing.T) {
	tm := time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC)
	s := ktime.FromTime(tm)
	assert.True(t, s.Time().Equal(tm))
}

func TestAddWraps(t *testing.T) {
	s := ktime.Stamp(100)
	assert.Equal(t, ktime.Stamp(150), s.Add(50))
}

func TestSubNegativeResultFails(t *testing.T) {
	small := ktime.Stamp(10)
	big := ktime.Stamp(20)

	_, err := small.Sub(big)
	require.Error(t, err)

	var kerr *kerrors.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kerrors.NegativeResult, kerr.Kernel)
}

func TestSubNonNegative(t *testing.T) {
	r, err := ktime.Stamp(20).Sub(ktime.Stamp(10))
	require.NoError(t, err)
	assert.Equal(t, ktime.Stamp(10), r)
}

func TestIsLeapYear(t *testing.T) {
	cases := map[int]bool{
		2000: true,
		1900: false,
		2024: true,
		2023: false,
		2400: true,
	}
	for year, want := range cases {
		assert.Equal(t, want, ktime.IsLeapYear(year), "year %d", year)
	}
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, ktime.IsValidDate(29, 2, 2024))
	assert.False(t, ktime.IsValidDate(29, 2, 2023))
	assert.False(t, ktime.IsValidDate(31, 4, 2024))
	assert.True(t, ktime.IsValidDate(30, 4, 2024))
	assert.False(t, ktime.IsValidDate(1, 13, 2024))
	assert.False(t, ktime.IsValidDate(0, 1, 2024))
	assert.False(t, ktime.IsValidDate(1, 1, ktime.MinYear-1))
	assert.False(t, ktime.IsValidDate(1, 1, ktime.MaxYear+1))
}

func TestIsValidTime(t *testing.T) {
	assert.True(t, ktime.IsValidTime(23, 59, 59, 99))
	assert.False(t, ktime.IsValidTime(24, 0, 0, 0))
	assert.False(t, ktime.IsValidTime(0, 60, 0, 0))
	assert.False(t, ktime.IsValidTime(0, 0, 60, 0))
	assert.False(t, ktime.IsValidTime(0, 0, 0, 100))
}

func TestHighPerfTimerTicksAdvance(t *testing.T) {
	timer := ktime.NewHighPerfTimer()
	start := timer.Ticks()
	ktime.SleepMicros(2000)
	elapsed := timer.Ticks() - start
	assert.Greater(t, elapsed, int64(0))
}
