// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package ktime implements the kernel's 100ns-tick time stamp and
// high-performance monotonic timer (C6).
package ktime

import (
	"time"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
)

// epoch is midnight 1970-01-01 UTC, the stamp's zero point.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// Stamp is a 64-bit count of 100ns ticks since epoch.
type Stamp int64

// Now returns the current time as a Stamp.
func Now() Stamp {
	return FromTime(time.Now())
}

// FromTime converts a time.Time to a Stamp.
func FromTime(t time.Time) Stamp {
	return Stamp(t.UTC().Sub(epoch).Nanoseconds() / 100)
}

// Time converts a Stamp back to a time.Time.
func (s Stamp) Time() time.Time {
	return epoch.Add(time.Duration(s) * 100 * time.Nanosecond)
}

// Add returns s+delta. Additions wrap normally; no overflow checking is
// performed.
func (s Stamp) Add(delta Stamp) Stamp {
	return s + delta
}

// Sub returns s-delta, failing with NegativeResult when the result would be
// negative.
func (s Stamp) Sub(delta Stamp) (Stamp, error) {
	r := s - delta
	if r < 0 {
		return 0, kerrors.New(kerrors.NegativeResult, 0, "time stamp subtraction produced a negative result")
	}
	return r, nil
}

var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear applies the standard Gregorian rule.
func IsLeapYear(year int) bool {
	return year%400 == 0 || (year%4 == 0 && year%100 != 0)
}

// daysIn returns the number of days in month (1-12) of year, adjusting
// February for leap years.
func daysIn(month, year int) int {
	d := daysInMonth[month-1]
	if month == 2 && IsLeapYear(year) {
		d = 29
	}
	return d
}

// MinYear/MaxYear bound the valid year range IsValidDate accepts.
const (
	MinYear = 1601
	MaxYear = 30827
)

// IsValidDate reports whether (day, month, year) is a real calendar date
// within the supported range.
func IsValidDate(day, month, year int) bool {
	if year < MinYear || year > MaxYear {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > daysIn(month, year) {
		return false
	}
	return true
}

// IsValidTime reports whether (hour, minute, second, hundredths) is a valid
// time-of-day.
func IsValidTime(hour, minute, second, hundredths int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59 &&
		second >= 0 && second <= 59 && hundredths >= 0 && hundredths <= 99
}
