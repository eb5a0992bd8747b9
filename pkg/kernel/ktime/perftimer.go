// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package ktime

import "time"

// monotonicOrigin anchors HighPerfTimer.Ticks; time.Since retains the
// runtime's monotonic reading even though time.Time also carries a wall
// clock, so readings stay immune to wall-clock adjustments (NTP steps,
// manual clock changes) between calls.
var monotonicOrigin = time.Now()

// HighPerfTimer exposes a monotonic microsecond counter for interval timing,
// independent of wall-clock adjustments. It carries no state of its own;
// every method reads the runtime's monotonic clock directly.
type HighPerfTimer struct{}

// NewHighPerfTimer returns a ready-to-use timer.
func NewHighPerfTimer() HighPerfTimer {
	return HighPerfTimer{}
}

// Ticks returns a monotonic microsecond counter suitable for measuring
// elapsed intervals by subtracting two readings. The absolute value carries
// no calendar meaning.
func (HighPerfTimer) Ticks() int64 {
	return time.Since(monotonicOrigin).Microseconds()
}

// SleepMicros blocks the calling goroutine for approximately micros
// microseconds.
func SleepMicros(micros int64) {
	time.Sleep(time.Duration(micros) * time.Microsecond)
}
