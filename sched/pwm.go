// File: sched/pwm.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// PWM channel configuration: per-channel high/low phase durations and
// the fixed 256-entry table indexed by channel id.

package sched

import "github.com/tohara/printipi/api"

// PwmInfo holds the nanosecond durations of the two phases of one PWM
// cycle. A channel whose entry has both phases zero is inactive.
type PwmInfo struct {
	NsHigh uint32
	NsLow  uint32
}

// NewPwmInfo derives phase durations from a duty cycle in [0, 1] and a
// period in seconds. Negative products clamp to zero.
func NewPwmInfo(duty, periodSec float64) PwmInfo {
	return PwmInfo{
		NsHigh: clampNs(duty * periodSec * 1e9),
		NsLow:  clampNs((1 - duty) * periodSec * 1e9),
	}
}

// pwmInfoFromPeriodNs redistributes an existing period (in nanoseconds)
// across a new duty cycle. Used by the duty-only SchedPwm overload.
func pwmInfoFromPeriodNs(duty float64, periodNs uint32) PwmInfo {
	high := clampNs(duty * float64(periodNs))
	if high > periodNs {
		high = periodNs
	}
	return PwmInfo{NsHigh: high, NsLow: periodNs - high}
}

func clampNs(v float64) uint32 {
	if v <= 0 {
		return 0
	}
	return uint32(int64(v))
}

// Period returns the full cycle duration in nanoseconds.
func (p PwmInfo) Period() uint32 { return p.NsHigh + p.NsLow }

// IsActive reports whether the channel is configured for PWM output.
func (p PwmInfo) IsActive() bool { return p.NsHigh != 0 || p.NsLow != 0 }

// PwmTable maps every channel id to its PwmInfo. Entries start zeroed and
// are mutated only through EventQueue.SchedPwm, under the queue lock.
type PwmTable [api.NumChannels]PwmInfo

// CountActive returns the number of channels with a non-zero phase.
func (t *PwmTable) CountActive() int {
	n := 0
	for _, p := range t {
		if p.IsActive() {
			n++
		}
	}
	return n
}
