//go:build linux
// +build linux

// File: internal/rt/rt_linux.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Linux implementation via sched_setattr(2) and sched_setaffinity(2).

package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setRealtimePriority requests SCHED_FIFO at the given priority for the
// calling thread (pid 0).
func setRealtimePriority(priority int) error {
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(priority),
	}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		return fmt.Errorf("rt: sched_setattr(SCHED_FIFO, %d): %w", priority, err)
	}
	return nil
}

// pinThread binds the calling thread to the given logical CPU.
func pinThread(cpuID int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("rt: sched_setaffinity(cpu %d): %w", cpuID, err)
	}
	return nil
}
