// File: internal/rt/rt.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Platform-neutral entry points. The caller must have locked the
// goroutine to its OS thread first; these calls affect the calling
// thread only.

package rt

// SetRealtimePriority moves the calling OS thread into the FIFO realtime
// class at the given priority. Returns an error when the platform does
// not support it or the process lacks the privilege.
func SetRealtimePriority(priority int) error {
	return setRealtimePriority(priority)
}

// PinThread restricts the calling OS thread to a single logical CPU.
func PinThread(cpuID int) error {
	return pinThread(cpuID)
}
