// File: internal/timeutil/doc.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Package timeutil is the monotonic wall-clock abstraction used by the
// scheduler: absolute "now" in nanoseconds and absolute sleep to a
// timestamp. Platform-specific implementations live in separate files
// guarded by build tags; on Linux both operations go straight to
// CLOCK_MONOTONIC so sleeps are immune to clock steps, elsewhere a
// process-start base and relative sleeping approximate the same contract.
package timeutil
