//go:build !linux
// +build !linux

// File: internal/rt/rt_stub.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Stub implementation for platforms without POSIX realtime scheduling.

package rt

import "github.com/tohara/printipi/api"

func setRealtimePriority(priority int) error { return api.ErrNotSupported }

func pinThread(cpuID int) error { return api.ErrNotSupported }
