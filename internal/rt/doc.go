// File: internal/rt/doc.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Package rt elevates the event-consumer thread into the realtime
// scheduling class and optionally pins it to a CPU core. All entry points
// degrade gracefully: on platforms (or in containers) where the request
// is denied, callers log and continue at default priority.
//
// Implementations are build-tag partitioned per platform, pure Go via
// golang.org/x/sys, no cgo.
package rt
