// File: api/doc.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Package api defines the shared value types and error contracts of the
// printipi event-scheduler core: timestamped step events, output channel
// identifiers and directions, and the structured errors raised at package
// boundaries.
//
// Everything in this package is a plain value. Behavior lives in the
// sched, lifecycle and control packages.
package api
