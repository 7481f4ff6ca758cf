// File: lifecycle/doc.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Package lifecycle is the process-wide staged exit-handler registry.
//
// Handlers register into ordered levels; on termination the levels run
// from 0 upward, within each level in registration order. Level 0 is
// reserved for I/O-releasing handlers (reset GPIO state before the
// process dies), level 1 for memory-releasing ones. An atomic guard
// ensures the handlers run at most once even when several threads
// request exit concurrently, and a panicking handler never prevents the
// remaining ones from running.
package lifecycle
