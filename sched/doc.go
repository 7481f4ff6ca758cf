// File: sched/doc.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Package sched is the event-scheduler core: a bounded, time-ordered
// event queue driving stepper-like output channels.
//
// Producers enqueue timestamped step events from any goroutine and block
// when the queue is full. Exactly one consumer pops events in
// chronological order, optionally sleeping on the monotonic clock until
// each event's scheduled time. Channels configured for PWM are
// self-refeeding: popping one phase event synthesizes and inserts the
// next under the same lock, so observers never see a transient gap in an
// active channel.
//
// The Scheduler facade ties the queue to an owned actuation interface,
// realtime thread setup, and the cooperative event-loop pump.
package sched
