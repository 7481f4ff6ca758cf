// File: sched/options.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Functional options for Scheduler construction.

package sched

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tohara/printipi/control"
)

type options struct {
	capacity   int
	rtPriority int
	pinCPU     int
	idleWait   time.Duration
	log        zerolog.Logger
	store      *control.ConfigStore
	probes     *control.DebugProbes
	metrics    *control.MetricsRegistry
}

func defaultOptions() options {
	return options{
		capacity:   DefaultCapacity,
		rtPriority: DefaultRTPriority,
		pinCPU:     -1,
		idleWait:   defaultIdleWait,
		log:        zerolog.Nop(),
	}
}

// Option customizes a Scheduler.
type Option func(*options)

// WithCapacity sets the initial queue capacity bound.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithRTPriority sets the FIFO priority requested by InitSchedThread.
func WithRTPriority(p int) Option {
	return func(o *options) { o.rtPriority = p }
}

// WithCPUPin makes InitSchedThread pin the consumer thread to the given
// logical CPU before raising its priority. Denial is non-fatal.
func WithCPUPin(cpuID int) Option {
	return func(o *options) {
		if cpuID >= 0 {
			o.pinCPU = cpuID
		}
	}
}

// WithIdleWait sets how long the event loop parks when the client has no
// imminent work.
func WithIdleWait(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.idleWait = d
		}
	}
}

// WithLogger routes scheduler logging through l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithConfigStore subscribes the scheduler to live tunable updates.
func WithConfigStore(cs *control.ConfigStore) Option {
	return func(o *options) { o.store = cs }
}

// WithDebugProbes registers queue introspection probes on dp.
func WithDebugProbes(dp *control.DebugProbes) Option {
	return func(o *options) { o.probes = dp }
}

// WithMetrics publishes the queue counters into mr; the event loop
// refreshes them every turn, and PublishMetrics does so on demand.
func WithMetrics(mr *control.MetricsRegistry) Option {
	return func(o *options) { o.metrics = mr }
}

// FromConfig maps a loaded file configuration onto scheduler options.
func FromConfig(cfg control.Config) []Option {
	return []Option{
		WithCapacity(cfg.BufferSize),
		WithRTPriority(cfg.RTPriority),
		WithIdleWait(time.Duration(cfg.IdleWaitMS) * time.Millisecond),
	}
}
