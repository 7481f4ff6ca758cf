// File: sched/scheduler.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Scheduler facade: owns the actuation interface and the event queue,
// raises the consumer thread into the realtime class, and runs the
// cooperative event-loop pump.

package sched

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/tohara/printipi/api"
	"github.com/tohara/printipi/control"
	"github.com/tohara/printipi/internal/rt"
	"github.com/tohara/printipi/internal/timeutil"
)

// DefaultRTPriority is the SCHED_FIFO priority requested for the
// consumer thread.
const DefaultRTPriority = 30

// defaultIdleWait is how long the event loop yields the CPU when the
// client reports no imminent realtime work.
const defaultIdleWait = 100 * time.Millisecond

// Scheduler drives one actuation interface from the event queue. The
// interface is held by value for ownership and lifetime; the core never
// invokes it — higher layers do, from inside their onEvent callback.
type Scheduler[IF any] struct {
	iface      IF
	queue      *EventQueue
	rtPriority int
	pinCPU     int
	idleWait   time.Duration
	log        zerolog.Logger
	metrics    *control.MetricsRegistry
}

// New builds a scheduler owning iface.
func New[IF any](iface IF, opts ...Option) *Scheduler[IF] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Scheduler[IF]{
		iface:      iface,
		queue:      NewEventQueue(o.capacity, o.log),
		rtPriority: o.rtPriority,
		pinCPU:     o.pinCPU,
		idleWait:   o.idleWait,
		log:        o.log,
		metrics:    o.metrics,
	}
	if o.store != nil {
		s.bindConfigStore(o.store)
	}
	if o.probes != nil {
		s.registerProbes(o.probes)
	}
	return s
}

// Interface returns the owned actuation interface.
func (s *Scheduler[IF]) Interface() IF { return s.iface }

// Queue inserts an event, blocking while the queue is at capacity.
func (s *Scheduler[IF]) Queue(evt api.Event) error { return s.queue.Queue(evt) }

// NextEvent pops the earliest event; see EventQueue.NextEvent.
func (s *Scheduler[IF]) NextEvent(doSleep bool, timeout time.Duration) api.Event {
	return s.queue.NextEvent(doSleep, timeout)
}

// SchedPwm configures a channel for PWM output.
func (s *Scheduler[IF]) SchedPwm(id api.ChannelID, p PwmInfo) error {
	return s.queue.SchedPwm(id, p)
}

// SchedPwmDuty changes a channel's duty cycle, keeping its period.
func (s *Scheduler[IF]) SchedPwmDuty(id api.ChannelID, duty float64) error {
	return s.queue.SchedPwmDuty(id, duty)
}

// LastSchedTime returns the latest scheduled time, or now when empty.
func (s *Scheduler[IF]) LastSchedTime() int64 { return s.queue.LastSchedTime() }

// SetBufferSize adjusts the queue capacity at runtime.
func (s *Scheduler[IF]) SetBufferSize(n int) { s.queue.SetBufferSize(n) }

// GetBufferSize returns the queue capacity.
func (s *Scheduler[IF]) GetBufferSize() int { return s.queue.GetBufferSize() }

// NumActivePwmChannels counts configured PWM channels.
func (s *Scheduler[IF]) NumActivePwmChannels() int { return s.queue.NumActivePwmChannels() }

// Stats returns the queue counters.
func (s *Scheduler[IF]) Stats() QueueStats { return s.queue.Stats() }

// InitSchedThread locks the calling goroutine to its OS thread, pins it
// to the configured CPU when one was requested, and raises it to the
// FIFO realtime class. Denial of either request is not fatal: the
// thread keeps running unpinned or at default priority.
//
// Call from the goroutine that runs NextEvent or EventLoop.
func (s *Scheduler[IF]) InitSchedThread() {
	runtime.LockOSThread()
	if s.pinCPU >= 0 {
		if err := rt.PinThread(s.pinCPU); err != nil {
			s.log.Warn().Err(err).Int("cpu", s.pinCPU).
				Msg("could not pin scheduler thread, continuing unpinned")
		}
	}
	if err := rt.SetRealtimePriority(s.rtPriority); err != nil {
		s.log.Warn().Err(err).Int("priority", s.rtPriority).
			Msg("could not raise scheduler thread priority, continuing at default")
	}
}

// SleepUntilEvent sleeps on the monotonic clock until evt's scheduled
// time, returning immediately if it is already past.
func (s *Scheduler[IF]) SleepUntilEvent(evt api.Event) {
	timeutil.SleepUntil(evt.Time())
}

// EventLoop pumps events to onEvent forever, or until Stop.
//
// Each turn asks onWait whether the client has realtime work imminent.
// If so the queue is polled with zero timeout so the client keeps the
// CPU; otherwise the loop parks for up to the idle wait. A popped event
// is held back until due: while the client has nothing imminent the loop
// yields by sleeping to the event's time, else it spins re-asking
// onWait. Events are never delivered early.
func (s *Scheduler[IF]) EventLoop(onEvent func(api.Event), onWait func() bool) {
	for !s.queue.Stopped() {
		needCPU := onWait()
		timeout := s.idleWait
		if needCPU {
			timeout = 0
		}
		evt := s.queue.NextEvent(false, timeout)
		s.PublishMetrics()
		if evt.IsNull() {
			continue
		}
		for !evt.IsDue(timeutil.Now()) {
			if !onWait() {
				s.SleepUntilEvent(evt)
			}
		}
		onEvent(evt)
	}
}

// Stop terminates EventLoop and wakes all queue waiters.
func (s *Scheduler[IF]) Stop() { s.queue.Stop() }

// PublishMetrics pushes the current queue counters into the configured
// metrics registry. No-op without one.
func (s *Scheduler[IF]) PublishMetrics() {
	if s.metrics == nil {
		return
	}
	st := s.queue.Stats()
	s.metrics.Set("sched.dispatched", st.Dispatched)
	s.metrics.Set("sched.synthesized", st.Synthesized)
	s.metrics.Set("sched.timeouts", st.Timeouts)
	s.metrics.Set("sched.queue_depth", s.queue.Len())
}

// bindConfigStore applies live buffer-size updates from a control-plane
// config store.
func (s *Scheduler[IF]) bindConfigStore(store *control.ConfigStore) {
	store.OnReload(func() {
		snap := store.GetSnapshot()
		if v, ok := snap[control.KeyBufferSize]; ok {
			if n, ok := v.(int); ok && n > 0 {
				s.queue.SetBufferSize(n)
			}
		}
	})
}

// registerProbes exposes queue state to the debug-probe registry.
func (s *Scheduler[IF]) registerProbes(dp *control.DebugProbes) {
	dp.RegisterProbe("sched.queue_depth", func() any { return s.queue.Len() })
	dp.RegisterProbe("sched.capacity", func() any { return s.queue.GetBufferSize() })
	dp.RegisterProbe("sched.pwm_active", func() any { return s.queue.NumActivePwmChannels() })
	dp.RegisterProbe("sched.stats", func() any { return s.queue.Stats() })
}
