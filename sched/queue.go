// File: sched/queue.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Bounded min-heap event queue with producer backpressure and PWM
// refeed. One mutex guards the heap, the capacity and the PWM table;
// producers park on a condition variable while the queue is full, the
// single consumer waits for events on a replaceable broadcast channel so
// the wait can carry a timeout.

package sched

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/rs/zerolog"

	"github.com/tohara/printipi/api"
	"github.com/tohara/printipi/internal/timeutil"
)

// DefaultCapacity is the initial bound on queued events.
const DefaultCapacity = 512

// QueueStats are monotonically increasing counters maintained by the
// queue, readable without the lock.
type QueueStats struct {
	Dispatched  int64 // events returned by NextEvent
	Synthesized int64 // PWM successor events inserted by refeed
	Timeouts    int64 // NextEvent calls that timed out on an empty queue
}

// EventQueue is the bounded, time-ordered event queue.
//
// Queue and SchedPwm may be called from any goroutine. NextEvent must
// only ever be called from one consumer goroutine; the heap and the
// wakeup protocol assume exactly one.
type EventQueue struct {
	mu       sync.Mutex
	heap     *binaryheap.Heap // of api.Event, min-ordered on Time()
	capacity int
	consumed *sync.Cond    // producers wait here while full
	nonEmpty chan struct{} // closed and replaced when the heap leaves empty
	pwm      PwmTable
	stopped  bool
	stopCh   chan struct{}
	log      zerolog.Logger

	dispatched  atomic.Int64
	synthesized atomic.Int64
	timeouts    atomic.Int64
}

// eventCompare orders events earliest-first for the heap.
func eventCompare(a, b interface{}) int {
	ta, tb := a.(api.Event).Time(), b.(api.Event).Time()
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	default:
		return 0
	}
}

// NewEventQueue creates an empty queue with the given capacity bound.
// A capacity <= 0 selects DefaultCapacity.
func NewEventQueue(capacity int, log zerolog.Logger) *EventQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &EventQueue{
		heap:     binaryheap.NewWith(eventCompare),
		capacity: capacity,
		nonEmpty: make(chan struct{}),
		stopCh:   make(chan struct{}),
		log:      log,
	}
	q.consumed = sync.NewCond(&q.mu)
	return q
}

// Queue inserts evt, blocking while the queue is at capacity until the
// consumer drains a slot. Null events are rejected at the boundary.
func (q *EventQueue) Queue(evt api.Event) error {
	if evt.IsNull() {
		return api.ErrNullEvent
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.insertLocked(evt)
}

// insertLocked waits out backpressure, pushes evt and wakes the consumer
// if the heap just left empty. Callers hold q.mu.
func (q *EventQueue) insertLocked(evt api.Event) error {
	for q.heap.Size() >= q.capacity {
		if q.stopped {
			return api.ErrStopped
		}
		q.consumed.Wait()
	}
	if q.stopped {
		return api.ErrStopped
	}
	wasEmpty := q.heap.Size() == 0
	q.heap.Push(evt)
	if wasEmpty {
		close(q.nonEmpty)
		q.nonEmpty = make(chan struct{})
	}
	return nil
}

// NextEvent pops the earliest event. On an empty queue it waits up to
// timeout for a producer (a timeout <= 0 polls without blocking) and
// returns the null event if none arrives. When the popped event belongs
// to an active PWM channel, its successor is synthesized and inserted
// before the lock is released; otherwise one parked producer is woken.
// With doSleep, the call then sleeps on the monotonic clock until the
// event's scheduled time.
//
// Single consumer only.
func (q *EventQueue) NextEvent(doSleep bool, timeout time.Duration) api.Event {
	deadline := time.Now().Add(timeout)
	q.mu.Lock()
	for q.heap.Size() == 0 {
		if q.stopped {
			q.mu.Unlock()
			return api.NullEvent
		}
		remain := time.Until(deadline)
		if timeout <= 0 || remain <= 0 {
			q.mu.Unlock()
			q.timeouts.Add(1)
			return api.NullEvent
		}
		wake := q.nonEmpty
		q.mu.Unlock()
		tm := time.NewTimer(remain)
		select {
		case <-wake:
		case <-tm.C:
		case <-q.stopCh:
		}
		tm.Stop()
		q.mu.Lock()
	}

	v, _ := q.heap.Pop()
	evt := v.(api.Event)
	refeed := false
	if info := q.pwm[evt.Channel()]; info.IsActive() {
		q.heap.Push(q.successor(evt, info))
		q.synthesized.Add(1)
		refeed = true
	}
	q.mu.Unlock()

	if !refeed {
		// Net queue size shrank by one: admit a parked producer. PWM pops
		// leave the size unchanged and must not grant false capacity.
		q.consumed.Signal()
	}
	q.dispatched.Add(1)

	if doSleep {
		timeutil.SleepUntil(evt.Time())
	}
	return evt
}

// successor derives the next phase event for an active PWM channel. A
// zero opposite phase folds to a same-direction refresh.
func (q *EventQueue) successor(evt api.Event, info PwmInfo) api.Event {
	var dir api.Direction
	var phase uint32
	if evt.Dir() == api.StepForward {
		phase = info.NsHigh
		if info.NsLow != 0 {
			dir = api.StepBackward
		} else {
			dir = api.StepForward
		}
	} else {
		phase = info.NsLow
		if info.NsHigh != 0 {
			dir = api.StepForward
		} else {
			dir = api.StepBackward
		}
	}
	next := api.NewEvent(evt.Time(), evt.Channel(), dir)
	next.OffsetNanos(int64(phase))
	return next
}

// SchedPwm configures channel id for PWM output. An already-active
// channel only has its entry overwritten; the next natural pop picks up
// the new phase durations. An inactive channel is seeded with an event
// at the current time, stepping forward if there is any high phase.
// Writing a zero PwmInfo into an active channel disables it after the
// next pop.
func (q *EventQueue) SchedPwm(id api.ChannelID, p PwmInfo) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.log.Debug().
		Uint8("channel", uint8(id)).
		Uint32("ns_high", p.NsHigh).
		Uint32("ns_low", p.NsLow).
		Uint32("cur_high", q.pwm[id].NsHigh).
		Uint32("cur_low", q.pwm[id].NsLow).
		Msg("sched pwm")
	wasActive := q.pwm[id].IsActive()
	q.pwm[id] = p
	if wasActive {
		return nil
	}
	dir := api.StepBackward
	if p.NsHigh != 0 {
		dir = api.StepForward
	}
	return q.insertLocked(api.NewEvent(timeutil.Now(), id, dir))
}

// SchedPwmDuty reconfigures an existing PWM channel to a new duty cycle,
// keeping its current period.
func (q *EventQueue) SchedPwmDuty(id api.ChannelID, duty float64) error {
	q.mu.Lock()
	period := q.pwm[id].Period()
	q.mu.Unlock()
	return q.SchedPwm(id, pwmInfoFromPeriodNs(duty, period))
}

// PwmInfoFor returns the current table entry for a channel.
func (q *EventQueue) PwmInfoFor(id api.ChannelID) PwmInfo {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pwm[id]
}

// NumActivePwmChannels counts channels with a non-zero phase configured.
func (q *EventQueue) NumActivePwmChannels() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pwm.CountActive()
}

// LastSchedTime returns the latest scheduled time across all queued
// events, or the current time when the queue is empty.
func (q *EventQueue) LastSchedTime() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.heap.Size() == 0 {
		return timeutil.Now()
	}
	var last int64
	for i, v := range q.heap.Values() {
		if t := v.(api.Event).Time(); i == 0 || t > last {
			last = t
		}
	}
	return last
}

// SetBufferSize adjusts the capacity bound. Shrinking below the current
// size drops nothing; producers simply stay blocked until the consumer
// drains below the new bound. Growth wakes all parked producers so they
// re-check.
func (q *EventQueue) SetBufferSize(n int) {
	q.mu.Lock()
	q.capacity = n
	q.mu.Unlock()
	q.consumed.Broadcast()
	q.log.Info().Int("size", n).Msg("scheduler buffer size set")
}

// GetBufferSize returns the current capacity bound.
func (q *EventQueue) GetBufferSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Size()
}

// Stats returns a snapshot of the queue counters.
func (q *EventQueue) Stats() QueueStats {
	return QueueStats{
		Dispatched:  q.dispatched.Load(),
		Synthesized: q.synthesized.Load(),
		Timeouts:    q.timeouts.Load(),
	}
}

// Stop wakes every waiter and makes all subsequent blocking calls return
// immediately. Queued events are left in place.
func (q *EventQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.stopCh)
	q.mu.Unlock()
	q.consumed.Broadcast()
}

// Stopped reports whether Stop has been called.
func (q *EventQueue) Stopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}
