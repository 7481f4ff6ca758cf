package sched_test

import (
	"sync"
	"testing"
	"time"

	"github.com/tohara/printipi/api"
	"github.com/tohara/printipi/control"
	"github.com/tohara/printipi/internal/timeutil"
	"github.com/tohara/printipi/sched"
)

// fakeGPIO stands in for the actuation interface. The core never touches
// it; it only needs to survive being owned by value.
type fakeGPIO struct {
	name string
}

func TestSchedulerOwnsInterface(t *testing.T) {
	s := sched.New(fakeGPIO{name: "bcm2835"})
	defer s.Stop()
	if s.Interface().name != "bcm2835" {
		t.Error("scheduler lost its interface")
	}
}

func TestEventLoopDeliversNoEarlierThanScheduled(t *testing.T) {
	s := sched.New(fakeGPIO{}, sched.WithIdleWait(5*time.Millisecond))

	type delivery struct {
		evt api.Event
		at  int64
	}
	var mu sync.Mutex
	var got []delivery

	done := make(chan struct{})
	go func() {
		s.EventLoop(func(evt api.Event) {
			mu.Lock()
			got = append(got, delivery{evt, timeutil.Now()})
			mu.Unlock()
		}, func() bool { return false })
		close(done)
	}()

	base := timeutil.Now()
	s.Queue(api.NewEvent(base+int64(5*time.Millisecond), 1, api.StepForward))
	s.Queue(api.NewEvent(base+int64(8*time.Millisecond), 2, api.StepBackward))

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("events not delivered in time")
		case <-time.After(time.Millisecond):
		}
	}

	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event loop did not exit after Stop")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, d := range got[:2] {
		if d.at < d.evt.Time() {
			t.Errorf("delivery %d happened %d ns early", i, d.evt.Time()-d.at)
		}
	}
	if got[0].evt.Channel() != 1 || got[1].evt.Channel() != 2 {
		t.Error("events delivered out of order")
	}
}

func TestEventLoopSpinsWhenClientNeedsCPU(t *testing.T) {
	s := sched.New(fakeGPIO{})
	var waits sync.WaitGroup
	waits.Add(1)
	delivered := make(chan api.Event, 1)

	calls := 0
	go func() {
		defer waits.Done()
		s.EventLoop(func(evt api.Event) {
			delivered <- evt
			s.Stop()
		}, func() bool {
			calls++
			return true // client claims imminent work: poll, never sleep
		})
	}()

	s.Queue(api.NewEvent(timeutil.Now()+int64(2*time.Millisecond), 5, api.StepForward))
	select {
	case evt := <-delivered:
		if evt.Channel() != 5 {
			t.Errorf("channel = %d, want 5", evt.Channel())
		}
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
	waits.Wait()
	if calls < 2 {
		t.Error("onWait should be consulted repeatedly while spinning")
	}
}

// Realtime elevation and CPU pinning are best-effort: denied in most
// test environments, they must only warn, never fail.
func TestInitSchedThreadNonFatal(t *testing.T) {
	s := sched.New(fakeGPIO{}, sched.WithCPUPin(0))
	defer s.Stop()
	s.InitSchedThread()
}

func TestMetricsRegistryTracksQueueCounters(t *testing.T) {
	mr := control.NewMetricsRegistry()
	s := sched.New(fakeGPIO{}, sched.WithMetrics(mr))
	defer s.Stop()

	base := timeutil.Now() + int64(time.Hour)
	s.Queue(api.NewEvent(base, 1, api.StepForward))
	s.Queue(api.NewEvent(base+1, 2, api.StepForward))
	if evt := s.NextEvent(false, time.Second); evt.IsNull() {
		t.Fatal("unexpected null event")
	}
	s.NextEvent(false, 0) // pops the second event
	s.NextEvent(false, 0) // empty: counts a timeout
	s.PublishMetrics()

	snap := mr.GetSnapshot()
	if snap["sched.dispatched"] != int64(2) {
		t.Errorf("sched.dispatched = %v, want 2", snap["sched.dispatched"])
	}
	if snap["sched.timeouts"] != int64(1) {
		t.Errorf("sched.timeouts = %v, want 1", snap["sched.timeouts"])
	}
	if snap["sched.queue_depth"] != 0 {
		t.Errorf("sched.queue_depth = %v, want 0", snap["sched.queue_depth"])
	}
}

// The event loop refreshes the registry on its own; no explicit
// PublishMetrics call needed from the client.
func TestEventLoopPublishesMetrics(t *testing.T) {
	mr := control.NewMetricsRegistry()
	s := sched.New(fakeGPIO{}, sched.WithMetrics(mr))

	delivered := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.EventLoop(func(api.Event) {
			close(delivered)
			s.Stop()
		}, func() bool { return false })
		close(done)
	}()

	s.Queue(api.NewEvent(timeutil.Now(), 4, api.StepForward))
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
	<-done

	if got := mr.GetSnapshot()["sched.dispatched"]; got != int64(1) {
		t.Errorf("sched.dispatched = %v, want 1", got)
	}
}

func TestConfigStoreDrivesBufferSize(t *testing.T) {
	cs := control.NewConfigStore()
	s := sched.New(fakeGPIO{}, sched.WithConfigStore(cs))
	defer s.Stop()
	cs.Set(control.KeyBufferSize, 64)
	if got := s.GetBufferSize(); got != 64 {
		t.Errorf("GetBufferSize = %d, want 64 after store update", got)
	}
}

func TestDebugProbesExposeQueueState(t *testing.T) {
	dp := control.NewDebugProbes()
	s := sched.New(fakeGPIO{}, sched.WithDebugProbes(dp))
	defer s.Stop()
	s.SchedPwm(3, sched.PwmInfo{NsHigh: 100, NsLow: 100})

	state := dp.DumpState()
	if state["sched.pwm_active"] != 1 {
		t.Errorf("sched.pwm_active = %v, want 1", state["sched.pwm_active"])
	}
	if state["sched.queue_depth"] != 1 {
		t.Errorf("sched.queue_depth = %v, want 1", state["sched.queue_depth"])
	}
	if state["sched.capacity"] != sched.DefaultCapacity {
		t.Errorf("sched.capacity = %v, want %d", state["sched.capacity"], sched.DefaultCapacity)
	}
}

func TestFromConfigOptions(t *testing.T) {
	cfg := control.Config{BufferSize: 32, RTPriority: 10, IdleWaitMS: 50, ExitLevels: 2}
	s := sched.New(fakeGPIO{}, sched.FromConfig(cfg)...)
	defer s.Stop()
	if got := s.GetBufferSize(); got != 32 {
		t.Errorf("GetBufferSize = %d, want 32", got)
	}
}
