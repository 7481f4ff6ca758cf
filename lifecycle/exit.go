// File: lifecycle/exit.go
// Author: tohara <tohara@users.noreply.github.com>
// License: Apache-2.0
//
// Leveled exit-handler registry with single-shot invocation.

package lifecycle

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/tohara/printipi/api"
)

// Exit handler levels. Lower levels run first.
const (
	NumExitLevels = 2
	IOExitLevel   = 0
	MemExitLevel  = 1
)

// registry is the module-scoped state behind the package functions.
// Explicit Reset replaces static-constructor magic.
type registry struct {
	mu     sync.Mutex
	levels []*queue.Queue // each holds func() in registration order
	// exiting must be atomic: a handler may itself request exit, and the
	// request can also arrive from another thread.
	exiting atomic.Bool
	armed   bool
	sigCh   chan os.Signal
	log     zerolog.Logger
}

var global = newRegistry(NumExitLevels)

func newRegistry(numLevels int) *registry {
	r := &registry{
		levels: make([]*queue.Queue, numLevels),
		log:    zerolog.Nop(),
	}
	for i := range r.levels {
		r.levels[i] = queue.New()
	}
	return r
}

// SetLogger routes registry logging through l.
func SetLogger(l zerolog.Logger) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.log = l
}

// RegisterExitHandler appends fn to the given level. Handlers registered
// after exit has begun are refused with api.ErrExiting and are not run.
func RegisterExitHandler(fn func(), level int) error {
	return global.register(fn, level)
}

func (r *registry) register(fn func(), level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exiting.Load() {
		return api.ErrExiting
	}
	if level < 0 || level >= len(r.levels) {
		return api.ErrInvalidLevel
	}
	r.levels[level].Add(fn)
	return nil
}

// ConfigureExitHandlers arms the process so the registered handlers run
// on SIGINT and SIGTERM. Normal termination paths call Exit instead of
// os.Exit directly. Safe to call more than once.
func ConfigureExitHandlers() {
	global.configure()
}

func (r *registry) configure() {
	r.mu.Lock()
	if r.armed {
		r.mu.Unlock()
		return
	}
	r.armed = true
	r.sigCh = make(chan os.Signal, 1)
	sigCh := r.sigCh
	r.mu.Unlock()

	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		r.log.Info().Str("signal", sig.String()).Msg("termination signal, running exit handlers")
		r.callExitHandlers()
		code := 1
		if s, ok := sig.(syscall.Signal); ok {
			code = 128 + int(s)
		}
		os.Exit(code)
	}()
}

// Exit runs the handlers and terminates the process.
func Exit(code int) {
	global.callExitHandlers()
	os.Exit(code)
}

// CallExitHandlers runs all registered handlers exactly once, level by
// level from 0 upward. Concurrent and re-entrant calls (a handler that
// requests exit) return immediately.
func CallExitHandlers() {
	global.callExitHandlers()
}

func (r *registry) callExitHandlers() {
	if !r.exiting.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	levels := r.levels
	r.mu.Unlock()
	for lvl, q := range levels {
		for i := 0; i < q.Length(); i++ {
			fn, ok := q.Get(i).(func())
			if !ok {
				continue
			}
			r.runHandler(lvl, i, fn)
		}
	}
}

// runHandler isolates a handler so a panic cannot stop the exit
// sequence.
func (r *registry) runHandler(level, idx int, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn().Int("level", level).Int("index", idx).
				Interface("panic", p).Msg("exit handler panicked, continuing")
		}
	}()
	fn()
}

// Exiting reports whether exit handling has begun.
func Exiting() bool {
	return global.exiting.Load()
}

// Reset discards all registered handlers and disarms signal handling,
// restoring the registry to its initial state with the given number of
// levels (0 selects the default). Call at startup to size the registry
// from configuration, before any handlers register; also used by tests
// and by hosts that re-initialize the firmware in-process.
func Reset(numLevels int) {
	if numLevels <= 0 {
		numLevels = NumExitLevels
	}
	global.mu.Lock()
	if global.sigCh != nil {
		signal.Stop(global.sigCh)
		close(global.sigCh)
		global.sigCh = nil
	}
	global.armed = false
	global.levels = make([]*queue.Queue, numLevels)
	for i := range global.levels {
		global.levels[i] = queue.New()
	}
	global.mu.Unlock()
	global.exiting.Store(false)
}
