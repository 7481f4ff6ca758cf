// control/config.go
// Author: tohara <tohara@users.noreply.github.com>
//
// Thread-safe store for live scheduler tunables with reload propagation.

package control

import (
	"sync"
)

// Well-known tunable keys.
const (
	KeyBufferSize = "sched.buffer_size"
	KeyIdleWaitMS = "sched.idle_wait_ms"
)

// ConfigStore is a dynamic key/value map with atomic snapshot and
// listener support. Components register a reload listener and re-read
// the keys they care about when it fires.
type ConfigStore struct {
	mu        sync.RWMutex
	config    map[string]any
	listeners []func()
}

// NewConfigStore initializes a new config store with empty data.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		config:    make(map[string]any),
		listeners: make([]func(), 0),
	}
}

// GetSnapshot returns a copy of all config values.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make(map[string]any, len(cs.config))
	for k, v := range cs.config {
		out[k] = v
	}
	return out
}

// Set updates a single key and dispatches reload listeners.
func (cs *ConfigStore) Set(key string, value any) {
	cs.SetConfig(map[string]any{key: value})
}

// SetConfig merges new values and dispatches reload listeners
// synchronously, so a caller observes the effect on return.
func (cs *ConfigStore) SetConfig(newCfg map[string]any) {
	cs.mu.Lock()
	for k, v := range newCfg {
		cs.config[k] = v
	}
	listeners := append([]func(){}, cs.listeners...)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn func()) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
