package control_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tohara/printipi/control"
)

func TestLoadDefaultsOnEmptyPath(t *testing.T) {
	cfg := control.Load("")
	if cfg.BufferSize != 512 || cfg.RTPriority != 30 || cfg.IdleWaitMS != 100 || cfg.ExitLevels != 2 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadDefaultsOnMissingFile(t *testing.T) {
	cfg := control.Load("/nonexistent/printipi.yaml")
	if cfg.BufferSize != 512 {
		t.Errorf("BufferSize = %d, want default 512", cfg.BufferSize)
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "printipi.yaml")
	data := []byte("buffer_size: 64\nrt_priority: -5\nidle_wait_ms: 250\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := control.Load(path)
	if cfg.BufferSize != 64 {
		t.Errorf("BufferSize = %d, want 64", cfg.BufferSize)
	}
	if cfg.RTPriority != 30 {
		t.Errorf("RTPriority = %d, want clamped default 30", cfg.RTPriority)
	}
	if cfg.IdleWaitMS != 250 {
		t.Errorf("IdleWaitMS = %d, want 250", cfg.IdleWaitMS)
	}
}

func TestConfigStoreReloadListeners(t *testing.T) {
	cs := control.NewConfigStore()
	fired := 0
	cs.OnReload(func() { fired++ })

	cs.Set(control.KeyBufferSize, 128)
	if fired != 1 {
		t.Errorf("listener fired %d times, want 1", fired)
	}
	snap := cs.GetSnapshot()
	if snap[control.KeyBufferSize] != 128 {
		t.Errorf("snapshot value = %v, want 128", snap[control.KeyBufferSize])
	}

	// Snapshots are copies: mutating one must not leak back.
	snap[control.KeyBufferSize] = 1
	if cs.GetSnapshot()[control.KeyBufferSize] != 128 {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestMetricsRegistrySnapshot(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Set("sched.dispatched", int64(42))
	out := mr.GetSnapshot()
	if out["sched.dispatched"] != int64(42) {
		t.Errorf("snapshot = %v", out)
	}
	if mr.LastUpdated().IsZero() {
		t.Error("LastUpdated not recorded")
	}
}

func TestDebugProbes(t *testing.T) {
	dp := control.NewDebugProbes()
	control.RegisterPlatformProbes(dp)
	dp.RegisterProbe("answer", func() any { return 42 })

	state := dp.DumpState()
	if state["answer"] != 42 {
		t.Errorf("probe answer = %v, want 42", state["answer"])
	}
	if _, ok := state["platform.cpus"]; !ok {
		t.Error("platform probes missing")
	}
}
