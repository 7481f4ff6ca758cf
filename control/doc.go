// Package control
// Author: tohara <tohara@users.noreply.github.com>
//
// Runtime control plane for the scheduler: file configuration with sane
// defaults, a live key/value store whose updates propagate to running
// components, runtime metrics, and debug introspection probes.
//
// Provides concurrent-safe state handling primitives including:
//   - YAML file config with defaults and sanity clamps
//   - Immutable snapshot config reads and atomic updates
//   - Reload listeners for hot tunable changes
//   - Metrics registry and debug probe registration
package control
