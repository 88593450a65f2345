// Package breaker tracks per-source admission state in memory: a
// source that fails repeatedly is temporarily excluded from sweeps
// without an explicit half-open probe step.
package breaker

import (
	"sync"
	"time"

	"newsroom/config"
	"newsroom/types"
)

// Registry is the single shared mutable structure in the pipeline;
// every access is serialized behind mu. Callers construct one Registry
// and pass it to every collaborator that needs admission decisions —
// there is no package-level singleton.
type Registry struct {
	mu     sync.Mutex
	states map[string]*types.CircuitState
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{states: make(map[string]*types.CircuitState)}
}

// Admit reports whether sourceID may be fetched right now. A source
// with no entry is closed (admit). An open source becomes admissible
// again once the open window has elapsed, at which point its entry is
// discarded so the next outcome drives the decision fresh.
func (r *Registry) Admit(sourceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[sourceID]
	if !ok || !state.Open {
		return true
	}

	if time.Since(state.LastFailureAt) > time.Duration(config.BreakerOpenWindowMS)*time.Millisecond {
		delete(r.states, sourceID)
		return true
	}
	return false
}

// RecordSuccess clears any tracked failure state for sourceID.
func (r *Registry) RecordSuccess(sourceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, sourceID)
}

// RecordFailure increments the failure count for sourceID and opens
// the breaker once the threshold is reached.
func (r *Registry) RecordFailure(sourceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[sourceID]
	if !ok {
		state = &types.CircuitState{}
		r.states[sourceID] = state
	}
	state.Failures++
	state.LastFailureAt = time.Now()
	if state.Failures >= config.BreakerFailureThreshold {
		state.Open = true
	}
}

// Reset is an administrative override: it unconditionally deletes the
// tracked state for sourceID regardless of failure count or window.
func (r *Registry) Reset(sourceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, sourceID)
}

// Snapshot returns a defensive copy of the current per-source state,
// safe for a caller to read without holding the registry's lock.
func (r *Registry) Snapshot() map[string]types.CircuitState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]types.CircuitState, len(r.states))
	for id, s := range r.states {
		out[id] = *s
	}
	return out
}
