// Package evaluator walks a chain event against a set of chainhook
// predicates and produces the ordered trigger list spec.md §4.3 describes.
// It is deliberately synchronous and side-effect-free: the only mutable
// state is the per-hook occurrence Registry, which the embedding
// environment can seed on startup to implement restart semantics.
package evaluator

import "sync"

// Registry is a process-local, per-chainhook-uuid occurrence counter. It is
// incremented once per trigger emission (never per matching transaction)
// and is the sole piece of mutable state the evaluator touches.
type Registry struct {
	mu     sync.Mutex
	counts map[string]uint64
}

// NewRegistry creates a Registry, optionally seeded with prior counts so an
// embedder can restore state across a process restart.
func NewRegistry(seed map[string]uint64) *Registry {
	counts := make(map[string]uint64, len(seed))
	for k, v := range seed {
		counts[k] = v
	}
	return &Registry{counts: counts}
}

// Count returns the current occurrence count for uuid (zero if unseen).
func (r *Registry) Count(uuid string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[uuid]
}

// Increment bumps uuid's counter by one and returns the new value. The
// increment and the subsequent expiry comparison in Evaluate happen while
// holding no lock across the two calls, but since a single Registry is only
// ever driven by one synchronous Evaluate call at a time per spec.md §5,
// this is not a race in practice; embedders running concurrent evaluators
// against the same Registry must synchronize externally.
func (r *Registry) Increment(uuid string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[uuid]++
	return r.counts[uuid]
}

// Expired reports whether uuid's current count has reached threshold.
// A nil threshold (no expire_after_occurrence configured) never expires.
func (r *Registry) Expired(uuid string, threshold *uint64) bool {
	if threshold == nil {
		return false
	}
	return r.Count(uuid) >= *threshold
}

// Snapshot returns a copy of the current counts, suitable for persisting
// across a restart and feeding back into NewRegistry.
func (r *Registry) Snapshot() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}
