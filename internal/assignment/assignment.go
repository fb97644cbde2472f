// Package assignment maintains the model assignment mirror: which model is
// bound to each component type and how far its lifecycle has progressed.
package assignment

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/arvik-ai/runtime-bridge/internal/component"
)

// Status tracks the lifecycle of an assigned model.
type Status string

const (
	StatusUnassigned Status = "unassigned"
	StatusAssigned   Status = "assigned"
	StatusLoading    Status = "loading"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// Entry is the per-component assignment record. Last write wins.
type Entry struct {
	Component     component.Type
	ModelID       string
	Status        Status
	FailureReason string
	AssignedAt    time.Time
	UpdatedAt     time.Time
}

// Listener receives the entry after every mutation. Callbacks run
// synchronously on the mutating goroutine and outside the registry lock; the
// callee must not block.
type Listener func(Entry)

// Registry is the in-memory assignment mirror. Safe for concurrent use.
type Registry struct {
	log *slog.Logger

	mu      sync.RWMutex
	entries map[component.Type]Entry

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
	stopped   bool

	now func() time.Time
}

// New returns an empty assignment registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		log:       logger.With("component", "assignment.Registry"),
		entries:   map[component.Type]Entry{},
		listeners: map[uint64]Listener{},
		now:       time.Now,
	}
}

// Assign binds a model to a component, resetting status to assigned.
func (r *Registry) Assign(typ component.Type, modelID string) Entry {
	r.mu.Lock()
	now := r.now()
	e := Entry{
		Component:  typ,
		ModelID:    modelID,
		Status:     StatusAssigned,
		AssignedAt: now,
		UpdatedAt:  now,
	}
	r.entries[typ] = e
	r.mu.Unlock()

	r.log.Info("model assigned", "type", typ, "model_id", modelID)
	r.dispatch(e)
	return e
}

// Unassign removes the assignment for a component. It reports whether an
// entry existed.
func (r *Registry) Unassign(typ component.Type) bool {
	r.mu.Lock()
	prev, ok := r.entries[typ]
	if ok {
		delete(r.entries, typ)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.log.Info("model unassigned", "type", typ, "model_id", prev.ModelID)
	prev.Status = StatusUnassigned
	prev.UpdatedAt = r.now()
	r.dispatch(prev)
	return true
}

// UpdateStatus advances the lifecycle of an existing assignment. The failure
// reason is recorded only for StatusFailed and cleared otherwise. Unknown
// components report false.
func (r *Registry) UpdateStatus(typ component.Type, status Status, reason string) (Entry, bool) {
	r.mu.Lock()
	e, ok := r.entries[typ]
	if !ok {
		r.mu.Unlock()
		return Entry{}, false
	}
	e.Status = status
	if status == StatusFailed {
		e.FailureReason = reason
	} else {
		e.FailureReason = ""
	}
	e.UpdatedAt = r.now()
	r.entries[typ] = e
	r.mu.Unlock()

	r.log.Debug("assignment status updated", "type", typ, "status", status, "reason", reason)
	r.dispatch(e)
	return e, true
}

// Get returns the entry for a component, reporting false for unknown keys.
func (r *Registry) Get(typ component.Type) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typ]
	return e, ok
}

// Snapshot returns a copy of every entry.
func (r *Registry) Snapshot() map[component.Type]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[component.Type]Entry, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Clear drops every entry and stops listener dispatch. Called on shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	n := len(r.entries)
	r.entries = map[component.Type]Entry{}
	r.mu.Unlock()

	r.lmu.Lock()
	r.stopped = true
	r.lmu.Unlock()

	if n > 0 {
		r.log.Info("assignments cleared", "count", n)
	}
}

// Subscribe registers a listener and returns its id.
func (r *Registry) Subscribe(fn Listener) uint64 {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	r.nextID++
	id := r.nextID
	r.listeners[id] = fn
	return id
}

// Unsubscribe removes a listener; unknown ids are ignored.
func (r *Registry) Unsubscribe(id uint64) {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	delete(r.listeners, id)
}

// dispatch invokes listeners in registration order, re-checking the stop flag
// between invocations so Clear takes effect mid-dispatch.
func (r *Registry) dispatch(e Entry) {
	r.lmu.Lock()
	ids := make([]uint64, 0, len(r.listeners))
	for id := range r.listeners {
		ids = append(ids, id)
	}
	r.lmu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		r.lmu.Lock()
		stopped := r.stopped
		fn := r.listeners[id]
		r.lmu.Unlock()
		if stopped || fn == nil {
			return
		}
		fn(e)
	}
}
