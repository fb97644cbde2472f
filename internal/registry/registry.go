// Package registry maintains the service registry mirror: the state,
// capabilities, and version last reported for each service type.
package registry

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/arvik-ai/runtime-bridge/internal/component"
)

// Entry is the per-service record. Last write wins.
type Entry struct {
	Service      component.ServiceType
	State        component.ServiceState
	Capabilities component.Capability
	Version      string
	LastError    string
	UpdatedAt    time.Time
}

// Listener receives the entry after every mutation, synchronously and outside
// the registry lock.
type Listener func(Entry)

// Registry is the in-memory service mirror. Safe for concurrent use.
type Registry struct {
	log *slog.Logger

	mu      sync.RWMutex
	entries map[component.ServiceType]Entry

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
	stopped   bool

	now func() time.Time
}

// New returns an empty service registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		log:       logger.With("component", "registry.Registry"),
		entries:   map[component.ServiceType]Entry{},
		listeners: map[uint64]Listener{},
		now:       time.Now,
	}
}

// Set records the latest report for a service, replacing any previous entry.
func (r *Registry) Set(svc component.ServiceType, state component.ServiceState, caps component.Capability, version, lastError string) Entry {
	r.mu.Lock()
	e := Entry{
		Service:      svc,
		State:        state,
		Capabilities: caps,
		Version:      version,
		LastError:    lastError,
		UpdatedAt:    r.now(),
	}
	r.entries[svc] = e
	r.mu.Unlock()

	r.log.Debug("service updated",
		"service", svc,
		"state", state,
		"capabilities", caps.String(),
		"version", version,
	)
	r.dispatch(e)
	return e
}

// Get returns the entry for a service, reporting false for unknown keys.
func (r *Registry) Get(svc component.ServiceType) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[svc]
	return e, ok
}

// Remove drops the entry for a service, reporting whether one existed.
func (r *Registry) Remove(svc component.ServiceType) bool {
	r.mu.Lock()
	prev, ok := r.entries[svc]
	if ok {
		delete(r.entries, svc)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.log.Info("service removed", "service", svc)
	prev.State = component.StateUnavailable
	prev.UpdatedAt = r.now()
	r.dispatch(prev)
	return true
}

// List returns a copy of every entry.
func (r *Registry) List() map[component.ServiceType]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[component.ServiceType]Entry, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

// Clear drops every entry and stops listener dispatch. Called on shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	n := len(r.entries)
	r.entries = map[component.ServiceType]Entry{}
	r.mu.Unlock()

	r.lmu.Lock()
	r.stopped = true
	r.lmu.Unlock()

	if n > 0 {
		r.log.Info("services cleared", "count", n)
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
