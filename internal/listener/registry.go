// Package listener holds insertion-ordered listener sets that are safe to
// mutate while another goroutine enumerates them.
package listener

import (
	"reflect"
	"sync"
)

// Registry is an insertion-ordered multiset of listeners. Listeners are matched
// with ==, so pointers are the usual choice. A listener whose dynamic type is
// not comparable (a func type, or a struct holding a slice) can be added and
// enumerated but never matches in Remove or RemoveAll; only Clear drops it.
//
// Several registries may share one mutex so that mutation and enumeration across
// all of them form a single critical section.
type Registry[L comparable] struct {
	mu        *sync.Mutex
	listeners []L
}

// NewRegistry returns an empty registry guarded by mu. A nil mu gets a private mutex.
func NewRegistry[L comparable](mu *sync.Mutex) *Registry[L] {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Registry[L]{mu: mu}
}

func (r *Registry[L]) Add(l L) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// AddAll appends listeners in argument order
func (r *Registry[L]) AddAll(ls ...L) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, ls...)
}

// Remove drops the first occurrence of l. Removing an absent listener does nothing.
func (r *Registry[L]) Remove(l L) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.listeners {
		if same(existing, l) {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return
		}
	}
}

// RemoveAll drops every occurrence of each of ls
func (r *Registry[L]) RemoveAll(ls ...L) {
	if len(ls) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]L, 0, len(r.listeners))
	for _, existing := range r.listeners {
		if !contains(ls, existing) {
			kept = append(kept, existing)
		}
	}
	r.listeners = kept
}

func (r *Registry[L]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = nil
}

func (r *Registry[L]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// Snapshot returns a copy of the listeners in registration order. The caller
// may invoke them freely; the registry lock is not held.
func (r *Registry[L]) Snapshot() []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.listeners) == 0 {
		return nil
	}
	out := make([]L, len(r.listeners))
	copy(out, r.listeners)
	return out
}

func contains[L comparable](ls []L, l L) bool {
	for _, candidate := range ls {
		if same(candidate, l) {
			return true
		}
	}
	return false
}

// same is == that reports false instead of panicking on uncomparable dynamic types
func same[L comparable](a, b L) bool {
	if v := reflect.ValueOf(a); v.IsValid() && !v.Comparable() {
		return false
	}
	return a == b
}
