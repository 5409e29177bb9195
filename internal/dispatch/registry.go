package dispatch

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Registry stores providers by id. At most one provider is kept per id; the
// last registration wins. It is safe for concurrent use, and Snapshot never
// holds the lock for longer than a map copy.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Provider)}
}

// Register inserts or replaces p under its id and reports whether a provider
// with that id already existed. A nil provider or an empty id is rejected
// with an invalid-argument error and leaves the registry unchanged.
func (r *Registry) Register(p Provider) (bool, error) {
	id, err := providerID(p)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.items[id]
	r.items[id] = p
	return existed, nil
}

// providerID validates p and returns its trimmed id. Nil interfaces, typed
// nil pointers and ID methods that panic are invalid arguments.
func providerID(p Provider) (id string, err error) {
	if p == nil {
		return "", invalidArgumentError{msg: "provider must not be nil"}
	}
	switch v := reflect.ValueOf(p); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return "", invalidArgumentError{msg: "provider must not be nil"}
		}
	}
	defer func() {
		if r := recover(); r != nil {
			id, err = "", invalidArgumentError{msg: fmt.Sprintf("provider id: %v", r)}
		}
	}()
	id = strings.TrimSpace(p.ID())
	if id == "" {
		return "", invalidArgumentError{msg: "provider id must not be empty"}
	}
	return id, nil
}

// Get returns the provider registered under id.
func (r *Registry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	return p, ok
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Snapshot returns the current providers ordered by id. The slice is owned
// by the caller; later registrations do not affect it.
func (r *Registry) Snapshot() []Provider {
	r.mu.RLock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Provider, len(ids))
	for i, id := range ids {
		out[i] = r.items[id]
	}
	r.mu.RUnlock()
	return out
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear removes every provider.
func (r *Registry) Clear() {
	r.mu.Lock()
	clear(r.items)
	r.mu.Unlock()
}
