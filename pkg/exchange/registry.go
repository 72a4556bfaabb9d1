// Package exchange tracks the last-observed protocol state of credential
// and presentation exchanges so duplicate webhook deliveries can be
// suppressed. Exchange-event delivery is at-least-once; consumers must be
// idempotent.
package exchange

import "sync"

// Registry maps exchange identifiers to their last-observed state.
// Entries are never evicted; the registry is session-scoped and grows with
// the number of exchanges for the process lifetime.
type Registry struct {
	mu     sync.RWMutex
	states map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[string]string)}
}

// ShouldProcess reports whether a notification carrying newState for
// exchangeID should be handled. A notification repeating the last recorded
// state is a duplicate: it is suppressed and the registry is left untouched.
// Otherwise the state is recorded and true is returned.
func (r *Registry) ShouldProcess(exchangeID, newState string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.states[exchangeID]; ok && prev == newState {
		return false
	}
	r.states[exchangeID] = newState
	return true
}

// Forget drops the record for exchangeID if it still holds state. Callers
// use it to undo a ShouldProcess record when handling the notification
// failed, so the agent's redelivery is processed instead of suppressed.
func (r *Registry) Forget(exchangeID, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.states[exchangeID]; ok && prev == state {
		delete(r.states, exchangeID)
	}
}

// State returns the last recorded state for exchangeID, if any.
func (r *Registry) State(exchangeID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[exchangeID]
	return state, ok
}

// Len returns the number of tracked exchanges.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.states)
}
