// Package delegate lets a stable front-end identity forward calls to
// swappable backing implementations. A registry maps call signatures
// to the currently registered delegate; dispatch preserves the true
// external caller; and each delegate's private state lives in a
// hash-namespaced partition, so unrelated delegates registered at
// different times never alias the same storage.
package delegate

import (
	"errors"
	"sync"

	"github.com/multitoken-xyz/go-multitoken/principal"
)

var (
	// ErrNoDelegate is returned when a dispatched signature has no
	// registration, or its registration was revoked. Revocation
	// fails closed.
	ErrNoDelegate = errors.New("delegate: no delegate for signature")

	// ErrUnauthorized is returned when a non-administrative principal
	// attempts to change registrations.
	ErrUnauthorized = errors.New("delegate: caller is not the administrator")

	// ErrEmptySet is returned when a registration names no signatures.
	ErrEmptySet = errors.New("delegate: empty signature set")
)

// Delegate is a pluggable backing implementation. Handle observes the
// true external caller as the acting principal, not the dispatcher.
type Delegate interface {
	Handle(caller principal.Principal, signature string, args ...any) (any, error)
}

// Func adapts a plain function to the Delegate interface.
type Func func(caller principal.Principal, signature string, args ...any) (any, error)

// Handle implements Delegate.
func (f Func) Handle(caller principal.Principal, signature string, args ...any) (any, error) {
	return f(caller, signature, args...)
}

// registration is one signature set bound to a backing delegate.
// A nil delegate means the set is revoked.
type registration struct {
	setID      string
	label      string
	signatures []string
	delegate   Delegate
}

// Registry routes call signatures to registered delegates.
type Registry struct {
	mu    sync.RWMutex
	admin principal.Principal
	sets  map[string]*registration
	bySig map[string]string // signature -> set id
	state *StateStore
}

// NewRegistry creates a registry administered by admin.
func NewRegistry(admin principal.Principal) *Registry {
	return &Registry{
		admin: admin,
		sets:  make(map[string]*registration),
		bySig: make(map[string]string),
		state: NewStateStore(),
	}
}

// Register binds a signature set to a backing delegate, overwriting
// any prior registration for that set id. A nil delegate revokes the
// set: all routed signatures fail closed until a new delegate is
// registered. Administrative-only.
func (r *Registry) Register(caller principal.Principal, setID string, d Delegate, signatures []string, label string) error {
	if caller != r.admin {
		return ErrUnauthorized
	}
	if len(signatures) == 0 {
		return ErrEmptySet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Drop the previous set's signature routes before rebinding.
	if prev, ok := r.sets[setID]; ok {
		for _, sig := range prev.signatures {
			delete(r.bySig, sig)
		}
	}

	r.sets[setID] = &registration{
		setID:      setID,
		label:      label,
		signatures: append([]string(nil), signatures...),
		delegate:   d,
	}
	for _, sig := range signatures {
		r.bySig[sig] = setID
	}
	return nil
}

// Revoke clears the backing delegate for a set id while keeping its
// signature routes, so dispatches fail closed. Administrative-only.
func (r *Registry) Revoke(caller principal.Principal, setID string) error {
	if caller != r.admin {
		return ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if reg, ok := r.sets[setID]; ok {
		reg.delegate = nil
	}
	return nil
}

// Dispatch routes a call signature to its registered delegate,
// forwarding the original caller and propagating the delegate's
// result or failure verbatim.
func (r *Registry) Dispatch(caller principal.Principal, signature string, args ...any) (any, error) {
	r.mu.RLock()
	var d Delegate
	if setID, ok := r.bySig[signature]; ok {
		if reg, ok := r.sets[setID]; ok {
			d = reg.delegate
		}
	}
	r.mu.RUnlock()

	if d == nil {
		return nil, ErrNoDelegate
	}
	return d.Handle(caller, signature, args...)
}

// Label returns the human-readable label of a registration.
func (r *Registry) Label(setID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.sets[setID]
	if !ok {
		return "", false
	}
	return reg.label, true
}

// Routed reports whether a signature currently resolves to a live
// delegate.
func (r *Registry) Routed(signature string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	setID, ok := r.bySig[signature]
	if !ok {
		return false
	}
	reg, ok := r.sets[setID]
	return ok && reg.delegate != nil
}

// Partition returns the state partition for a registration key. The
// partition exists independently of the registration lifecycle, so a
// revoked-then-restored delegate finds its data intact while a
// different set id can never reach it.
func (r *Registry) Partition(setID string) *Partition {
	return r.state.Partition(setID)
}
