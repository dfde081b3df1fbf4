package delegate

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Namespace derives the storage namespace for a registration key.
// The derivation is deterministic and collision-resistant, so two
// delegates registered under different keys can never alias the same
// slot, regardless of registration order.
func Namespace(registrationKey string) string {
	hash := sha256.Sum256([]byte("delegate:" + registrationKey))
	return "ns:" + hex.EncodeToString(hash[:16])
}

// StateStore holds delegate-private state. Every access goes through
// a Partition; there are no raw shared slots in the API, which rules
// out the failure class where a later-registered delegate overwrites
// an earlier one's data by reusing a slot index.
type StateStore struct {
	mu    sync.RWMutex
	slots map[string]map[string]any
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{slots: make(map[string]map[string]any)}
}

// Partition returns the view of the store scoped to the registration
// key's namespace. Partitions for the same key observe the same data;
// partitions for different keys are disjoint.
func (s *StateStore) Partition(registrationKey string) *Partition {
	return &Partition{store: s, ns: Namespace(registrationKey)}
}

// Partition is a delegate's private window into the state store.
type Partition struct {
	store *StateStore
	ns    string
}

// Namespace returns the partition's derived namespace.
func (p *Partition) Namespace() string {
	return p.ns
}

// Set stores a value under the partition's namespace.
func (p *Partition) Set(key string, value any) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	slots, ok := p.store.slots[p.ns]
	if !ok {
		slots = make(map[string]any)
		p.store.slots[p.ns] = slots
	}
	slots[key] = value
}

// Get retrieves a value from the partition.
func (p *Partition) Get(key string) (any, bool) {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()

	v, ok := p.store.slots[p.ns][key]
	return v, ok
}

// Delete removes a key from the partition.
func (p *Partition) Delete(key string) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	delete(p.store.slots[p.ns], key)
}

// Keys returns the partition's keys. Order is unspecified.
func (p *Partition) Keys() []string {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()

	keys := make([]string, 0, len(p.store.slots[p.ns]))
	for k := range p.store.slots[p.ns] {
		keys = append(keys, k)
	}
	return keys
}
