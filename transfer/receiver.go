package transfer

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
)

// Ack is the 4-byte acknowledgement value a receiver returns to
// accept a transfer. Any other value rejects it.
type Ack [4]byte

var (
	// AckSingle accepts a single transfer.
	AckSingle = Ack{0xf2, 0x3a, 0x6e, 0x61}

	// AckBatch accepts a batch transfer.
	AckBatch = Ack{0xbc, 0x19, 0x7c, 0x81}
)

// Receiver is the acknowledgement endpoint a contract-like principal
// exposes. The engine invokes it after debits and credits are applied
// and commits only when the matching sentinel comes back.
type Receiver interface {
	OnTransferReceived(operator, from principal.Principal, id ledger.AssetID, quantity *uint256.Int, data []byte) (Ack, error)
	OnBatchTransferReceived(operator, from principal.Principal, ids []ledger.AssetID, quantities []*uint256.Int, data []byte) (Ack, error)
}

// ReceiverResolver distinguishes contract-like principals from plain
// accounts. A contract-like principal without an endpoint fails every
// transfer sent to it; a plain account skips acknowledgement.
type ReceiverResolver interface {
	// Resolve returns the principal's receiver endpoint (nil if it
	// exposes none) and whether the principal is contract-like.
	Resolve(p principal.Principal) (Receiver, bool)
}

// ResolverMap is a ReceiverResolver backed by explicit registration.
type ResolverMap struct {
	mu        sync.RWMutex
	endpoints map[principal.Principal]Receiver
	contracts map[principal.Principal]bool
}

// NewResolverMap creates an empty resolver. Unregistered principals
// are plain accounts.
func NewResolverMap() *ResolverMap {
	return &ResolverMap{
		endpoints: make(map[principal.Principal]Receiver),
		contracts: make(map[principal.Principal]bool),
	}
}

// RegisterContract marks p as contract-like with the given endpoint.
// A nil endpoint models a contract that lacks the receiver entry
// point entirely; transfers to it fail.
func (m *ResolverMap) RegisterContract(p principal.Principal, r Receiver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[p] = true
	if r == nil {
		delete(m.endpoints, p)
	} else {
		m.endpoints[p] = r
	}
}

// Resolve implements ReceiverResolver.
func (m *ResolverMap) Resolve(p principal.Principal) (Receiver, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.endpoints[p], m.contracts[p]
}

var _ ReceiverResolver = (*ResolverMap)(nil)
