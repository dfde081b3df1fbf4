// Package ledger owns the balance and metadata state of the
// multi-asset ledger: which assets exist, who created them, and how
// many units each principal holds.
//
// The ledger is a pure state component. It enforces balance and
// creator invariants but performs no authorization beyond
// creator-only restrictions and emits no records; those concerns
// belong to the transfer engine and the token front end.
package ledger

import (
	"sort"
	"sync"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/principal"
)

// AssetID identifies one fungible-or-non-fungible asset class.
// Ids are allocated monotonically starting at 1; id 0 is reserved
// and never valid.
type AssetID uint64

// Scope is a grouping tag over asset ids. Assets created in the same
// batch share a scope, which lets an owner grant an operator rights
// over the whole group without enumerating ids.
type Scope uint64

// Asset holds the immutable and creator-mutable metadata of one asset.
type Asset struct {
	ID      AssetID
	Creator principal.Principal
	Name    string
	URI     string
	Scope   Scope
}

// Ledger is the balance and metadata store for all assets.
type Ledger struct {
	mu       sync.RWMutex
	nextID   AssetID
	assets   map[AssetID]*Asset
	balances map[AssetID]map[principal.Principal]*uint256.Int
	supply   map[AssetID]*uint256.Int
}

// New creates an empty ledger. The first created asset receives id 1.
func New() *Ledger {
	return &Ledger{
		nextID:   1,
		assets:   make(map[AssetID]*Asset),
		balances: make(map[AssetID]map[principal.Principal]*uint256.Int),
		supply:   make(map[AssetID]*uint256.Int),
	}
}

// Create allocates the next asset id, records metadata, and credits
// the creator with the initial quantity. A zero initial quantity is
// valid: the asset exists with no balance records. The new asset's
// scope is its own id.
func (l *Ledger) Create(creator principal.Principal, name string, quantity *uint256.Int, uri string) (AssetID, error) {
	if creator.IsZero() {
		return 0, ErrInvalidRecipient
	}
	if quantity == nil {
		return 0, ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.allocate(creator, name, uri, 0)
	if !quantity.IsZero() {
		l.credit(id, creator, quantity)
	}
	return id, nil
}

// CreateBatch allocates consecutive asset ids in one operation. All
// assets of the batch share one scope: the first id of the batch.
// Initial quantities are credited to the creator.
func (l *Ledger) CreateBatch(creator principal.Principal, names []string, quantities []*uint256.Int, uris []string) ([]AssetID, error) {
	if creator.IsZero() {
		return nil, ErrInvalidRecipient
	}
	if len(names) != len(quantities) || len(quantities) != len(uris) {
		return nil, ErrLengthMismatch
	}
	for _, q := range quantities {
		if q == nil {
			return nil, ErrInvalidQuantity
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	scope := Scope(l.nextID)
	ids := make([]AssetID, len(names))
	for i := range names {
		ids[i] = l.allocate(creator, names[i], uris[i], scope)
		if !quantities[i].IsZero() {
			l.credit(ids[i], creator, quantities[i])
		}
	}
	return ids, nil
}

// allocate assigns the next id. Caller holds the write lock.
// A zero scope means "use the new id itself".
func (l *Ledger) allocate(creator principal.Principal, name, uri string, scope Scope) AssetID {
	id := l.nextID
	l.nextID++
	if scope == 0 {
		scope = Scope(id)
	}
	l.assets[id] = &Asset{
		ID:      id,
		Creator: creator,
		Name:    name,
		URI:     uri,
		Scope:   scope,
	}
	l.balances[id] = make(map[principal.Principal]*uint256.Int)
	l.supply[id] = uint256.NewInt(0)
	return id
}

// RestoreAsset recreates an asset with explicit metadata. Used when
// rebuilding ledger state from the record history; the id must be the
// next sequential id so replay preserves the original allocation.
func (l *Ledger) RestoreAsset(a Asset) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a.ID != l.nextID {
		return ErrUnknownAsset
	}
	l.nextID++
	cp := a
	l.assets[a.ID] = &cp
	l.balances[a.ID] = make(map[principal.Principal]*uint256.Int)
	l.supply[a.ID] = uint256.NewInt(0)
	return nil
}

// Mint increases balances of an existing asset. Only the asset's
// original creator may mint.
func (l *Ledger) Mint(caller principal.Principal, id AssetID, recipients []principal.Principal, quantities []*uint256.Int) error {
	if len(recipients) != len(quantities) {
		return ErrLengthMismatch
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[id]
	if !ok {
		return ErrUnknownAsset
	}
	if a.Creator != caller {
		return ErrUnauthorized
	}
	for i, r := range recipients {
		if r.IsZero() {
			return ErrInvalidRecipient
		}
		if quantities[i] == nil {
			return ErrInvalidQuantity
		}
	}

	for i, r := range recipients {
		l.credit(id, r, quantities[i])
	}
	return nil
}

// Burn removes quantity units of an asset from the owner's balance
// and from the cumulative supply. Authorization for burning on
// another principal's behalf is the transfer engine's concern; the
// ledger only enforces the balance invariant.
func (l *Ledger) Burn(id AssetID, owner principal.Principal, quantity *uint256.Int) error {
	if quantity == nil {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.assets[id]; !ok {
		return ErrUnknownAsset
	}
	if err := l.debit(id, owner, quantity); err != nil {
		return err
	}
	l.supply[id].Sub(l.supply[id], quantity)
	return nil
}

// SetURI overwrites the asset's URI. Restricted to the creator.
func (l *Ledger) SetURI(caller principal.Principal, id AssetID, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.assets[id]
	if !ok {
		return ErrUnknownAsset
	}
	if a.Creator != caller {
		return ErrUnauthorized
	}
	a.URI = uri
	return nil
}

// BalanceOf returns the owner's balance for an asset. Unknown asset
// ids fail with ErrUnknownAsset, which is deliberately distinct from
// a valid zero balance.
func (l *Ledger) BalanceOf(id AssetID, owner principal.Principal) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.assets[id]; !ok {
		return nil, ErrUnknownAsset
	}
	if b, ok := l.balances[id][owner]; ok {
		return b.Clone(), nil
	}
	return uint256.NewInt(0), nil
}

// BalanceOfBatch returns position-wise balances for parallel owner
// and asset-id arrays.
func (l *Ledger) BalanceOfBatch(owners []principal.Principal, ids []AssetID) ([]*uint256.Int, error) {
	if len(owners) != len(ids) {
		return nil, ErrLengthMismatch
	}

	out := make([]*uint256.Int, len(owners))
	for i := range owners {
		b, err := l.BalanceOf(ids[i], owners[i])
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// Asset returns a copy of the asset's metadata.
func (l *Ledger) Asset(id AssetID) (Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.assets[id]
	if !ok {
		return Asset{}, ErrUnknownAsset
	}
	return *a, nil
}

// ScopeOf returns the asset's scope tag.
func (l *Ledger) ScopeOf(id AssetID) (Scope, error) {
	a, err := l.Asset(id)
	if err != nil {
		return 0, err
	}
	return a.Scope, nil
}

// CreatorOf returns the asset's creator.
func (l *Ledger) CreatorOf(id AssetID) (principal.Principal, error) {
	a, err := l.Asset(id)
	if err != nil {
		return principal.Zero, err
	}
	return a.Creator, nil
}

// Supply returns the cumulative minted quantity minus burns.
func (l *Ledger) Supply(id AssetID) (*uint256.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.supply[id]
	if !ok {
		return nil, ErrUnknownAsset
	}
	return s.Clone(), nil
}

// Exists reports whether the asset id was ever created.
func (l *Ledger) Exists(id AssetID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.assets[id]
	return ok
}

// Credit adds quantity units of an existing asset to the recipient.
// Used by the transfer engine; Create and Mint credit internally.
func (l *Ledger) Credit(id AssetID, to principal.Principal, quantity *uint256.Int) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if quantity == nil {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.assets[id]; !ok {
		return ErrUnknownAsset
	}
	bal, ok := l.balances[id][to]
	if !ok {
		bal = uint256.NewInt(0)
		l.balances[id][to] = bal
	}
	bal.Add(bal, quantity)
	return nil
}

// Debit removes quantity units of an existing asset from the owner.
func (l *Ledger) Debit(id AssetID, from principal.Principal, quantity *uint256.Int) error {
	if quantity == nil {
		return ErrInvalidQuantity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.assets[id]; !ok {
		return ErrUnknownAsset
	}
	return l.debit(id, from, quantity)
}

// credit adds to a balance and the cumulative supply.
// Caller holds the write lock and has validated the asset.
func (l *Ledger) credit(id AssetID, to principal.Principal, quantity *uint256.Int) {
	bal, ok := l.balances[id][to]
	if !ok {
		bal = uint256.NewInt(0)
		l.balances[id][to] = bal
	}
	bal.Add(bal, quantity)
	l.supply[id].Add(l.supply[id], quantity)
}

// debit subtracts from a balance. Caller holds the write lock and has
// validated the asset.
func (l *Ledger) debit(id AssetID, from principal.Principal, quantity *uint256.Int) error {
	bal, ok := l.balances[id][from]
	if !ok || bal.Lt(quantity) {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, quantity)
	if bal.IsZero() {
		delete(l.balances[id], from)
	}
	return nil
}

// AssetIDs returns all created asset ids in ascending order.
func (l *Ledger) AssetIDs() []AssetID {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]AssetID, 0, len(l.assets))
	for id := range l.assets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Holders returns the principals with a non-zero balance of the
// asset, sorted for deterministic iteration.
func (l *Ledger) Holders(id AssetID) []principal.Principal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	holders := make([]principal.Principal, 0, len(l.balances[id]))
	for p := range l.balances[id] {
		holders = append(holders, p)
	}
	sort.Slice(holders, func(i, j int) bool { return holders[i] < holders[j] })
	return holders
}
