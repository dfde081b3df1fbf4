// Package approval owns the operator-approval relations of the
// ledger: global approvals, scope-limited approvals, and per-asset
// allowances with compare-and-swap updates.
//
// The registry answers "may this operator act on this owner's asset"
// without side effects; allowance consumption happens in the transfer
// engine so that the checking path stays pure.
package approval

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
)

var (
	// ErrStaleApproval is returned when Approve's expected current
	// allowance does not match the stored allowance. This is the
	// compare-and-swap protection against the classic approve race.
	ErrStaleApproval = errors.New("approval: stale expected allowance")

	// ErrInvalidOperator is returned when the operator or spender is
	// the null principal.
	ErrInvalidOperator = errors.New("approval: invalid operator")

	// ErrInvalidQuantity is returned when a nil allowance is supplied.
	ErrInvalidQuantity = errors.New("approval: nil quantity")
)

// GlobalScope is the sentinel scope meaning "all assets regardless of
// scope tag". Asset ids, and therefore real scopes, start at 1.
const GlobalScope ledger.Scope = 0

// ScopeSource resolves an asset id to its scope tag. Satisfied by
// *ledger.Ledger.
type ScopeSource interface {
	ScopeOf(id ledger.AssetID) (ledger.Scope, error)
}

type operatorKey struct {
	owner    principal.Principal
	operator principal.Principal
	scope    ledger.Scope
}

type allowanceKey struct {
	id      ledger.AssetID
	owner   principal.Principal
	spender principal.Principal
}

// Registry stores all approval relations keyed by owner.
type Registry struct {
	mu         sync.RWMutex
	scopes     ScopeSource
	operators  map[operatorKey]bool
	allowances map[allowanceKey]*uint256.Int
}

// NewRegistry creates an empty registry resolving scopes through src.
func NewRegistry(src ScopeSource) *Registry {
	return &Registry{
		scopes:     src,
		operators:  make(map[operatorKey]bool),
		allowances: make(map[allowanceKey]*uint256.Int),
	}
}

// SetApprovalForAll idempotently sets or clears the
// (owner, operator, scope) relation. GlobalScope grants rights over
// all of the owner's assets; a concrete scope limits the grant to
// assets carrying that scope tag.
func (r *Registry) SetApprovalForAll(owner, operator principal.Principal, scope ledger.Scope, approved bool) error {
	if operator.IsZero() {
		return ErrInvalidOperator
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := operatorKey{owner: owner, operator: operator, scope: scope}
	if approved {
		r.operators[key] = true
	} else {
		delete(r.operators, key)
	}
	return nil
}

// Approve sets the per-asset allowance for a spender, but only if the
// stored allowance currently equals expectedCurrent. A missing
// allowance compares equal to zero.
func (r *Registry) Approve(owner, spender principal.Principal, id ledger.AssetID, expectedCurrent, newAllowance *uint256.Int) error {
	if spender.IsZero() {
		return ErrInvalidOperator
	}
	if expectedCurrent == nil || newAllowance == nil {
		return ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := allowanceKey{id: id, owner: owner, spender: spender}
	current := r.allowances[key]
	if current == nil {
		current = uint256.NewInt(0)
	}
	if !current.Eq(expectedCurrent) {
		return ErrStaleApproval
	}

	if newAllowance.IsZero() {
		delete(r.allowances, key)
	} else {
		r.allowances[key] = newAllowance.Clone()
	}
	return nil
}

// Allowance returns the remaining quantity the spender may move on
// the owner's behalf for one asset.
func (r *Registry) Allowance(owner, spender principal.Principal, id ledger.AssetID) *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.allowances[allowanceKey{id: id, owner: owner, spender: spender}]; ok {
		return a.Clone()
	}
	return uint256.NewInt(0)
}

// HasOperator reports whether the operator holds a global approval or
// a scoped approval matching the asset's scope tag. Allowances are
// not consulted.
func (r *Registry) HasOperator(operator, owner principal.Principal, id ledger.AssetID) (bool, error) {
	r.mu.RLock()
	if r.operators[operatorKey{owner: owner, operator: operator, scope: GlobalScope}] {
		r.mu.RUnlock()
		return true, nil
	}
	r.mu.RUnlock()

	scope, err := r.scopes.ScopeOf(id)
	if err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operators[operatorKey{owner: owner, operator: operator, scope: scope}], nil
}

// IsAuthorized reports whether the operator may move the owner's
// asset by any path: global approval, matching-scope approval, or a
// non-zero allowance. The check is side-effect-free; the transfer
// engine consumes allowances when that is the authorizing path.
func (r *Registry) IsAuthorized(operator, owner principal.Principal, id ledger.AssetID) (bool, error) {
	ok, err := r.HasOperator(operator, owner, id)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return !r.Allowance(owner, operator, id).IsZero(), nil
}

// ConsumeAllowance decrements the spender's allowance by quantity.
// Returns false without mutating when the allowance is insufficient.
// Used by the transfer engine on the allowance-authorized path only.
func (r *Registry) ConsumeAllowance(owner, spender principal.Principal, id ledger.AssetID, quantity *uint256.Int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := allowanceKey{id: id, owner: owner, spender: spender}
	current := r.allowances[key]
	if current == nil || current.Lt(quantity) {
		return false
	}
	current.Sub(current, quantity)
	return true
}

// RestoreAllowance credits quantity back to the spender's allowance.
// Used by the transfer engine to unwind a consumed allowance when the
// enclosing call fails after the consumption.
func (r *Registry) RestoreAllowance(owner, spender principal.Principal, id ledger.AssetID, quantity *uint256.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := allowanceKey{id: id, owner: owner, spender: spender}
	current := r.allowances[key]
	if current == nil {
		current = uint256.NewInt(0)
		r.allowances[key] = current
	}
	current.Add(current, quantity)
}
