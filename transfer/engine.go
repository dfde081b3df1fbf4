// Package transfer implements the safe-transfer engine: it validates
// requests, resolves the authorizing path, applies debits and credits,
// and requires positive acknowledgement from contract-like recipients
// before a transfer commits.
//
// Every call runs the same state machine:
//
//	Validate -> Authorize -> Debit -> Credit -> Acknowledge -> Commit | Revert
//
// All five steps happen within one call. Any failure unwinds every
// balance and allowance mutation performed since the call started,
// including prior entries of the same batch.
package transfer

import (
	"fmt"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/approval"
	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
	"github.com/multitoken-xyz/go-multitoken/record"
)

// authPath is the resolved authorizing path for one asset.
type authPath int

const (
	pathOwner    authPath = iota // caller == from
	pathOperator                 // global or scoped approval
	pathAllowance                // per-asset allowance, consumed on use
)

// Engine executes single and batch transfers against a ledger and an
// approval registry.
type Engine struct {
	ledger    *ledger.Ledger
	approvals *approval.Registry
	resolver  ReceiverResolver
	self      principal.Principal

	// busy blocks reentrant mutation from receiver callbacks.
	// Debits land before the acknowledgement call, so reentrant
	// reads still observe post-debit state.
	busy atomic.Bool
}

// NewEngine creates a transfer engine. self is the ledger front-end's
// own principal; transfers to it are rejected unless it registers a
// receiver endpoint with the resolver.
func NewEngine(l *ledger.Ledger, a *approval.Registry, r ReceiverResolver, self principal.Principal) *Engine {
	return &Engine{ledger: l, approvals: a, resolver: r, self: self}
}

// SafeTransferFrom moves quantity units of one asset from from to to,
// enforcing authorization, balance, and receiver-acknowledgement
// invariants. On success it returns the single-transfer record for
// the caller to commit; on failure all mutations are undone and no
// record is produced.
//
// A zero quantity is always valid regardless of from's balance; it is
// still authorization-checked and acknowledgement-checked.
func (e *Engine) SafeTransferFrom(caller, from, to principal.Principal, id ledger.AssetID, quantity *uint256.Int, data []byte) (*record.Record, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer e.busy.Store(false)

	if quantity == nil {
		return nil, ledger.ErrInvalidQuantity
	}
	if err := e.validateRecipient(to); err != nil {
		return nil, err
	}
	if !e.ledger.Exists(id) {
		return nil, ledger.ErrUnknownAsset
	}

	var undo []func()
	path, err := e.authorize(caller, from, id)
	if err != nil {
		return nil, err
	}
	if err := e.applyEntry(&undo, path, caller, from, to, id, quantity); err != nil {
		revert(undo)
		return nil, err
	}

	if err := e.acknowledgeSingle(caller, from, to, id, quantity, data); err != nil {
		revert(undo)
		return nil, err
	}

	return record.NewTransfer(caller, from, to, id, quantity), nil
}

// SafeBatchTransferFrom applies the transfer state machine
// position-wise across equal-length id and quantity arrays. The
// authorizing path is resolved once per distinct asset id, so a
// caller lacking rights over any id in the batch fails the whole
// batch. All debits and credits land before the single batch
// acknowledgement call, which receives the full arrays.
func (e *Engine) SafeBatchTransferFrom(caller, from, to principal.Principal, ids []ledger.AssetID, quantities []*uint256.Int, data []byte) (*record.Record, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer e.busy.Store(false)

	if len(ids) != len(quantities) {
		return nil, ErrLengthMismatch
	}
	for _, q := range quantities {
		if q == nil {
			return nil, ledger.ErrInvalidQuantity
		}
	}
	if err := e.validateRecipient(to); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !e.ledger.Exists(id) {
			return nil, ledger.ErrUnknownAsset
		}
	}

	// Authorization once per distinct asset id.
	paths := make(map[ledger.AssetID]authPath, len(ids))
	for _, id := range ids {
		if _, ok := paths[id]; ok {
			continue
		}
		path, err := e.authorize(caller, from, id)
		if err != nil {
			return nil, err
		}
		paths[id] = path
	}

	var undo []func()
	for i, id := range ids {
		if err := e.applyEntry(&undo, paths[id], caller, from, to, id, quantities[i]); err != nil {
			revert(undo)
			return nil, err
		}
	}

	if err := e.acknowledgeBatch(caller, from, to, ids, quantities, data); err != nil {
		revert(undo)
		return nil, err
	}

	return record.NewBatchTransfer(caller, from, to, ids, quantities), nil
}

// Burn removes quantity units from from's balance and the asset's
// supply, under the same authorization rules as a transfer. The
// allowance is consumed when it is the authorizing path.
func (e *Engine) Burn(caller, from principal.Principal, id ledger.AssetID, quantity *uint256.Int) (*record.Record, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	defer e.busy.Store(false)

	if quantity == nil {
		return nil, ledger.ErrInvalidQuantity
	}
	if !e.ledger.Exists(id) {
		return nil, ledger.ErrUnknownAsset
	}

	var undo []func()
	path, err := e.authorize(caller, from, id)
	if err != nil {
		return nil, err
	}
	if err := e.consume(&undo, path, caller, from, id, quantity); err != nil {
		return nil, err
	}
	if err := e.ledger.Burn(id, from, quantity); err != nil {
		revert(undo)
		return nil, err
	}

	return record.NewBurn(caller, from, id, quantity), nil
}

// validateRecipient rejects the null principal and the engine's own
// front-end identity unless the front end registered itself as a
// receiver.
func (e *Engine) validateRecipient(to principal.Principal) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if to == e.self {
		if r, _ := e.resolver.Resolve(to); r == nil {
			return ErrInvalidRecipient
		}
	}
	return nil
}

// authorize resolves the authorizing path for (caller, from, id).
// The allowance path requires a non-zero allowance to count as a
// relation at all; its sufficiency is checked at consumption.
func (e *Engine) authorize(caller, from principal.Principal, id ledger.AssetID) (authPath, error) {
	if caller == from {
		return pathOwner, nil
	}
	ok, err := e.approvals.HasOperator(caller, from, id)
	if err != nil {
		return 0, err
	}
	if ok {
		return pathOperator, nil
	}
	if e.approvals.Allowance(from, caller, id).IsZero() {
		return 0, ErrUnauthorized
	}
	return pathAllowance, nil
}

// consume decrements the allowance when it is the authorizing path,
// journaling the restore. Owner and operator paths consume nothing.
func (e *Engine) consume(undo *[]func(), path authPath, caller, from principal.Principal, id ledger.AssetID, quantity *uint256.Int) error {
	if path != pathAllowance {
		return nil
	}
	if !e.approvals.ConsumeAllowance(from, caller, id, quantity) {
		return ErrInsufficientAllowance
	}
	q := quantity.Clone()
	*undo = append(*undo, func() {
		e.approvals.RestoreAllowance(from, caller, id, q)
	})
	return nil
}

// applyEntry performs allowance consumption, debit, and credit for
// one (id, quantity) pair, journaling the inverse operations. When
// from == to the debit and credit are skipped entirely, though the
// balance must still cover the quantity.
func (e *Engine) applyEntry(undo *[]func(), path authPath, caller, from, to principal.Principal, id ledger.AssetID, quantity *uint256.Int) error {
	if err := e.consume(undo, path, caller, from, id, quantity); err != nil {
		return err
	}
	if quantity.IsZero() {
		return nil
	}

	if from == to {
		bal, err := e.ledger.BalanceOf(id, from)
		if err != nil {
			return err
		}
		if bal.Lt(quantity) {
			return ledger.ErrInsufficientBalance
		}
		return nil
	}

	if err := e.ledger.Debit(id, from, quantity); err != nil {
		return err
	}
	q := quantity.Clone()
	*undo = append(*undo, func() {
		e.ledger.Credit(id, from, q)
	})

	if err := e.ledger.Credit(id, to, quantity); err != nil {
		return err
	}
	*undo = append(*undo, func() {
		e.ledger.Debit(id, to, q)
	})
	return nil
}

// acknowledgeSingle runs the receiver protocol for a single transfer.
// Plain accounts skip it; contract-like recipients must return the
// single-transfer sentinel.
func (e *Engine) acknowledgeSingle(caller, from, to principal.Principal, id ledger.AssetID, quantity *uint256.Int, data []byte) error {
	endpoint, contractLike := e.resolver.Resolve(to)
	if !contractLike {
		return nil
	}
	if endpoint == nil {
		return fmt.Errorf("%w: no receiver endpoint", ErrTransferRejected)
	}
	ack, err := endpoint.OnTransferReceived(caller, from, id, quantity, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	if ack != AckSingle {
		return fmt.Errorf("%w: bad acknowledgement value", ErrTransferRejected)
	}
	return nil
}

// acknowledgeBatch runs the receiver protocol for a batch, passing
// the full arrays and requiring the batch sentinel.
func (e *Engine) acknowledgeBatch(caller, from, to principal.Principal, ids []ledger.AssetID, quantities []*uint256.Int, data []byte) error {
	endpoint, contractLike := e.resolver.Resolve(to)
	if !contractLike {
		return nil
	}
	if endpoint == nil {
		return fmt.Errorf("%w: no receiver endpoint", ErrTransferRejected)
	}
	ack, err := endpoint.OnBatchTransferReceived(caller, from, ids, quantities, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	if ack != AckBatch {
		return fmt.Errorf("%w: bad acknowledgement value", ErrTransferRejected)
	}
	return nil
}

// revert unwinds journaled mutations in reverse order.
func revert(undo []func()) {
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}
