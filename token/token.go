// Package token is the front end of the multi-asset ledger. It wires
// the balance ledger, the approval registry, the transfer engine, the
// delegate dispatcher, and the record store behind one stable
// identity, and exposes every external entry point of the system.
package token

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/multitoken-xyz/go-multitoken/approval"
	"github.com/multitoken-xyz/go-multitoken/commitment"
	"github.com/multitoken-xyz/go-multitoken/delegate"
	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
	"github.com/multitoken-xyz/go-multitoken/record"
	"github.com/multitoken-xyz/go-multitoken/transfer"
)

// Capability identifiers reported by Supports.
const (
	// CapLedger covers asset creation, minting, and balance queries.
	CapLedger = "multitoken/ledger"

	// CapURI covers mutable per-asset URIs.
	CapURI = "multitoken/uri"

	// CapBatch covers batch transfers and batch balance queries.
	CapBatch = "multitoken/batch"

	// CapDispatch covers the delegate registry and dispatcher.
	CapDispatch = "multitoken/dispatch"
)

// Options configures a Token front end.
type Options struct {
	// Store receives committed records. Defaults to an in-memory
	// store.
	Store record.Store

	// Admin may change delegate registrations. Defaults to the
	// front end's own principal.
	Admin principal.Principal

	// Logger emits one event per committed operation. Defaults to a
	// disabled logger.
	Logger zerolog.Logger
}

// Token is the stable front-end identity of the ledger.
type Token struct {
	self      principal.Principal
	ledger    *ledger.Ledger
	approvals *approval.Registry
	resolver  *transfer.ResolverMap
	engine    *transfer.Engine
	delegates *delegate.Registry
	store     record.Store
	log       zerolog.Logger
}

// New creates a fully wired ledger front end identified by self.
func New(self principal.Principal, opts Options) *Token {
	if opts.Store == nil {
		opts.Store = record.NewMemoryStore()
	}
	if opts.Admin.IsZero() {
		opts.Admin = self
	}

	l := ledger.New()
	a := approval.NewRegistry(l)
	resolver := transfer.NewResolverMap()

	return &Token{
		self:      self,
		ledger:    l,
		approvals: a,
		resolver:  resolver,
		engine:    transfer.NewEngine(l, a, resolver, self),
		delegates: delegate.NewRegistry(opts.Admin),
		store:     opts.Store,
		log:       opts.Logger,
	}
}

// Self returns the front end's own principal. Transfers to it are
// rejected unless it registers a receiver endpoint.
func (t *Token) Self() principal.Principal {
	return t.self
}

// Supports reports whether a capability group is exposed.
func (t *Token) Supports(capability string) bool {
	switch capability {
	case CapLedger, CapURI, CapBatch, CapDispatch:
		return true
	}
	return false
}

// Create allocates a new asset and credits the creator with the
// initial quantity. It records the creation and, when a URI is
// supplied, the initial URI.
func (t *Token) Create(ctx context.Context, creator principal.Principal, name string, quantity *uint256.Int, uri string) (ledger.AssetID, error) {
	id, err := t.ledger.Create(creator, name, quantity, uri)
	if err != nil {
		return 0, err
	}

	a, err := t.ledger.Asset(id)
	if err != nil {
		return 0, err
	}

	j := record.NewJournal()
	j.Emit(record.NewCreate(creator, a, quantity))
	if uri != "" {
		j.Emit(record.NewURIChange(creator, id, uri))
	}
	if err := j.Commit(ctx, t.store); err != nil {
		return 0, err
	}

	t.log.Info().Str("op", "create").Uint64("asset", uint64(id)).
		Str("creator", creator.String()).Str("quantity", quantity.Dec()).Msg("asset created")
	return id, nil
}

// CreateBatch allocates consecutive assets sharing one scope.
func (t *Token) CreateBatch(ctx context.Context, creator principal.Principal, names []string, quantities []*uint256.Int, uris []string) ([]ledger.AssetID, error) {
	ids, err := t.ledger.CreateBatch(creator, names, quantities, uris)
	if err != nil {
		return nil, err
	}

	j := record.NewJournal()
	for i, id := range ids {
		a, err := t.ledger.Asset(id)
		if err != nil {
			return nil, err
		}
		j.Emit(record.NewCreate(creator, a, quantities[i]))
		if uris[i] != "" {
			j.Emit(record.NewURIChange(creator, id, uris[i]))
		}
	}
	if err := j.Commit(ctx, t.store); err != nil {
		return nil, err
	}

	t.log.Info().Str("op", "create-batch").Int("assets", len(ids)).
		Str("creator", creator.String()).Msg("asset batch created")
	return ids, nil
}

// Mint increases balances of an existing asset. Creator-only.
func (t *Token) Mint(ctx context.Context, caller principal.Principal, id ledger.AssetID, recipients []principal.Principal, quantities []*uint256.Int) error {
	if err := t.ledger.Mint(caller, id, recipients, quantities); err != nil {
		return err
	}

	j := record.NewJournal()
	for i, r := range recipients {
		j.Emit(record.NewMint(caller, r, id, quantities[i]))
	}
	if err := j.Commit(ctx, t.store); err != nil {
		return err
	}

	t.log.Info().Str("op", "mint").Uint64("asset", uint64(id)).
		Int("recipients", len(recipients)).Msg("minted")
	return nil
}

// Burn removes quantity units from from's balance and the asset's
// supply, under transfer authorization rules.
func (t *Token) Burn(ctx context.Context, caller, from principal.Principal, id ledger.AssetID, quantity *uint256.Int) error {
	rec, err := t.engine.Burn(caller, from, id, quantity)
	if err != nil {
		return err
	}

	j := record.NewJournal()
	j.Emit(rec)
	if err := j.Commit(ctx, t.store); err != nil {
		return err
	}

	t.log.Info().Str("op", "burn").Uint64("asset", uint64(id)).
		Str("from", from.String()).Str("quantity", quantity.Dec()).Msg("burned")
	return nil
}

// SetURI overwrites an asset's URI. Creator-only.
func (t *Token) SetURI(ctx context.Context, caller principal.Principal, id ledger.AssetID, uri string) error {
	if err := t.ledger.SetURI(caller, id, uri); err != nil {
		return err
	}

	j := record.NewJournal()
	j.Emit(record.NewURIChange(caller, id, uri))
	if err := j.Commit(ctx, t.store); err != nil {
		return err
	}

	t.log.Info().Str("op", "set-uri").Uint64("asset", uint64(id)).Str("uri", uri).Msg("uri changed")
	return nil
}

// BalanceOf returns the owner's balance for an asset.
func (t *Token) BalanceOf(id ledger.AssetID, owner principal.Principal) (*uint256.Int, error) {
	return t.ledger.BalanceOf(id, owner)
}

// BalanceOfBatch returns position-wise balances.
func (t *Token) BalanceOfBatch(owners []principal.Principal, ids []ledger.AssetID) ([]*uint256.Int, error) {
	return t.ledger.BalanceOfBatch(owners, ids)
}

// Asset returns an asset's metadata.
func (t *Token) Asset(id ledger.AssetID) (ledger.Asset, error) {
	return t.ledger.Asset(id)
}

// Supply returns cumulative minted minus burned for an asset.
func (t *Token) Supply(id ledger.AssetID) (*uint256.Int, error) {
	return t.ledger.Supply(id)
}

// SetApprovalForAll sets or clears an operator approval for the
// owner. approval.GlobalScope grants rights over all assets; any
// other scope limits the grant to assets carrying that tag.
func (t *Token) SetApprovalForAll(ctx context.Context, owner, operator principal.Principal, scope ledger.Scope, approved bool) error {
	if err := t.approvals.SetApprovalForAll(owner, operator, scope, approved); err != nil {
		return err
	}

	j := record.NewJournal()
	j.Emit(record.NewApprovalChange(owner, operator, scope, approved))
	if err := j.Commit(ctx, t.store); err != nil {
		return err
	}

	t.log.Info().Str("op", "approval").Str("owner", owner.String()).
		Str("operator", operator.String()).Bool("approved", approved).Msg("approval changed")
	return nil
}

// Approve sets the per-asset allowance for a spender with
// compare-and-swap semantics against expectedCurrent.
func (t *Token) Approve(ctx context.Context, owner, spender principal.Principal, id ledger.AssetID, expectedCurrent, newAllowance *uint256.Int) error {
	if err := t.approvals.Approve(owner, spender, id, expectedCurrent, newAllowance); err != nil {
		return err
	}

	j := record.NewJournal()
	j.Emit(record.NewAllowanceChange(owner, spender, id, newAllowance))
	if err := j.Commit(ctx, t.store); err != nil {
		return err
	}

	t.log.Info().Str("op", "approve").Uint64("asset", uint64(id)).
		Str("owner", owner.String()).Str("spender", spender.String()).Msg("allowance changed")
	return nil
}

// Allowance returns the remaining per-asset allowance.
func (t *Token) Allowance(owner, spender principal.Principal, id ledger.AssetID) *uint256.Int {
	return t.approvals.Allowance(owner, spender, id)
}

// SafeTransferFrom executes a single safe transfer and records it.
func (t *Token) SafeTransferFrom(ctx context.Context, caller, from, to principal.Principal, id ledger.AssetID, quantity *uint256.Int, data []byte) error {
	rec, err := t.engine.SafeTransferFrom(caller, from, to, id, quantity, data)
	if err != nil {
		return err
	}

	j := record.NewJournal()
	j.Emit(rec)
	if err := j.Commit(ctx, t.store); err != nil {
		return err
	}

	t.log.Info().Str("op", "transfer").Uint64("asset", uint64(id)).
		Str("from", from.String()).Str("to", to.String()).
		Str("quantity", quantity.Dec()).Msg("transferred")
	return nil
}

// SafeBatchTransferFrom executes a batch safe transfer and records it
// as one batch record carrying the full arrays.
func (t *Token) SafeBatchTransferFrom(ctx context.Context, caller, from, to principal.Principal, ids []ledger.AssetID, quantities []*uint256.Int, data []byte) error {
	rec, err := t.engine.SafeBatchTransferFrom(caller, from, to, ids, quantities, data)
	if err != nil {
		return err
	}

	j := record.NewJournal()
	j.Emit(rec)
	if err := j.Commit(ctx, t.store); err != nil {
		return err
	}

	t.log.Info().Str("op", "batch-transfer").Int("assets", len(ids)).
		Str("from", from.String()).Str("to", to.String()).Msg("batch transferred")
	return nil
}

// RegisterReceiver marks a principal as contract-like with the given
// acknowledgement endpoint. A nil endpoint models a contract lacking
// the receiver entry point; transfers to it fail.
func (t *Token) RegisterReceiver(p principal.Principal, r transfer.Receiver) {
	t.resolver.RegisterContract(p, r)
}

// RegisterDelegate binds a signature set to a backing delegate.
// Administrative-only; a nil delegate revokes the set.
func (t *Token) RegisterDelegate(caller principal.Principal, setID string, d delegate.Delegate, signatures []string, label string) error {
	if err := t.delegates.Register(caller, setID, d, signatures, label); err != nil {
		return err
	}
	t.log.Info().Str("op", "register-delegate").Str("set", setID).
		Str("label", label).Bool("revoked", d == nil).Msg("delegate registration changed")
	return nil
}

// Dispatch forwards a call signature to its registered delegate,
// preserving the true caller.
func (t *Token) Dispatch(caller principal.Principal, signature string, args ...any) (any, error) {
	return t.delegates.Dispatch(caller, signature, args...)
}

// Delegates exposes the delegate registry, e.g. to hand a partition
// to a newly registered delegate.
func (t *Token) Delegates() *delegate.Registry {
	return t.delegates
}

// Records returns all committed records with Seq >= fromSeq.
func (t *Token) Records(ctx context.Context, fromSeq uint64) ([]*record.Record, error) {
	return t.store.Read(ctx, fromSeq)
}

// StateRoot returns the MiMC commitment to the current ledger state.
func (t *Token) StateRoot() (string, error) {
	return commitment.HexRoot(t.ledger)
}
