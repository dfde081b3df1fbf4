// Package record provides the append-only, strictly-ordered history
// of ledger effects. Records are the only externally observable
// history: every mutating entry point emits exactly one record per
// logical effect, buffered in a Journal and committed to a Store only
// when the enclosing call succeeds.
package record

import (
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
)

// Kind tags the record variant. Minting is a distinct kind rather
// than a transfer with a sentinel "from" address, so observers never
// confuse a real principal with the null sentinel.
type Kind string

const (
	// KindCreate records asset creation, including any initial
	// quantity credited to the creator.
	KindCreate Kind = "create"

	// KindMint records a post-creation supply increase.
	KindMint Kind = "mint"

	// KindBurn records a supply decrease.
	KindBurn Kind = "burn"

	// KindTransfer records a single-asset transfer.
	KindTransfer Kind = "transfer"

	// KindBatchTransfer records one batch transfer carrying the full
	// id and quantity arrays. Observers must not double-count: a
	// batch emits one record, never N transfer records.
	KindBatchTransfer Kind = "batch-transfer"

	// KindURIChange records a URI overwrite.
	KindURIChange Kind = "uri-change"

	// KindApprovalChange records an operator approval being set or
	// cleared.
	KindApprovalChange Kind = "approval-change"

	// KindAllowanceChange records a per-asset allowance update.
	KindAllowanceChange Kind = "allowance-change"
)

// Record is one entry in the effect history. Fields beyond the
// header are populated per kind.
type Record struct {
	ID   string    `json:"id"`
	Seq  uint64    `json:"seq"`
	Time time.Time `json:"time"`
	Kind Kind      `json:"kind"`

	Operator principal.Principal `json:"operator,omitempty"`
	From     principal.Principal `json:"from,omitempty"`
	To       principal.Principal `json:"to,omitempty"`

	AssetIDs   []ledger.AssetID `json:"asset_ids,omitempty"`
	Quantities []*uint256.Int   `json:"quantities,omitempty"`

	Name     string       `json:"name,omitempty"`
	URI      string       `json:"uri,omitempty"`
	Approved bool         `json:"approved,omitempty"`
	Scope    ledger.Scope `json:"scope,omitempty"`
}

func newRecord(kind Kind) *Record {
	return &Record{
		ID:   uuid.New().String(),
		Time: time.Now().UTC(),
		Kind: kind,
	}
}

// NewCreate builds a creation record carrying the asset's full
// metadata, so the ledger can be rebuilt from the record history
// alone. Zero-quantity creation is recorded with To left null,
// mirroring "created without balance".
func NewCreate(creator principal.Principal, a ledger.Asset, quantity *uint256.Int) *Record {
	r := newRecord(KindCreate)
	r.Operator = creator
	if !quantity.IsZero() {
		r.To = creator
	}
	r.AssetIDs = []ledger.AssetID{a.ID}
	r.Quantities = []*uint256.Int{quantity.Clone()}
	r.Name = a.Name
	r.URI = a.URI
	r.Scope = a.Scope
	return r
}

// NewMint builds a mint record for one recipient.
func NewMint(creator, to principal.Principal, id ledger.AssetID, quantity *uint256.Int) *Record {
	r := newRecord(KindMint)
	r.Operator = creator
	r.To = to
	r.AssetIDs = []ledger.AssetID{id}
	r.Quantities = []*uint256.Int{quantity.Clone()}
	return r
}

// NewBurn builds a burn record.
func NewBurn(operator, from principal.Principal, id ledger.AssetID, quantity *uint256.Int) *Record {
	r := newRecord(KindBurn)
	r.Operator = operator
	r.From = from
	r.AssetIDs = []ledger.AssetID{id}
	r.Quantities = []*uint256.Int{quantity.Clone()}
	return r
}

// NewTransfer builds a single-transfer record.
func NewTransfer(operator, from, to principal.Principal, id ledger.AssetID, quantity *uint256.Int) *Record {
	r := newRecord(KindTransfer)
	r.Operator = operator
	r.From = from
	r.To = to
	r.AssetIDs = []ledger.AssetID{id}
	r.Quantities = []*uint256.Int{quantity.Clone()}
	return r
}

// NewBatchTransfer builds one batch-transfer record carrying the full
// arrays.
func NewBatchTransfer(operator, from, to principal.Principal, ids []ledger.AssetID, quantities []*uint256.Int) *Record {
	r := newRecord(KindBatchTransfer)
	r.Operator = operator
	r.From = from
	r.To = to
	r.AssetIDs = append([]ledger.AssetID(nil), ids...)
	r.Quantities = make([]*uint256.Int, len(quantities))
	for i, q := range quantities {
		r.Quantities[i] = q.Clone()
	}
	return r
}

// NewURIChange builds a URI-change record.
func NewURIChange(creator principal.Principal, id ledger.AssetID, uri string) *Record {
	r := newRecord(KindURIChange)
	r.Operator = creator
	r.AssetIDs = []ledger.AssetID{id}
	r.URI = uri
	return r
}

// NewApprovalChange builds an approval-change record.
func NewApprovalChange(owner, operator principal.Principal, scope ledger.Scope, approved bool) *Record {
	r := newRecord(KindApprovalChange)
	r.Operator = operator
	r.From = owner
	r.Approved = approved
	r.Scope = scope
	return r
}

// NewAllowanceChange builds an allowance-change record. The quantity
// is the new allowance.
func NewAllowanceChange(owner, spender principal.Principal, id ledger.AssetID, newAllowance *uint256.Int) *Record {
	r := newRecord(KindAllowanceChange)
	r.Operator = spender
	r.From = owner
	r.AssetIDs = []ledger.AssetID{id}
	r.Quantities = []*uint256.Int{newAllowance.Clone()}
	return r
}

// Journal buffers the records of one call. On success the caller
// commits the buffer to a store in order; on failure the journal is
// discarded wholesale, so a failed call leaves no history.
type Journal struct {
	buf []*Record
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Emit appends a record to the buffer.
func (j *Journal) Emit(r *Record) {
	j.buf = append(j.buf, r)
}

// Records returns the buffered records in emission order.
func (j *Journal) Records() []*Record {
	return j.buf
}

// Discard drops all buffered records.
func (j *Journal) Discard() {
	j.buf = nil
}
