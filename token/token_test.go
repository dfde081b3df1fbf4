package token_test

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/approval"
	"github.com/multitoken-xyz/go-multitoken/delegate"
	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
	"github.com/multitoken-xyz/go-multitoken/record"
	"github.com/multitoken-xyz/go-multitoken/token"
	"github.com/multitoken-xyz/go-multitoken/transfer"
)

const (
	front = principal.Principal("multi-token")
	alice = principal.Principal("alice")
	bob   = principal.Principal("bob")
	carol = principal.Principal("carol")
)

func mustBalance(t *testing.T, tk *token.Token, id ledger.AssetID, p principal.Principal) uint64 {
	t.Helper()
	b, err := tk.BalanceOf(id, p)
	if err != nil {
		t.Fatalf("balanceOf failed: %v", err)
	}
	return b.Uint64()
}

func TestCreateTransferLifecycle(t *testing.T) {
	ctx := context.Background()
	tk := token.New(front, token.Options{})

	id, err := tk.Create(ctx, alice, "Hammer", uint256.NewInt(5), "ipfs://hammer")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first asset id must be 1, got %d", id)
	}

	if err := tk.SafeTransferFrom(ctx, alice, alice, bob, id, uint256.NewInt(2), nil); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if got := mustBalance(t, tk, id, alice); got != 3 {
		t.Errorf("expected alice balance 3, got %d", got)
	}
	if got := mustBalance(t, tk, id, bob); got != 2 {
		t.Errorf("expected bob balance 2, got %d", got)
	}

	supply, err := tk.Supply(id)
	if err != nil {
		t.Fatalf("supply failed: %v", err)
	}
	if supply.Uint64() != 5 {
		t.Errorf("transfers must conserve supply, got %s", supply.Dec())
	}

	a, err := tk.Asset(id)
	if err != nil {
		t.Fatalf("asset failed: %v", err)
	}
	if a.Name != "Hammer" || a.URI != "ipfs://hammer" || a.Creator != alice {
		t.Errorf("asset metadata wrong: %+v", a)
	}
}

func TestRecordsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	tk := token.New(front, token.Options{})

	id, err := tk.Create(ctx, alice, "Hammer", uint256.NewInt(5), "ipfs://hammer")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := tk.SafeTransferFrom(ctx, alice, alice, bob, id, uint256.NewInt(2), nil); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	// A rejected transfer must leave no record behind.
	if err := tk.SafeTransferFrom(ctx, carol, alice, bob, id, uint256.NewInt(1), nil); err == nil {
		t.Fatal("unauthorized transfer must fail")
	}

	recs, err := tk.Records(ctx, 1)
	if err != nil {
		t.Fatalf("records failed: %v", err)
	}
	// create + initial uri + one transfer.
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].Kind != record.KindCreate || recs[1].Kind != record.KindURIChange || recs[2].Kind != record.KindTransfer {
		t.Errorf("unexpected record kinds: %s %s %s", recs[0].Kind, recs[1].Kind, recs[2].Kind)
	}
	if recs[0].From != principal.Zero || recs[0].To != alice {
		t.Errorf("creation must record a credit from the null principal: %+v", recs[0])
	}
}

func TestMintBurnAndURI(t *testing.T) {
	ctx := context.Background()
	tk := token.New(front, token.Options{})

	id, err := tk.Create(ctx, alice, "Coin", uint256.NewInt(0), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err = tk.Mint(ctx, alice, id,
		[]principal.Principal{bob, carol},
		[]*uint256.Int{uint256.NewInt(10), uint256.NewInt(20)})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if got := mustBalance(t, tk, id, carol); got != 20 {
		t.Errorf("expected carol balance 20, got %d", got)
	}

	// Only the creator mints.
	err = tk.Mint(ctx, bob, id, []principal.Principal{bob}, []*uint256.Int{uint256.NewInt(1)})
	if !errors.Is(err, ledger.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	if err := tk.Burn(ctx, bob, bob, id, uint256.NewInt(4)); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	supply, _ := tk.Supply(id)
	if supply.Uint64() != 26 {
		t.Errorf("burn must shrink supply to 26, got %s", supply.Dec())
	}

	if err := tk.SetURI(ctx, alice, id, "ipfs://coin-v2"); err != nil {
		t.Fatalf("setURI failed: %v", err)
	}
	a, _ := tk.Asset(id)
	if a.URI != "ipfs://coin-v2" {
		t.Errorf("expected updated uri, got %q", a.URI)
	}
	if err := tk.SetURI(ctx, bob, id, "x"); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for non-creator, got %v", err)
	}
}

func TestScopedOperatorTransfer(t *testing.T) {
	ctx := context.Background()
	tk := token.New(front, token.Options{})

	ids, err := tk.CreateBatch(ctx, alice,
		[]string{"Sword", "Shield"},
		[]*uint256.Int{uint256.NewInt(10), uint256.NewInt(10)},
		[]string{"", ""})
	if err != nil {
		t.Fatalf("createBatch failed: %v", err)
	}
	sword, shield := ids[0], ids[1]

	solo, err := tk.Create(ctx, alice, "Potion", uint256.NewInt(10), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// carol is approved for the batch's shared scope only.
	if err := tk.SetApprovalForAll(ctx, alice, carol, ledger.Scope(sword), true); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if err := tk.SafeTransferFrom(ctx, carol, alice, bob, shield, uint256.NewInt(1), nil); err != nil {
		t.Errorf("scoped operator must move in-scope assets: %v", err)
	}
	err = tk.SafeTransferFrom(ctx, carol, alice, bob, solo, uint256.NewInt(1), nil)
	if !errors.Is(err, transfer.ErrUnauthorized) {
		t.Errorf("out-of-scope transfer must fail, got %v", err)
	}
}

func TestAllowanceLifecycle(t *testing.T) {
	ctx := context.Background()
	tk := token.New(front, token.Options{})

	id, err := tk.Create(ctx, alice, "Gem", uint256.NewInt(10), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := tk.Approve(ctx, alice, carol, id, uint256.NewInt(0), uint256.NewInt(5)); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// A stale compare value must not take effect.
	err = tk.Approve(ctx, alice, carol, id, uint256.NewInt(0), uint256.NewInt(50))
	if !errors.Is(err, approval.ErrStaleApproval) {
		t.Errorf("expected ErrStaleApproval, got %v", err)
	}

	if err := tk.SafeTransferFrom(ctx, carol, alice, bob, id, uint256.NewInt(3), nil); err != nil {
		t.Fatalf("allowance transfer failed: %v", err)
	}
	if got := tk.Allowance(alice, carol, id); got.Uint64() != 2 {
		t.Errorf("expected remaining allowance 2, got %s", got.Dec())
	}
}

func TestBatchTransferAndQueries(t *testing.T) {
	ctx := context.Background()
	tk := token.New(front, token.Options{})

	ids, err := tk.CreateBatch(ctx, alice,
		[]string{"A", "B"},
		[]*uint256.Int{uint256.NewInt(10), uint256.NewInt(20)},
		[]string{"", ""})
	if err != nil {
		t.Fatalf("createBatch failed: %v", err)
	}

	err = tk.SafeBatchTransferFrom(ctx, alice, alice, bob, ids,
		[]*uint256.Int{uint256.NewInt(1), uint256.NewInt(2)}, nil)
	if err != nil {
		t.Fatalf("batch transfer failed: %v", err)
	}

	balances, err := tk.BalanceOfBatch(
		[]principal.Principal{bob, bob, alice},
		[]ledger.AssetID{ids[0], ids[1], ids[0]})
	if err != nil {
		t.Fatalf("balanceOfBatch failed: %v", err)
	}
	want := []uint64{1, 2, 9}
	for i, b := range balances {
		if b.Uint64() != want[i] {
			t.Errorf("balance %d: expected %d, got %s", i, want[i], b.Dec())
		}
	}
}

func TestSupports(t *testing.T) {
	tk := token.New(front, token.Options{})

	for _, capability := range []string{token.CapLedger, token.CapURI, token.CapBatch, token.CapDispatch} {
		if !tk.Supports(capability) {
			t.Errorf("expected support for %s", capability)
		}
	}
	if tk.Supports("multitoken/unknown") {
		t.Error("unknown capability must not be supported")
	}
}

// acceptAll is a delegate servicing the receiver-acknowledgement
// signatures with the correct sentinels.
func acceptAll(caller principal.Principal, signature string, args ...any) (any, error) {
	switch signature {
	case token.SigTransferReceived:
		return transfer.AckSingle, nil
	case token.SigBatchTransferReceived:
		return transfer.AckBatch, nil
	}
	return nil, errors.New("unexpected signature")
}

func TestProxyReceiver(t *testing.T) {
	ctx := context.Background()
	tk := token.New(front, token.Options{Admin: alice})

	id, err := tk.Create(ctx, alice, "Hammer", uint256.NewInt(10), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	receiver := principal.Principal("proxy-vault")
	err = tk.RegisterDelegate(alice, "receiver-v1", delegate.Func(acceptAll), token.ReceiverSignatures, "accept everything")
	if err != nil {
		t.Fatalf("register delegate failed: %v", err)
	}
	tk.RegisterReceiver(receiver, token.NewProxyReceiver(tk.Delegates()))

	if err := tk.SafeTransferFrom(ctx, alice, alice, receiver, id, uint256.NewInt(2), nil); err != nil {
		t.Fatalf("transfer through proxy failed: %v", err)
	}
	if got := mustBalance(t, tk, id, receiver); got != 2 {
		t.Errorf("expected proxy balance 2, got %d", got)
	}

	err = tk.SafeBatchTransferFrom(ctx, alice, alice, receiver,
		[]ledger.AssetID{id}, []*uint256.Int{uint256.NewInt(1)}, nil)
	if err != nil {
		t.Fatalf("batch transfer through proxy failed: %v", err)
	}

	// Revoking the backing delegate fails the proxy closed.
	if err := tk.Delegates().Revoke(alice, "receiver-v1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	err = tk.SafeTransferFrom(ctx, alice, alice, receiver, id, uint256.NewInt(1), nil)
	if !errors.Is(err, transfer.ErrTransferRejected) {
		t.Fatalf("expected ErrTransferRejected after revocation, got %v", err)
	}
	if got := mustBalance(t, tk, id, alice); got != 7 {
		t.Errorf("rejected transfer must roll back, got alice balance %d", got)
	}
}

func TestRestoreReplaysRecords(t *testing.T) {
	ctx := context.Background()
	store := record.NewMemoryStore()

	tk := token.New(front, token.Options{Store: store})

	id, err := tk.Create(ctx, alice, "Hammer", uint256.NewInt(10), "ipfs://hammer")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := tk.Mint(ctx, alice, id, []principal.Principal{bob}, []*uint256.Int{uint256.NewInt(5)}); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if err := tk.SetApprovalForAll(ctx, alice, carol, approval.GlobalScope, true); err != nil {
		t.Fatalf("approval failed: %v", err)
	}
	if err := tk.Approve(ctx, bob, carol, id, uint256.NewInt(0), uint256.NewInt(4)); err != nil {
		t.Fatalf("allowance failed: %v", err)
	}
	// Operator transfer: must not consume carol's allowance from bob.
	if err := tk.SafeTransferFrom(ctx, carol, alice, bob, id, uint256.NewInt(3), nil); err != nil {
		t.Fatalf("operator transfer failed: %v", err)
	}
	// Allowance transfer: consumes 2 of bob's grant.
	if err := tk.SafeTransferFrom(ctx, carol, bob, alice, id, uint256.NewInt(2), nil); err != nil {
		t.Fatalf("allowance transfer failed: %v", err)
	}
	if err := tk.Burn(ctx, bob, bob, id, uint256.NewInt(1)); err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	if err := tk.SetURI(ctx, alice, id, "ipfs://hammer-v2"); err != nil {
		t.Fatalf("setURI failed: %v", err)
	}

	restored, err := token.Restore(ctx, front, token.Options{Store: store})
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	for _, p := range []principal.Principal{alice, bob, carol} {
		want := mustBalance(t, tk, id, p)
		if got := mustBalance(t, restored, id, p); got != want {
			t.Errorf("%s: restored balance %d, want %d", p, got, want)
		}
	}

	wantSupply, _ := tk.Supply(id)
	gotSupply, _ := restored.Supply(id)
	if gotSupply.Cmp(wantSupply) != 0 {
		t.Errorf("restored supply %s, want %s", gotSupply.Dec(), wantSupply.Dec())
	}

	a, err := restored.Asset(id)
	if err != nil {
		t.Fatalf("restored asset lookup failed: %v", err)
	}
	if a.Name != "Hammer" || a.URI != "ipfs://hammer-v2" || a.Creator != alice {
		t.Errorf("restored metadata wrong: %+v", a)
	}

	if got := restored.Allowance(bob, carol, id); got.Uint64() != 2 {
		t.Errorf("restored allowance %s, want 2", got.Dec())
	}

	// The two ledgers commit to the same state.
	wantRoot, err := tk.StateRoot()
	if err != nil {
		t.Fatalf("state root failed: %v", err)
	}
	gotRoot, err := restored.StateRoot()
	if err != nil {
		t.Fatalf("restored state root failed: %v", err)
	}
	if gotRoot != wantRoot {
		t.Errorf("restored root %s, want %s", gotRoot, wantRoot)
	}
}
