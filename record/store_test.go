package record

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
)

const (
	alice = principal.Principal("alice")
	bob   = principal.Principal("bob")
)

// testStores runs the same suite against every Store implementation.
func testStores(t *testing.T, run func(t *testing.T, s Store)) {
	t.Run("Memory", func(t *testing.T) {
		s := NewMemoryStore()
		defer s.Close()
		run(t, s)
	})

	t.Run("SQLite", func(t *testing.T) {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"))
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		defer s.Close()
		run(t, s)
	})
}

func TestStoreAppendAssignsSequence(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		recs := []*Record{
			NewMint(alice, bob, 1, uint256.NewInt(10)),
			NewTransfer(alice, alice, bob, 1, uint256.NewInt(3)),
		}
		if err := s.Append(ctx, recs); err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if recs[0].Seq != 1 || recs[1].Seq != 2 {
			t.Errorf("expected sequences 1,2, got %d,%d", recs[0].Seq, recs[1].Seq)
		}

		n, err := s.Len(ctx)
		if err != nil {
			t.Fatalf("len failed: %v", err)
		}
		if n != 2 {
			t.Errorf("expected length 2, got %d", n)
		}
	})
}

func TestStoreReadFromSeq(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			if err := s.Append(ctx, []*Record{NewMint(alice, bob, 1, uint256.NewInt(1))}); err != nil {
				t.Fatalf("append failed: %v", err)
			}
		}

		recs, err := s.Read(ctx, 3)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("expected 3 records from seq 3, got %d", len(recs))
		}
		for i, r := range recs {
			if want := uint64(3 + i); r.Seq != want {
				t.Errorf("record %d: expected seq %d, got %d", i, want, r.Seq)
			}
		}
	})
}

func TestStoreRoundTrip(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		big := new(uint256.Int)
		big.SetFromDecimal("340282366920938463463374607431768211456") // 2^128

		asset := ledger.Asset{ID: 7, Creator: alice, Name: "Hammer", URI: "ipfs://h", Scope: 7}
		in := []*Record{
			NewCreate(alice, asset, big),
			NewBatchTransfer(alice, alice, bob,
				[]ledger.AssetID{7, 8},
				[]*uint256.Int{uint256.NewInt(1), big}),
			NewApprovalChange(alice, bob, 7, true),
			NewAllowanceChange(alice, bob, 7, uint256.NewInt(50)),
		}
		if err := s.Append(ctx, in); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		out, err := s.Read(ctx, 1)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(out) != len(in) {
			t.Fatalf("expected %d records, got %d", len(in), len(out))
		}

		created := out[0]
		if created.Kind != KindCreate {
			t.Errorf("expected create record, got %s", created.Kind)
		}
		if created.Name != "Hammer" || created.URI != "ipfs://h" || created.Scope != 7 {
			t.Errorf("create metadata lost: %+v", created)
		}
		if created.From != principal.Zero {
			t.Errorf("creation transfer must originate from the null principal, got %q", created.From)
		}
		if created.Quantities[0].Cmp(big) != 0 {
			t.Errorf("expected quantity %s, got %s", big.Dec(), created.Quantities[0].Dec())
		}
		if created.ID != in[0].ID {
			t.Errorf("record id changed across the store: %s vs %s", created.ID, in[0].ID)
		}

		batch := out[1]
		if len(batch.AssetIDs) != 2 || batch.AssetIDs[1] != 8 {
			t.Errorf("batch asset ids lost: %v", batch.AssetIDs)
		}
		if batch.Quantities[1].Cmp(big) != 0 {
			t.Errorf("large batch quantity lost: %s", batch.Quantities[1].Dec())
		}

		if !out[2].Approved || out[2].Scope != 7 {
			t.Errorf("approval payload lost: %+v", out[2])
		}
		if out[3].Quantities[0].Uint64() != 50 {
			t.Errorf("allowance payload lost: %+v", out[3])
		}
	})
}

func TestStoreClosed(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if err := s.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}

		if err := s.Append(ctx, []*Record{NewMint(alice, bob, 1, uint256.NewInt(1))}); err == nil {
			t.Error("append on closed store must fail")
		}
		if _, err := s.Read(ctx, 1); err == nil {
			t.Error("read on closed store must fail")
		}
	})
}

func TestStoreContextCancelled(t *testing.T) {
	testStores(t, func(t *testing.T, s Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := s.Append(ctx, []*Record{NewMint(alice, bob, 1, uint256.NewInt(1))}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Append(ctx, []*Record{NewMint(alice, bob, 1, uint256.NewInt(9))}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	recs, err := s.Read(ctx, 1)
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if len(recs) != 1 || recs[0].Quantities[0].Uint64() != 9 {
		t.Fatalf("expected persisted record to survive reopen, got %v", recs)
	}

	// Sequence numbering continues where it left off.
	next := []*Record{NewMint(alice, bob, 1, uint256.NewInt(1))}
	if err := s.Append(ctx, next); err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if next[0].Seq != 2 {
		t.Errorf("expected seq 2 after reopen, got %d", next[0].Seq)
	}
}

func TestJournalCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	j := NewJournal()
	j.Emit(NewMint(alice, bob, 1, uint256.NewInt(5)))
	j.Emit(NewTransfer(alice, alice, bob, 1, uint256.NewInt(2)))

	if err := j.Commit(ctx, s); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if n, _ := s.Len(ctx); n != 2 {
		t.Errorf("expected 2 committed records, got %d", n)
	}
	if len(j.Records()) != 0 {
		t.Error("commit must clear the journal")
	}

	// Committing an empty journal is a no-op.
	if err := j.Commit(ctx, s); err != nil {
		t.Fatalf("empty commit failed: %v", err)
	}
	if n, _ := s.Len(ctx); n != 2 {
		t.Errorf("empty commit must append nothing, got %d", n)
	}
}

func TestJournalDiscard(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	j := NewJournal()
	j.Emit(NewMint(alice, bob, 1, uint256.NewInt(5)))
	j.Discard()

	if err := j.Commit(ctx, s); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if n, _ := s.Len(ctx); n != 0 {
		t.Errorf("discarded records must never reach the store, got %d", n)
	}
}

func TestJournalKeepsBufferOnCommitError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Close()

	j := NewJournal()
	j.Emit(NewMint(alice, bob, 1, uint256.NewInt(5)))

	if err := j.Commit(ctx, s); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if len(j.Records()) != 1 {
		t.Error("failed commit must keep the journal buffer")
	}
}
