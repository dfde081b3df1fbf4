package commitment

import (
	"bytes"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
)

const (
	alice = principal.Principal("alice")
	bob   = principal.Principal("bob")
)

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	l := ledger.New()
	if _, err := l.Create(alice, "Hammer", uint256.NewInt(100), ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := l.Create(bob, "Sword", uint256.NewInt(50), ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return l
}

func TestRootDeterministic(t *testing.T) {
	l := newLedger(t)

	a, err := Root(l)
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	b, err := Root(l)
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("root must be deterministic for unchanged state")
	}
}

func TestEqualStatesHashEqual(t *testing.T) {
	a, err := Root(newLedger(t))
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	b, err := Root(newLedger(t))
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("independently built equal states must hash equal")
	}
}

func TestRootChangesWithState(t *testing.T) {
	l := newLedger(t)
	before, err := Root(l)
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}

	t.Run("BalanceMove", func(t *testing.T) {
		if err := l.Debit(1, alice, uint256.NewInt(10)); err != nil {
			t.Fatalf("debit failed: %v", err)
		}
		if err := l.Credit(1, bob, uint256.NewInt(10)); err != nil {
			t.Fatalf("credit failed: %v", err)
		}
		after, err := Root(l)
		if err != nil {
			t.Fatalf("root failed: %v", err)
		}
		if bytes.Equal(before, after) {
			t.Error("moving a balance must change the root")
		}
	})

	t.Run("NewAsset", func(t *testing.T) {
		mid, err := Root(l)
		if err != nil {
			t.Fatalf("root failed: %v", err)
		}
		if _, err := l.Create(alice, "Helmet", uint256.NewInt(1), ""); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		after, err := Root(l)
		if err != nil {
			t.Fatalf("root failed: %v", err)
		}
		if bytes.Equal(mid, after) {
			t.Error("adding an asset must change the root")
		}
	})
}

func TestHexRoot(t *testing.T) {
	s, err := HexRoot(newLedger(t))
	if err != nil {
		t.Fatalf("hex root failed: %v", err)
	}
	if !strings.HasPrefix(s, "mtr:") {
		t.Errorf("expected mtr: prefix, got %q", s)
	}
	// 32-byte MiMC digest.
	if len(s) != len("mtr:")+64 {
		t.Errorf("expected 64 hex digits, got %d in %q", len(s)-4, s)
	}
}

func TestEmptyLedgerRoot(t *testing.T) {
	a, err := Root(ledger.New())
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	b, err := Root(ledger.New())
	if err != nil {
		t.Fatalf("root failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("empty ledgers must hash equal")
	}
}
