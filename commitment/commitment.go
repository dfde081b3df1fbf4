// Package commitment computes a deterministic commitment to the full
// ledger state. The root changes whenever any balance, supply, or
// asset set changes, and equal states always hash equal, so external
// observers can checkpoint and compare ledgers without reading them.
//
// The hash is MiMC over the bn254 scalar field, matching what
// hash-committed state roots cost-effectively verify downstream.
package commitment

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
)

// View is the read surface the commitment needs. Satisfied by
// *ledger.Ledger.
type View interface {
	AssetIDs() []ledger.AssetID
	Holders(id ledger.AssetID) []principal.Principal
	BalanceOf(id ledger.AssetID, owner principal.Principal) (*uint256.Int, error)
	Supply(id ledger.AssetID) (*uint256.Int, error)
}

// Root computes the state commitment. Assets are visited in id order
// and holders in principal order, so the result is independent of map
// iteration.
func Root(v View) ([]byte, error) {
	h := mimc.NewMiMC()

	for _, id := range v.AssetIDs() {
		writeUint64(h, uint64(id))

		supply, err := v.Supply(id)
		if err != nil {
			return nil, err
		}
		writeQuantity(h, supply)

		for _, owner := range v.Holders(id) {
			writePrincipal(h, owner)
			bal, err := v.BalanceOf(id, owner)
			if err != nil {
				return nil, err
			}
			writeQuantity(h, bal)
		}
	}

	return h.Sum(nil), nil
}

// HexRoot is Root rendered as a prefixed hex string for display and
// comparison.
func HexRoot(v View) (string, error) {
	root, err := Root(v)
	if err != nil {
		return "", err
	}
	return "mtr:" + hex.EncodeToString(root), nil
}

// The MiMC hasher only accepts canonical field elements, so every
// input is first reduced into the scalar field.

func writeUint64(h interface{ Write([]byte) (int, error) }, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	writeReduced(h, buf[:])
}

func writeQuantity(h interface{ Write([]byte) (int, error) }, q *uint256.Int) {
	b := q.Bytes32()
	writeReduced(h, b[:])
}

func writePrincipal(h interface{ Write([]byte) (int, error) }, p principal.Principal) {
	sum := sha256.Sum256([]byte(p))
	writeReduced(h, sum[:])
}

func writeReduced(h interface{ Write([]byte) (int, error) }, b []byte) {
	var e fr.Element
	e.SetBytes(b)
	eb := e.Bytes()
	h.Write(eb[:])
}
