// Package principal defines the opaque authenticated identity used
// throughout the ledger. A principal is whatever the surrounding
// execution environment authenticated the caller as; the ledger never
// inspects its structure.
package principal

// Principal identifies an account, contract, or other actor.
// The zero value is the null principal and is never a valid owner,
// recipient, or operator.
type Principal string

// Zero is the null principal sentinel.
const Zero Principal = ""

// IsZero reports whether p is the null principal.
func (p Principal) IsZero() bool {
	return p == Zero
}

func (p Principal) String() string {
	return string(p)
}
