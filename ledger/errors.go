package ledger

import "errors"

var (
	// ErrUnknownAsset is returned when an asset id was never created.
	// A zero balance on an existing asset is not an error; referencing
	// an id that does not exist is.
	ErrUnknownAsset = errors.New("ledger: unknown asset")

	// ErrUnauthorized is returned when a restricted operation is
	// attempted by a principal other than the asset's creator.
	ErrUnauthorized = errors.New("ledger: caller is not the asset creator")

	// ErrLengthMismatch is returned when parallel arrays differ in length.
	ErrLengthMismatch = errors.New("ledger: array length mismatch")

	// ErrInsufficientBalance is returned when a debit exceeds the
	// owner's balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrInvalidRecipient is returned when a credit targets the null
	// principal.
	ErrInvalidRecipient = errors.New("ledger: invalid recipient")

	// ErrInvalidQuantity is returned when a nil quantity is supplied.
	ErrInvalidQuantity = errors.New("ledger: nil quantity")
)
