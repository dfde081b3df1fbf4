package transfer

import "errors"

var (
	// ErrUnauthorized is returned when the caller is neither the
	// owner nor holds any approval relation over the asset.
	ErrUnauthorized = errors.New("transfer: caller not authorized")

	// ErrInsufficientAllowance is returned when the caller's
	// authorizing path is a per-asset allowance smaller than the
	// requested quantity.
	ErrInsufficientAllowance = errors.New("transfer: insufficient allowance")

	// ErrInvalidRecipient is returned for transfers to the null
	// principal, or to the ledger's own identity when it does not
	// implement the receiver protocol.
	ErrInvalidRecipient = errors.New("transfer: invalid recipient")

	// ErrTransferRejected is returned when a contract-like recipient
	// declines the transfer: wrong acknowledgement value, an error
	// from the endpoint, or no receiver endpoint at all.
	ErrTransferRejected = errors.New("transfer: receiver rejected transfer")

	// ErrLengthMismatch is returned when batch arrays differ in length.
	ErrLengthMismatch = errors.New("transfer: array length mismatch")

	// ErrReentrantCall is returned when a receiver callback attempts
	// to re-enter the engine before the outer call commits.
	ErrReentrantCall = errors.New("transfer: reentrant call blocked")
)
