package config

import "errors"

// Sentinel errors for internal use.
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInvalidMnemonic     = errors.New("invalid mnemonic")
	ErrTransport           = errors.New("ledger transport error")
	ErrAccountNotFound     = errors.New("account not found")
	ErrClaimFailed         = errors.New("claim transaction failed")
	ErrAmountTooSmall      = errors.New("amount too small to forward")
	ErrSubmitFailed        = errors.New("transaction submission failed")
	ErrUnparsablePredicate = errors.New("unparsable unlock predicate")
)
