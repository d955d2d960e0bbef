package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrNoActiveWallet    = errors.New("no active wallet; create or import one first")
	ErrInvalidWalletName = errors.New("invalid wallet name")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMalformedAmount   = errors.New("malformed amount")
)
