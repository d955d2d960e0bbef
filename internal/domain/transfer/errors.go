package transfer

import "errors"

// Sentinel kinds for transfer errors.
var (
	ErrMissingWalletID  = errors.New("missing wallet_id")
	ErrInvalidToAddress = errors.New("invalid to_address")
	ErrInvalidAmount    = errors.New("amount must be a positive base-10 integer")
	ErrMissingAsset     = errors.New("missing asset")
)
