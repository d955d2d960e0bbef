package wallet

import "errors"

// Sentinel kinds for wallet errors.
var (
	ErrMissingNetworkID     = errors.New("missing network id")
	ErrInvalidSeed          = errors.New("invalid wallet seed")
	ErrDerivationFailed     = errors.New("address derivation failed")
	ErrUnsupportedVersion   = errors.New("unsupported wallet version")
	ErrMalformedEncodedSeed = errors.New("encrypted seed is not valid base64")
)
