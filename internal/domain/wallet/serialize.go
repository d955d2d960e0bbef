package wallet

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mpcw/walletd/pkg/crypto"
)

// currentVersion tags the persisted wallet layout.
const currentVersion uint32 = 1

// persistedWallet is the versioned JSON layout sealed inside the encrypted
// payload. Seed is base64 through encoding/json's []byte handling.
type persistedWallet struct {
	Version      uint32 `json:"version"`
	WalletID     string `json:"wallet_id"`
	NetworkID    string `json:"network_id"`
	Seed         []byte `json:"seed"`
	AddressCount int    `json:"address_count"`
}

// MarshalEncrypted serializes the wallet and seals it with passphrase.
func (w *Wallet) MarshalEncrypted(passphrase string) ([]byte, error) {
	buf, err := json.Marshal(persistedWallet{
		Version:      currentVersion,
		WalletID:     w.id,
		NetworkID:    w.networkID,
		Seed:         w.seed,
		AddressCount: len(w.addresses),
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal wallet: %w", err)
	}
	encBuf, err := crypto.Encrypt(buf, passphrase)
	if err != nil {
		return nil, fmt.Errorf("couldn't encrypt wallet: %w", err)
	}
	return encBuf, nil
}

// FromEncrypted opens an encrypted payload produced by MarshalEncrypted and
// rehydrates the wallet, re-deriving its addresses.
func FromEncrypted(buf []byte, passphrase string) (*Wallet, error) {
	decBuf, err := crypto.Decrypt(buf, passphrase)
	if err != nil {
		return nil, err
	}

	var p persistedWallet
	if err := json.Unmarshal(decBuf, &p); err != nil {
		return nil, fmt.Errorf("couldn't unmarshal wallet: %w", err)
	}
	if p.Version != currentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	return FromSeed(p.WalletID, p.NetworkID, p.Seed, p.AddressCount)
}

// EncodeSeed returns the transport form of an encrypted wallet payload, as
// carried in the encrypted_seed field.
func EncodeSeed(encrypted []byte) string {
	return base64.StdEncoding.EncodeToString(encrypted)
}

// DecodeSeed reverses EncodeSeed.
func DecodeSeed(encoded string) ([]byte, error) {
	buf, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformedEncodedSeed
	}
	return buf, nil
}
