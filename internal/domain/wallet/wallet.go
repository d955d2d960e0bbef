// Package wallet implements the deterministic wallet backing the service.
// A wallet is a 32-byte seed; receiving addresses are EVM addresses derived
// from the seed by index, so a wallet rehydrated from its seed re-derives
// the exact same addresses.
package wallet

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/mpcw/walletd/internal/domain/model"
)

const (
	seedLength = 32

	// A derived scalar can fall outside the secp256k1 group order; bump a
	// tweak byte and rehash until it doesn't.
	maxDerivationAttempts = 255
)

// Wallet is a deterministic wallet bound to one network.
type Wallet struct {
	id        string
	networkID string
	seed      []byte
	addresses []model.Address
}

// New creates a wallet with a fresh random seed on the given network. No
// addresses are derived yet.
func New(networkID string) (*Wallet, error) {
	if strings.TrimSpace(networkID) == "" {
		return nil, ErrMissingNetworkID
	}
	seed := make([]byte, seedLength)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return nil, fmt.Errorf("couldn't generate seed: %w", err)
	}
	return &Wallet{
		id:        uuid.NewString(),
		networkID: networkID,
		seed:      seed,
	}, nil
}

// FromSeed rehydrates a wallet from its seed, re-deriving addressCount
// addresses.
func FromSeed(id, networkID string, seed []byte, addressCount int) (*Wallet, error) {
	if len(seed) != seedLength {
		return nil, ErrInvalidSeed
	}
	if strings.TrimSpace(networkID) == "" {
		return nil, ErrMissingNetworkID
	}
	w := &Wallet{
		id:        id,
		networkID: networkID,
		seed:      seed,
	}
	for i := 0; i < addressCount; i++ {
		if _, err := w.DeriveNextAddress(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// ID returns the wallet identifier.
func (w *Wallet) ID() string { return w.id }

// NetworkID returns the network the wallet was created on.
func (w *Wallet) NetworkID() string { return w.networkID }

// Addresses returns the derived addresses in derivation order.
func (w *Wallet) Addresses() []model.Address {
	out := make([]model.Address, len(w.addresses))
	copy(out, w.addresses)
	return out
}

// OwnsAddress reports whether addr was derived from this wallet. The
// comparison is checksum-insensitive.
func (w *Wallet) OwnsAddress(addr string) bool {
	if !common.IsHexAddress(addr) {
		return false
	}
	target := common.HexToAddress(addr)
	for _, a := range w.addresses {
		if common.HexToAddress(a.AddressID) == target {
			return true
		}
	}
	return false
}

// DeriveNextAddress derives the address at the next index and records it.
func (w *Wallet) DeriveNextAddress() (model.Address, error) {
	index := len(w.addresses)
	hex, err := deriveAddress(w.seed, index)
	if err != nil {
		return model.Address{}, err
	}
	addr := model.Address{
		AddressID: hex,
		WalletID:  w.id,
		NetworkID: w.networkID,
		Index:     index,
	}
	w.addresses = append(w.addresses, addr)
	return addr, nil
}

// deriveAddress maps (seed, index) to an EVM address: the secp256k1 key is
// built from sha256(seed || index || tweak) and the address from its public
// key, as the chain would.
func deriveAddress(seed []byte, index int) (string, error) {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(index))

	material := make([]byte, 0, len(seed)+len(idx)+1)
	material = append(material, seed...)
	material = append(material, idx[:]...)

	for tweak := 0; tweak < maxDerivationAttempts; tweak++ {
		sum := sha256.Sum256(append(material, byte(tweak)))
		key, err := ethcrypto.ToECDSA(sum[:])
		if err != nil {
			continue
		}
		return ethcrypto.PubkeyToAddress(key.PublicKey).Hex(), nil
	}
	return "", ErrDerivationFailed
}
