// Package repository provides persistence for wallets and balances.
package repository

import (
	"context"

	"github.com/mpcw/walletd/internal/domain/wallet"
)

// Store provides access to persisted wallets and the active-wallet marker.
// The service keeps exactly one active wallet; create and import move the
// marker, read operations follow it.
type Store interface {
	// SaveWallet seals the wallet with passphrase and persists it.
	SaveWallet(ctx context.Context, w *wallet.Wallet, passphrase string) error

	// GetWallet loads and rehydrates a wallet by id.
	// Returns ErrWalletNotFound if the wallet is unknown.
	GetWallet(ctx context.Context, id, passphrase string) (*wallet.Wallet, error)

	// WalletExists reports whether a wallet with this id is persisted.
	WalletExists(ctx context.Context, id string) (bool, error)

	// ListWallets returns the persisted wallet ids, sorted.
	ListWallets(ctx context.Context) ([]string, error)

	// SetActiveWallet points the active-wallet marker at id.
	SetActiveWallet(ctx context.Context, id string) error

	// ActiveWallet loads the wallet the marker points at.
	// Returns ErrNoActiveWallet when the marker is unset.
	ActiveWallet(ctx context.Context, passphrase string) (*wallet.Wallet, error)

	// Count returns the number of persisted wallets.
	Count(ctx context.Context) int
}
