package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mpcw/walletd/internal/domain/wallet"
)

// activeMarker is the file under the wallets home holding the active wallet
// id. The leading dot keeps it out of wallet listings.
const activeMarker = ".active"

const (
	dirPerm  = 0o700
	filePerm = 0o600
)

// FileStore persists one encrypted wallet file per wallet under a home
// directory.
type FileStore struct {
	walletsHome string
}

// NewFileStore ensures the wallets home exists and returns a store over it.
func NewFileStore(walletsHome string) (*FileStore, error) {
	if err := os.MkdirAll(walletsHome, dirPerm); err != nil {
		return nil, fmt.Errorf("couldn't ensure directories at %s: %w", walletsHome, err)
	}
	return &FileStore{walletsHome: walletsHome}, nil
}

// SaveWallet seals the wallet with passphrase and writes it to disk.
func (s *FileStore) SaveWallet(ctx context.Context, w *wallet.Wallet, passphrase string) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}
	if err := checkWalletName(w.ID()); err != nil {
		return err
	}

	encBuf, err := w.MarshalEncrypted(passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.walletPath(w.ID()), encBuf, filePerm); err != nil {
		return fmt.Errorf("couldn't write wallet file: %w", err)
	}
	return nil
}

// GetWallet loads and rehydrates a wallet by id.
func (s *FileStore) GetWallet(ctx context.Context, id, passphrase string) (*wallet.Wallet, error) {
	if err := checkContextStatus(ctx); err != nil {
		return nil, err
	}
	if err := checkWalletName(id); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(s.walletPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("couldn't read file at %s: %w", s.walletsHome, err)
	}
	return wallet.FromEncrypted(buf, passphrase)
}

// WalletExists reports whether a wallet file exists for id.
func (s *FileStore) WalletExists(ctx context.Context, id string) (bool, error) {
	if err := checkContextStatus(ctx); err != nil {
		return false, err
	}
	if err := checkWalletName(id); err != nil {
		return false, err
	}

	if _, err := os.Stat(s.walletPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("couldn't verify path: %w", err)
	}
	return true, nil
}

// ListWallets returns the ids of persisted wallets, sorted. Dot files are
// skipped, which keeps the active marker out of the listing.
func (s *FileStore) ListWallets(ctx context.Context) ([]string, error) {
	if err := checkContextStatus(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.walletsHome)
	if err != nil {
		return nil, fmt.Errorf("couldn't read directory at %s: %w", s.walletsHome, err)
	}
	wallets := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		wallets = append(wallets, entry.Name())
	}
	sort.Strings(wallets)
	return wallets, nil
}

// SetActiveWallet points the marker at id. The wallet must exist.
func (s *FileStore) SetActiveWallet(ctx context.Context, id string) error {
	exists, err := s.WalletExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrWalletNotFound
	}
	if err := os.WriteFile(filepath.Join(s.walletsHome, activeMarker), []byte(id), filePerm); err != nil {
		return fmt.Errorf("couldn't write active marker: %w", err)
	}
	return nil
}

// ActiveWallet loads the wallet the marker points at.
func (s *FileStore) ActiveWallet(ctx context.Context, passphrase string) (*wallet.Wallet, error) {
	if err := checkContextStatus(ctx); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(filepath.Join(s.walletsHome, activeMarker))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoActiveWallet
		}
		return nil, fmt.Errorf("couldn't read active marker: %w", err)
	}
	id := strings.TrimSpace(string(buf))
	if id == "" {
		return nil, ErrNoActiveWallet
	}
	return s.GetWallet(ctx, id, passphrase)
}

// Count returns the number of persisted wallets.
func (s *FileStore) Count(ctx context.Context) int {
	wallets, err := s.ListWallets(ctx)
	if err != nil {
		return 0
	}
	return len(wallets)
}

func (s *FileStore) walletPath(id string) string {
	return filepath.Join(s.walletsHome, id)
}

// checkWalletName rejects ids that would escape the wallets home or collide
// with the marker file.
func checkWalletName(id string) error {
	if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
		return ErrInvalidWalletName
	}
	return nil
}

func checkContextStatus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context status: %w", err)
	}
	return nil
}
