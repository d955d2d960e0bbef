package repository

import (
	"context"
	"math/big"
	"sync"
)

// Ledger is the in-memory balance book. Amounts are positive base-10
// integers in the asset's smallest unit; the chain itself is not consulted.
type Ledger struct {
	mu       sync.RWMutex
	balances map[string]map[string]*big.Int // wallet id -> asset -> amount

	faucetAsset  string
	faucetAmount *big.Int
}

// LedgerOption applies a configuration option to the Ledger.
type LedgerOption func(*Ledger)

// WithFaucet seeds every initialized wallet with amount of asset. Test
// networks have faucets; a local ledger needs one too or no transfer could
// ever settle. An unparsable or non-positive amount disables seeding.
func WithFaucet(asset, amount string) LedgerOption {
	return func(l *Ledger) {
		v, ok := new(big.Int).SetString(amount, 10)
		if asset != "" && ok && v.Sign() > 0 {
			l.faucetAsset = asset
			l.faucetAmount = v
		}
	}
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		balances: make(map[string]map[string]*big.Int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InitWallet registers a wallet in the ledger, applying the faucet seed
// once. Re-initializing an already known wallet is a no-op.
func (l *Ledger) InitWallet(_ context.Context, walletID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.balances[walletID]; ok {
		return
	}
	assets := make(map[string]*big.Int)
	if l.faucetAmount != nil {
		assets[l.faucetAsset] = new(big.Int).Set(l.faucetAmount)
	}
	l.balances[walletID] = assets
}

// Credit adds amount of asset to the wallet, creating the account if needed.
func (l *Ledger) Credit(_ context.Context, walletID, asset, amount string) error {
	v, err := parseAmount(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	assets, ok := l.balances[walletID]
	if !ok {
		assets = make(map[string]*big.Int)
		l.balances[walletID] = assets
	}
	if cur, ok := assets[asset]; ok {
		cur.Add(cur, v)
	} else {
		assets[asset] = v
	}
	return nil
}

// Debit removes amount of asset from the wallet.
// Returns ErrInsufficientFunds when the balance cannot cover it.
func (l *Ledger) Debit(_ context.Context, walletID, asset, amount string) error {
	v, err := parseAmount(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	assets, ok := l.balances[walletID]
	if !ok {
		return ErrInsufficientFunds
	}
	cur, ok := assets[asset]
	if !ok || cur.Cmp(v) < 0 {
		return ErrInsufficientFunds
	}
	cur.Sub(cur, v)
	return nil
}

// Balances returns the wallet's balances as asset -> decimal string. A
// wallet unknown to the ledger has empty balances, not an error.
func (l *Ledger) Balances(_ context.Context, walletID string) map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]string)
	for asset, v := range l.balances[walletID] {
		out[asset] = v.String()
	}
	return out
}

func parseAmount(amount string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok || v.Sign() <= 0 {
		return nil, ErrMalformedAmount
	}
	return v, nil
}
