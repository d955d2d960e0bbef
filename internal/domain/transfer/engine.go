package transfer

import (
	"context"
	"errors"

	"github.com/mpcw/walletd/internal/domain/model"
)

// Ledger is the balance book the engine settles against.
type Ledger interface {
	// Debit removes amount of asset from the wallet, failing on
	// insufficient funds.
	Debit(ctx context.Context, walletID, asset, amount string) error
	// Credit adds amount of asset to the wallet.
	Credit(ctx context.Context, walletID, asset, amount string) error
}

// AddressResolver maps a receiving address to the local wallet owning it,
// when there is one. External addresses resolve to false.
type AddressResolver interface {
	WalletForAddress(ctx context.Context, address string) (string, bool)
}

// Engine settles pending transfers against the ledger. Fees are sponsored,
// so only the transferred asset moves.
type Engine struct {
	ledger   Ledger
	resolver AddressResolver
}

// NewEngine creates a settlement engine.
func NewEngine(ledger Ledger, resolver AddressResolver) *Engine {
	return &Engine{ledger: ledger, resolver: resolver}
}

// Settle debits the sender and, when the destination address belongs to a
// local wallet, credits it. The returned transfer carries the final status.
// A failed settlement returns the transfer marked FAILED alongside the error.
func (e *Engine) Settle(ctx context.Context, t model.Transfer) (model.Transfer, error) {
	if err := e.ledger.Debit(ctx, t.WalletID, t.Asset, t.Amount); err != nil {
		t.Status = model.TransferStatusFailed
		return t, err
	}

	if recipient, ok := e.resolver.WalletForAddress(ctx, t.ToAddress); ok {
		if err := e.ledger.Credit(ctx, recipient, t.Asset, t.Amount); err != nil {
			// Roll the debit back so funds are not burned on a credit
			// failure.
			if rbErr := e.ledger.Credit(ctx, t.WalletID, t.Asset, t.Amount); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
			t.Status = model.TransferStatusFailed
			return t, err
		}
	}

	t.Status = model.TransferStatusComplete
	return t, nil
}
