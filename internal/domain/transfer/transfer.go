// Package transfer defines gasless transfer submission and settlement.
package transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/mpcw/walletd/internal/domain/model"
)

// Request is the submission shape for a gasless transfer.
type Request struct {
	WalletID  string
	ToAddress string
	Amount    string // base-10 integer, smallest unit
	Asset     string
}

// Normalize trims fields and applies the configured default asset when none
// was provided. Assets are upper-cased ("usdc" and "USDC" are the same).
func (r *Request) Normalize(defaultAsset string) {
	r.WalletID = strings.TrimSpace(r.WalletID)
	r.ToAddress = strings.TrimSpace(r.ToAddress)
	r.Amount = strings.TrimSpace(r.Amount)
	r.Asset = strings.ToUpper(strings.TrimSpace(r.Asset))
	if r.Asset == "" {
		r.Asset = strings.ToUpper(strings.TrimSpace(defaultAsset))
	}
}

// Validate checks a normalized request.
func (r Request) Validate() error {
	switch {
	case r.WalletID == "":
		return ErrMissingWalletID
	case !common.IsHexAddress(r.ToAddress):
		return ErrInvalidToAddress
	case r.Asset == "":
		return ErrMissingAsset
	}
	if _, err := ParseAmount(r.Amount); err != nil {
		return err
	}
	return nil
}

// ParseAmount parses a positive base-10 integer amount in the smallest unit.
func ParseAmount(amount string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok || v.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	return v, nil
}

// New builds a pending transfer from a validated request. The transaction
// hash commits to the transfer identity and payload.
func New(r Request) model.Transfer {
	id := uuid.NewString()
	hash := ethcrypto.Keccak256Hash(
		[]byte(id),
		[]byte(r.WalletID),
		common.HexToAddress(r.ToAddress).Bytes(),
		[]byte(r.Amount),
		[]byte(r.Asset),
	)
	return model.Transfer{
		ID:           id,
		WalletID:     r.WalletID,
		ToAddress:    common.HexToAddress(r.ToAddress).Hex(),
		Amount:       r.Amount,
		Asset:        r.Asset,
		TransferType: model.TransferTypeGasless,
		Status:       model.TransferStatusPending,
		TxHash:       hash.Hex(),
		SubmittedAt:  time.Now().UTC(),
	}
}

// IdempotencyKey derives a stable key over the request payload so an
// identical resubmission is recognized as a replay.
func IdempotencyKey(r Request) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		r.WalletID,
		strings.ToLower(r.ToAddress),
		r.Amount,
		r.Asset,
	}, "|")))
	return hex.EncodeToString(sum[:])
}
