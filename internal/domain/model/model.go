// Package model contains domain models passed between layers.
package model

import "time"

// Transfer statuses and types.
const (
	TransferTypeGasless = "GASLESS"

	TransferStatusPending  = "PENDING"
	TransferStatusComplete = "COMPLETE"
	TransferStatusFailed   = "FAILED"
)

// EventTransactionReceived is emitted to webhook subscribers when a transfer
// settles into one of their wallet's addresses.
const EventTransactionReceived = "TRANSACTION_RECEIVED"

// Address identifies a receiving address derived from a wallet seed.
type Address struct {
	AddressID string `json:"address_id"`
	WalletID  string `json:"wallet_id"`
	NetworkID string `json:"network_id"`
	Index     int    `json:"-"`
}

// WalletDetails is returned on wallet creation: the wallet plus its first
// derived address.
type WalletDetails struct {
	WalletID  string  `json:"wallet_id"`
	NetworkID string  `json:"network_id"`
	Address   Address `json:"address"`
}

// ExportData is the portable representation of a wallet: everything needed
// to rehydrate it elsewhere. The seed never leaves the service unencrypted.
type ExportData struct {
	WalletID      string    `json:"wallet_id"`
	NetworkID     string    `json:"network_id"`
	EncryptedSeed string    `json:"encrypted_seed"`
	Addresses     []Address `json:"addresses"`
}

// Transfer represents a sponsored (gasless) transfer moving through the
// settlement pipeline.
type Transfer struct {
	ID           string    `json:"transfer_id"`
	WalletID     string    `json:"wallet_id"`
	ToAddress    string    `json:"to_address"`
	Amount       string    `json:"amount"` // base-10 integer, smallest unit
	Asset        string    `json:"asset"`
	TransferType string    `json:"transfer_type"`
	Status       string    `json:"status"`
	TxHash       string    `json:"transaction_hash"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// WebhookSubscription records a callback URL registered for wallet events.
type WebhookSubscription struct {
	ID          string    `json:"webhook_id"`
	WalletID    string    `json:"wallet_id"`
	CallbackURL string    `json:"callback_url"`
	EventTypes  []string  `json:"event_types"`
	CreatedAt   time.Time `json:"created_at"`
}

// Event is the payload delivered to webhook callback URLs.
type Event struct {
	Type       string    `json:"event_type"`
	WalletID   string    `json:"wallet_id"` // recipient wallet
	TransferID string    `json:"transfer_id"`
	TxHash     string    `json:"transaction_hash"`
	ToAddress  string    `json:"to_address"`
	Amount     string    `json:"amount"`
	Asset      string    `json:"asset"`
	OccurredAt time.Time `json:"occurred_at"`
}
