package smoke

import "time"

// Config holds configuration for the smoke run.
type Config struct {
	BaseURL       string        // Base URL of the service
	NetworkID     string        // Network passed to wallet creation
	Amount        string        // Transfer amount in the asset's smallest unit
	Asset         string        // Asset to transfer; empty lets the service default
	Timeout       time.Duration // HTTP request timeout
	WebhookWait   time.Duration // How long to wait for the webhook delivery
	WebhookSecret string        // When set, delivered signatures are verified
	LogFile       string        // Log file for run output
	Verbose       bool          // Enable verbose logging
}

// walletDetails mirrors the response of POST /wallet/create.
type walletDetails struct {
	WalletID  string  `json:"wallet_id"`
	NetworkID string  `json:"network_id"`
	Address   address `json:"address"`
}

// address mirrors the address shape used across responses.
type address struct {
	AddressID string `json:"address_id"`
	WalletID  string `json:"wallet_id"`
	NetworkID string `json:"network_id"`
}

// exportData mirrors the response of GET /wallet/export and POST /wallet/import.
type exportData struct {
	WalletID      string    `json:"wallet_id"`
	NetworkID     string    `json:"network_id"`
	EncryptedSeed string    `json:"encrypted_seed"`
	Addresses     []address `json:"addresses"`
}

// transferDetails mirrors the 202 response of POST /transaction/gasless.
type transferDetails struct {
	TransferID   string `json:"transfer_id"`
	WalletID     string `json:"wallet_id"`
	ToAddress    string `json:"to_address"`
	Amount       string `json:"amount"`
	Asset        string `json:"asset"`
	TransferType string `json:"transfer_type"`
	Status       string `json:"status"`
	TxHash       string `json:"transaction_hash"`
}

// ackResponse mirrors the duplicate ack of POST /transaction/gasless.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// subscription mirrors the response of POST /wallet/webhook.
type subscription struct {
	WebhookID   string   `json:"webhook_id"`
	WalletID    string   `json:"wallet_id"`
	CallbackURL string   `json:"callback_url"`
	EventTypes  []string `json:"event_types"`
}

// event mirrors the payload delivered to the webhook receiver.
type event struct {
	Type       string `json:"event_type"`
	WalletID   string `json:"wallet_id"`
	TransferID string `json:"transfer_id"`
	TxHash     string `json:"transaction_hash"`
	ToAddress  string `json:"to_address"`
	Amount     string `json:"amount"`
	Asset      string `json:"asset"`
}

// Stats holds smoke run statistics.
type Stats struct {
	RequestsMade     int
	WalletsCreated   int
	AddressesDerived int
	TransfersAcked   int
	DuplicatesAcked  int
	EventsReceived   int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
