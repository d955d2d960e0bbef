// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// WalletsHome is the directory holding encrypted wallet files.
	WalletsHome string `koanf:"wallets_home"`

	// APIKeyName identifies the service's API key.
	APIKeyName string `koanf:"api_key_name"`

	// APIKeyPrivate is the key material; it also seals wallet seed files
	// and signs webhook deliveries.
	APIKeyPrivate string `koanf:"api_key_private"`

	// DefaultNetworkID is applied when /wallet/create names no network.
	DefaultNetworkID string `koanf:"default_network_id"`

	// DefaultAsset is applied to gasless transfers naming no asset.
	DefaultAsset string `koanf:"default_asset"`

	// FaucetAmount seeds every new wallet's DefaultAsset balance so local
	// transfers can settle. Empty disables seeding.
	FaucetAmount string `koanf:"faucet_amount"`

	// TransferQueueSize bounds the in-memory settlement queue.
	TransferQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of settlement workers.
	WorkerCount int `koanf:"worker_count"`

	// ReplayGuardSize sets the size of the idempotency cache.
	ReplayGuardSize int `koanf:"replay_guard_size"`

	// WebhookTimeoutMS bounds each webhook delivery attempt.
	WebhookTimeoutMS int `koanf:"webhook_timeout_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8000",
		WalletsHome:       ".wallets",
		DefaultNetworkID:  "base-sepolia",
		DefaultAsset:      "USDC",
		FaucetAmount:      "1000000",
		TransferQueueSize: 10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		ReplayGuardSize:   50_000,
		WebhookTimeoutMS:  5_000,
	}
}
