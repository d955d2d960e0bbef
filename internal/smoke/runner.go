// Package smoke walks the service's HTTP surface end to end against a
// running instance: wallet lifecycle, gasless transfer, and webhook
// delivery. It is the executable counterpart of the API reference.
package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mpcw/walletd/pkg/logger"
)

// Run executes the complete smoke scenario.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting wallet API smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.String("networkID", config.NetworkID),
		logger.String("amount", config.Amount),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.Timeout)

	// Step 1: service must be up.
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: create a wallet; it becomes the active one.
	var details walletDetails
	status, err := client.postJSON(ctx, config.BaseURL+"/wallet/create?network_id="+config.NetworkID, nil, &details)
	stats.RequestsMade++
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("wallet creation failed (status %d): %w", status, err)
	}
	stats.WalletsCreated++
	stats.AddressesDerived++
	log.Info(ctx, "wallet created",
		logger.String("walletID", details.WalletID),
		logger.String("address", details.Address.AddressID))

	// Step 3: derive a second address to receive the transfer.
	var second address
	status, err = client.postJSON(ctx, config.BaseURL+"/wallet/address", nil, &second)
	stats.RequestsMade++
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("address derivation failed (status %d): %w", status, err)
	}
	stats.AddressesDerived++
	log.Info(ctx, "address derived", logger.String("address", second.AddressID))

	// Step 4: balances must carry the faucet seed.
	var balances map[string]string
	status, err = client.getJSON(ctx, config.BaseURL+"/wallet/balances", &balances)
	stats.RequestsMade++
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("balance query failed (status %d): %w", status, err)
	}
	log.Info(ctx, "balances fetched", logger.Any("balances", balances))

	// Step 5: export, then import the same wallet back.
	var exported exportData
	status, err = client.getJSON(ctx, config.BaseURL+"/wallet/export", &exported)
	stats.RequestsMade++
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("wallet export failed (status %d): %w", status, err)
	}
	if exported.EncryptedSeed == "" {
		return fmt.Errorf("wallet export returned no encrypted seed")
	}

	var imported exportData
	status, err = client.postJSON(ctx, config.BaseURL+"/wallet/import",
		map[string]string{"encrypted_seed": exported.EncryptedSeed}, &imported)
	stats.RequestsMade++
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("wallet import failed (status %d): %w", status, err)
	}
	if imported.WalletID != exported.WalletID {
		return fmt.Errorf("import changed the wallet id: %q != %q", imported.WalletID, exported.WalletID)
	}
	log.Info(ctx, "wallet exported and re-imported", logger.String("walletID", imported.WalletID))

	// Step 6: register a local webhook receiver.
	recv, err := startReceiver(config.WebhookSecret)
	if err != nil {
		return err
	}
	defer func() { _ = recv.Close() }()

	var sub subscription
	status, err = client.postJSON(ctx, config.BaseURL+"/wallet/webhook",
		map[string]string{"callback_url": recv.URL()}, &sub)
	stats.RequestsMade++
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("webhook registration failed (status %d): %w", status, err)
	}
	log.Info(ctx, "webhook registered",
		logger.String("webhookID", sub.WebhookID),
		logger.String("callbackURL", recv.URL()))

	// Step 7: submit a gasless transfer to the wallet's own second address.
	transferBody := map[string]string{
		"wallet_id":  details.WalletID,
		"to_address": second.AddressID,
		"amount":     config.Amount,
		"asset":      config.Asset,
	}
	var accepted transferDetails
	status, err = client.postJSON(ctx, config.BaseURL+"/transaction/gasless", transferBody, &accepted)
	stats.RequestsMade++
	if err != nil || status != http.StatusAccepted {
		return fmt.Errorf("gasless transfer failed (status %d): %w", status, err)
	}
	stats.TransfersAcked++
	log.Info(ctx, "transfer accepted",
		logger.String("transferID", accepted.TransferID),
		logger.String("txHash", accepted.TxHash),
		logger.String("status", accepted.Status))

	// Step 8: an identical resubmission must ack as duplicate.
	var ack ackResponse
	status, err = client.postJSON(ctx, config.BaseURL+"/transaction/gasless", transferBody, &ack)
	stats.RequestsMade++
	if err != nil || status != http.StatusOK || !ack.Duplicate {
		return fmt.Errorf("duplicate submission not acked (status %d, duplicate %t): %w", status, ack.Duplicate, err)
	}
	stats.DuplicatesAcked++
	log.Info(ctx, "duplicate submission acked")

	// Step 9: the settlement must reach the webhook receiver.
	delivered, ok := recv.waitForEvent(ctx, config.WebhookWait)
	if !ok {
		return fmt.Errorf("no webhook delivery within %s", config.WebhookWait)
	}
	stats.EventsReceived++
	if delivered.TransferID != accepted.TransferID {
		return fmt.Errorf("webhook carried transfer %q, want %q", delivered.TransferID, accepted.TransferID)
	}
	if config.WebhookSecret != "" && recv.badSignatures() > 0 {
		return fmt.Errorf("%d webhook deliveries failed signature verification", recv.badSignatures())
	}
	log.Info(ctx, "webhook delivered",
		logger.String("eventType", delivered.Type),
		logger.String("transferID", delivered.TransferID))

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	log.Info(ctx, "smoke run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	// /healthz serves Prometheus metrics; any 200 counts as healthy.
	status, err := client.getJSON(ctx, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("requestsMade", stats.RequestsMade),
		logger.Int("walletsCreated", stats.WalletsCreated),
		logger.Int("addressesDerived", stats.AddressesDerived),
		logger.Int("transfersAcked", stats.TransfersAcked),
		logger.Int("duplicatesAcked", stats.DuplicatesAcked),
		logger.Int("eventsReceived", stats.EventsReceived),
		logger.String("duration", stats.Duration.String()))
}
