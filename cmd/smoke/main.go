package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/mpcw/walletd/internal/smoke"
)

// Default configuration constants.
const (
	defaultTimeout     = 30 * time.Second
	defaultWebhookWait = 10 * time.Second
	defaultRunTimeout  = 5 * time.Minute
)

func main() {
	var (
		baseURL       = flag.String("url", "http://127.0.0.1:8000", "Base URL of the service")
		networkID     = flag.String("network", "base-sepolia", "Network id for wallet creation")
		amount        = flag.String("amount", "100", "Transfer amount in the asset's smallest unit")
		asset         = flag.String("asset", "", "Asset to transfer (default: service default)")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		webhookWait   = flag.Duration("webhook-wait", defaultWebhookWait, "How long to wait for the webhook delivery")
		webhookSecret = flag.String("webhook-secret", "", "When set, delivered signatures are verified against it")
		logFile       = flag.String("log", "", "Log file for run output (default: smoke_log_TIMESTAMP.log)")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := smoke.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:       *baseURL,
		NetworkID:     *networkID,
		Amount:        *amount,
		Asset:         *asset,
		Timeout:       *timeout,
		WebhookWait:   *webhookWait,
		WebhookSecret: *webhookSecret,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	if err := smoke.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
