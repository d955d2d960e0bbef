package smoke

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mpcw/walletd/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Wallet API Smoke Tool
=====================

Walks the wallet service's HTTP surface end to end: create, address,
balances, export, import, gasless transfer (with duplicate ack), and
webhook delivery to a local receiver.

Usage:
  go run cmd/smoke/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://127.0.0.1:8000")
  -network string
        Network id for wallet creation (default "base-sepolia")
  -amount string
        Transfer amount in the asset's smallest unit (default "100")
  -asset string
        Asset to transfer (default: service default)
  -timeout duration
        HTTP request timeout (default 30s)
  -webhook-wait duration
        How long to wait for the webhook delivery (default 10s)
  -webhook-secret string
        When set, delivered signatures are verified against it
  -log string
        Log file for run output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Run against a local service
  go run cmd/smoke/main.go

  # Run against another host with signature verification
  go run cmd/smoke/main.go -url http://10.0.0.5:8000 -webhook-secret my-key
`)
}
