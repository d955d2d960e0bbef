// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mpcw/walletd/internal/adapters/repository"
	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/internal/domain/replay"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	replay.Guard

	// Enqueue pushes a transfer for async settlement. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, t model.Transfer) bool

	// Wallet operations over the single active wallet.
	CreateWallet(ctx context.Context, networkID string) (model.WalletDetails, error)
	ImportWallet(ctx context.Context, encryptedSeed string) (model.ExportData, error)
	ExportWallet(ctx context.Context) (model.ExportData, error)
	Balances(ctx context.Context) (map[string]string, error)
	CreateAddress(ctx context.Context) (model.Address, error)

	// HasWallet reports whether a wallet id is known to the service.
	HasWallet(ctx context.Context, id string) (bool, error)

	// RegisterWebhook subscribes a callback URL to the active wallet's
	// events.
	RegisterWebhook(ctx context.Context, callbackURL string, eventTypes []string) (model.WebhookSubscription, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	createHandler   *WalletCreateHandler
	importHandler   *WalletImportHandler
	exportHandler   *WalletExportHandler
	balancesHandler *WalletBalancesHandler
	addressHandler  *WalletAddressHandler
	gaslessHandler  *GaslessHandler
	webhookHandler  *WalletWebhookHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultAsset string) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		createHandler:   NewWalletCreateHandler(deps),
		importHandler:   NewWalletImportHandler(deps),
		exportHandler:   NewWalletExportHandler(deps),
		balancesHandler: NewWalletBalancesHandler(deps),
		addressHandler:  NewWalletAddressHandler(deps),
		gaslessHandler:  NewGaslessHandler(deps, defaultAsset),
		webhookHandler:  NewWalletWebhookHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/wallet/create", MetricsMiddleware(s.createHandler.HandleCreateWallet, "wallet_create"))
	mux.HandleFunc("/wallet/import", MetricsMiddleware(s.importHandler.HandleImportWallet, "wallet_import"))
	mux.HandleFunc("/wallet/export", MetricsMiddleware(s.exportHandler.HandleExportWallet, "wallet_export"))
	mux.HandleFunc("/wallet/balances", MetricsMiddleware(s.balancesHandler.HandleGetBalances, "wallet_balances"))
	mux.HandleFunc("/wallet/address", MetricsMiddleware(s.addressHandler.HandleCreateAddress, "wallet_address"))
	mux.HandleFunc("/wallet/webhook", MetricsMiddleware(s.webhookHandler.HandleRegisterWebhook, "wallet_webhook"))
	mux.HandleFunc("/transaction/gasless", MetricsMiddleware(s.gaslessHandler.HandleGaslessTransfer, "transaction_gasless"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeWalletError maps wallet-operation errors onto the API's error
// semantics: a missing active wallet is a client error, everything else a
// server one.
func writeWalletError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNoActiveWallet) {
		writeError(w, http.StatusBadRequest, "no_active_wallet", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
}
