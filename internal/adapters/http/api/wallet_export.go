package api

import "net/http"

// WalletExportHandler handles wallet export requests.
type WalletExportHandler struct {
	deps Dependencies
}

// NewWalletExportHandler creates a new wallet export handler.
func NewWalletExportHandler(deps Dependencies) *WalletExportHandler {
	return &WalletExportHandler{deps: deps}
}

// HandleExportWallet handles GET /wallet/export requests, returning the
// active wallet's export data. The seed stays encrypted in transit.
func (h *WalletExportHandler) HandleExportWallet(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_wallet"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	data, err := h.deps.ExportWallet(r.Context())
	if err != nil {
		writeWalletError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
