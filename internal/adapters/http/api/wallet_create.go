package api

import (
	"net/http"
	"strings"
)

// WalletCreateHandler handles wallet creation requests.
type WalletCreateHandler struct {
	deps Dependencies
}

// NewWalletCreateHandler creates a new wallet creation handler.
func NewWalletCreateHandler(deps Dependencies) *WalletCreateHandler {
	return &WalletCreateHandler{deps: deps}
}

// HandleCreateWallet handles POST /wallet/create requests. The target
// network is passed as the network_id query parameter; the new wallet
// becomes the active one.
func (h *WalletCreateHandler) HandleCreateWallet(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_wallet"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	networkID := strings.TrimSpace(r.URL.Query().Get("network_id"))
	details, err := h.deps.CreateWallet(r.Context(), networkID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, details)
}
