package api

import "net/http"

// WalletBalancesHandler handles balance queries for the active wallet.
type WalletBalancesHandler struct {
	deps Dependencies
}

// NewWalletBalancesHandler creates a new balances handler.
func NewWalletBalancesHandler(deps Dependencies) *WalletBalancesHandler {
	return &WalletBalancesHandler{deps: deps}
}

// HandleGetBalances handles GET /wallet/balances requests.
func (h *WalletBalancesHandler) HandleGetBalances(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_balances"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	balances, err := h.deps.Balances(r.Context())
	if err != nil {
		writeWalletError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}
