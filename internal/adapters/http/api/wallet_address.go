package api

import "net/http"

// WalletAddressHandler handles address derivation requests.
type WalletAddressHandler struct {
	deps Dependencies
}

// NewWalletAddressHandler creates a new address handler.
func NewWalletAddressHandler(deps Dependencies) *WalletAddressHandler {
	return &WalletAddressHandler{deps: deps}
}

// HandleCreateAddress handles POST /wallet/address requests, deriving the
// next address of the active wallet.
func (h *WalletAddressHandler) HandleCreateAddress(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_address"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	addr, err := h.deps.CreateAddress(r.Context())
	if err != nil {
		writeWalletError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}
