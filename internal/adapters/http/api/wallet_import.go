package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// importRequest mirrors the wire shape for POST /wallet/import. The pointer
// distinguishes a missing field from an empty one.
type importRequest struct {
	EncryptedSeed *string `json:"encrypted_seed"`
}

// WalletImportHandler handles wallet import requests.
type WalletImportHandler struct {
	deps Dependencies
}

// NewWalletImportHandler creates a new wallet import handler.
func NewWalletImportHandler(deps Dependencies) *WalletImportHandler {
	return &WalletImportHandler{deps: deps}
}

// HandleImportWallet handles POST /wallet/import requests. A body without
// the encrypted_seed field is rejected with 422; a present but undecryptable
// seed with 400.
func (h *WalletImportHandler) HandleImportWallet(w http.ResponseWriter, r *http.Request) {
	const op = "api.import_wallet"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "unprocessable_entity", WrapKind(op, ErrUnprocessable, err))
		return
	}
	if req.EncryptedSeed == nil {
		writeError(w, http.StatusUnprocessableEntity, "missing_encrypted_seed", NewKind(op, ErrUnprocessable))
		return
	}

	data, err := h.deps.ImportWallet(r.Context(), strings.TrimSpace(*req.EncryptedSeed))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, data)
}
