package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// webhookRequest mirrors the wire shape for POST /wallet/webhook.
type webhookRequest struct {
	CallbackURL string   `json:"callback_url"`
	EventTypes  []string `json:"event_types"`
}

// WalletWebhookHandler handles webhook subscription requests.
type WalletWebhookHandler struct {
	deps Dependencies
}

// NewWalletWebhookHandler creates a new webhook handler.
func NewWalletWebhookHandler(deps Dependencies) *WalletWebhookHandler {
	return &WalletWebhookHandler{deps: deps}
}

// HandleRegisterWebhook handles POST /wallet/webhook requests, subscribing
// a callback URL to the active wallet's settlement events.
func (h *WalletWebhookHandler) HandleRegisterWebhook(w http.ResponseWriter, r *http.Request) {
	const op = "api.register_webhook"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.CallbackURL) == "" {
		writeError(w, http.StatusBadRequest, "missing_callback_url", NewKind(op, ErrBadRequest))
		return
	}

	sub, err := h.deps.RegisterWebhook(r.Context(), req.CallbackURL, req.EventTypes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
