package api

import (
	"encoding/json"
	"net/http"

	"github.com/mpcw/walletd/internal/domain/transfer"
	"github.com/mpcw/walletd/pkg/metrics"
)

// gaslessRequest mirrors the wire shape for POST /transaction/gasless.
type gaslessRequest struct {
	WalletID  string `json:"wallet_id"`
	ToAddress string `json:"to_address"`
	Amount    string `json:"amount"`
	Asset     string `json:"asset"`
}

// GaslessHandler handles sponsored transfer submissions.
type GaslessHandler struct {
	deps         Dependencies
	defaultAsset string
}

// NewGaslessHandler creates a new gasless transfer handler.
func NewGaslessHandler(deps Dependencies, defaultAsset string) *GaslessHandler {
	return &GaslessHandler{deps: deps, defaultAsset: defaultAsset}
}

// HandleGaslessTransfer handles POST /transaction/gasless requests. Valid
// submissions are replay-guarded and enqueued for async settlement; the
// response acks with 202 and the pending transfer.
func (h *GaslessHandler) HandleGaslessTransfer(w http.ResponseWriter, r *http.Request) {
	const op = "api.gasless_transfer"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var body gaslessRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	req := transfer.Request{
		WalletID:  body.WalletID,
		ToAddress: body.ToAddress,
		Amount:    body.Amount,
		Asset:     body.Asset,
	}
	req.Normalize(h.defaultAsset)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	known, err := h.deps.HasWallet(r.Context(), req.WalletID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	if !known {
		writeError(w, http.StatusNotFound, "wallet_not_found", NewKind(op, ErrNotFound))
		return
	}

	// Idempotency check - mark as seen first.
	key := transfer.IdempotencyKey(req)
	if h.deps.ObserveAndRecord(r.Context(), key) {
		metrics.RecordTransferDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	t := transfer.New(req)
	if ok := h.deps.Enqueue(r.Context(), t); !ok {
		// Roll back the "seen" status since enqueue failed.
		h.deps.Forget(r.Context(), key)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}

	metrics.RecordTransferSubmitted()
	writeJSON(w, http.StatusAccepted, t)
}
