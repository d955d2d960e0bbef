package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/pkg/logger"
	"github.com/mpcw/walletd/pkg/metrics"
)

const (
	// SignatureHeader carries the hex-encoded HMAC-SHA256 of the request body.
	SignatureHeader = "X-Webhook-Signature"
	// EventHeader carries the event type so receivers can route without
	// parsing the body.
	EventHeader = "X-Webhook-Event"

	defaultTimeout = 5 * time.Second
)

// Resolver maps an on-network address back to a local wallet, if any.
type Resolver interface {
	WalletForAddress(ctx context.Context, address string) (string, bool)
}

// Dispatcher delivers settlement events to subscribed callback URLs.
// Delivery is best effort: one attempt per subscription, failures are
// logged and counted but never retried.
type Dispatcher struct {
	registry *Registry
	resolver Resolver
	client   *http.Client
	secret   []byte
	log      logger.Logger
}

// NewDispatcher returns a dispatcher over the given registry. The resolver
// decides which local wallet, if any, received a settled transfer.
func NewDispatcher(registry *Registry, resolver Resolver, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		resolver: resolver,
		client:   &http.Client{Timeout: defaultTimeout},
		log:      logger.Named("webhook"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TransferSettled emits a TRANSACTION_RECEIVED event to every subscription
// of the recipient wallet. Transfers settling to an address the service does
// not own produce no event.
func (d *Dispatcher) TransferSettled(ctx context.Context, t model.Transfer) {
	recipient, ok := d.resolver.WalletForAddress(ctx, t.ToAddress)
	if !ok {
		return
	}

	event := model.Event{
		Type:       model.EventTransactionReceived,
		WalletID:   recipient,
		TransferID: t.ID,
		TxHash:     t.TxHash,
		ToAddress:  t.ToAddress,
		Amount:     t.Amount,
		Asset:      t.Asset,
		OccurredAt: time.Now().UTC(),
	}

	for _, sub := range d.registry.SubscriptionsFor(recipient) {
		if !subscribed(sub, event.Type) {
			continue
		}
		d.deliver(ctx, sub, event)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sub model.WebhookSubscription, event model.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		d.log.Error(ctx, "failed to encode webhook event", logger.Error(err))
		metrics.RecordWebhookFailure()
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.CallbackURL, bytes.NewReader(body))
	if err != nil {
		d.log.Error(ctx, "failed to build webhook request",
			logger.String("callback_url", sub.CallbackURL),
			logger.Error(err))
		metrics.RecordWebhookFailure()
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, event.Type)
	if len(d.secret) > 0 {
		req.Header.Set(SignatureHeader, Sign(d.secret, body))
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	metrics.RecordWebhookLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		d.log.Warn(ctx, "webhook delivery failed",
			logger.String("webhook_id", sub.ID),
			logger.String("callback_url", sub.CallbackURL),
			logger.Error(err))
		metrics.RecordWebhookFailure()
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.log.Warn(ctx, "webhook receiver rejected event",
			logger.String("webhook_id", sub.ID),
			logger.Int("status_code", resp.StatusCode))
		metrics.RecordWebhookFailure()
		return
	}

	metrics.RecordWebhookDelivery()
	d.log.Debug(ctx, "webhook delivered",
		logger.String("webhook_id", sub.ID),
		logger.String("transfer_id", event.TransferID))
}

// Sign returns the hex-encoded HMAC-SHA256 of body under secret. Receivers
// recompute it to authenticate the sender.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func subscribed(sub model.WebhookSubscription, eventType string) bool {
	for _, et := range sub.EventTypes {
		if et == eventType {
			return true
		}
	}
	return false
}
