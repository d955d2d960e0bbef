// Package webhook keeps track of callback subscriptions and delivers
// settlement events to them over HTTP.
package webhook

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/pkg/metrics"
)

// supportedEvents lists the event types a subscription may ask for.
var supportedEvents = map[string]struct{}{
	model.EventTransactionReceived: {},
}

// Registry is an in-memory store of webhook subscriptions keyed by wallet.
type Registry struct {
	mu   sync.RWMutex
	subs map[string][]model.WebhookSubscription
}

// NewRegistry returns an empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[string][]model.WebhookSubscription),
	}
}

// Register records a callback URL for a wallet. An empty eventTypes slice
// subscribes to every supported event.
func (r *Registry) Register(_ context.Context, walletID, callbackURL string, eventTypes []string) (model.WebhookSubscription, error) {
	walletID = strings.TrimSpace(walletID)
	if walletID == "" {
		return model.WebhookSubscription{}, ErrMissingWalletID
	}
	if err := checkCallbackURL(callbackURL); err != nil {
		return model.WebhookSubscription{}, err
	}
	if len(eventTypes) == 0 {
		eventTypes = []string{model.EventTransactionReceived}
	}
	for _, et := range eventTypes {
		if _, ok := supportedEvents[et]; !ok {
			return model.WebhookSubscription{}, ErrUnsupportedEventType
		}
	}

	sub := model.WebhookSubscription{
		ID:          uuid.NewString(),
		WalletID:    walletID,
		CallbackURL: callbackURL,
		EventTypes:  eventTypes,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.subs[walletID] = append(r.subs[walletID], sub)
	r.mu.Unlock()

	metrics.RecordWebhookRegistered()
	return sub, nil
}

// SubscriptionsFor returns a copy of the subscriptions registered for a wallet.
func (r *Registry) SubscriptionsFor(walletID string) []model.WebhookSubscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := r.subs[walletID]
	out := make([]model.WebhookSubscription, len(subs))
	copy(out, subs)
	return out
}

// Count returns the total number of registered subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, subs := range r.subs {
		n += len(subs)
	}
	return n
}

func checkCallbackURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ErrInvalidCallbackURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidCallbackURL
	}
	if u.Host == "" {
		return ErrInvalidCallbackURL
	}
	return nil
}
