package webhook

import (
	"net/http"
	"time"

	"github.com/mpcw/walletd/pkg/logger"
)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each delivery attempt.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.client.Timeout = timeout
		}
	}
}

// WithSecret sets the HMAC key used to sign delivered payloads.
func WithSecret(secret []byte) DispatcherOption {
	return func(d *Dispatcher) {
		d.secret = secret
	}
}

// WithHTTPClient replaces the delivery client.
func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}
