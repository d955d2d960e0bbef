package webhook

import "errors"

var (
	// ErrMissingWalletID is returned when a subscription names no wallet.
	ErrMissingWalletID = errors.New("wallet id is required")
	// ErrInvalidCallbackURL is returned when the callback URL is empty or
	// not an absolute http(s) URL.
	ErrInvalidCallbackURL = errors.New("callback url must be an absolute http(s) url")
	// ErrUnsupportedEventType is returned when a subscription asks for an
	// event type the service never emits.
	ErrUnsupportedEventType = errors.New("unsupported event type")
)
