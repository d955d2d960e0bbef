// Package worker defines the relayer workers that settle queued transfers
// and fan out webhook notifications.
package worker

import (
	"github.com/mpcw/walletd/pkg/logger"
)

// Option applies a configuration option to the Relayer.
type Option func(*Relayer)

// WithName sets the relayer name for identification and logging.
func WithName(name string) Option {
	return func(w *Relayer) {
		if name != "" {
			w.name = name
			w.logger = logger.Get().Named(name)
		}
	}
}

// WithLogger sets a custom logger for the relayer.
func WithLogger(l logger.Logger) Option {
	return func(w *Relayer) {
		if l != nil {
			w.logger = l
		}
	}
}
