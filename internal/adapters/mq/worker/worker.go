// Package worker defines the relayer workers that settle queued transfers
// and fan out webhook notifications.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/mpcw/walletd/internal/adapters/mq/queue"
	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/pkg/logger"
	"github.com/mpcw/walletd/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
)

// Transfer is what workers read off the queue.
type Transfer = model.Transfer

// Settler finalizes a pending transfer against the ledger.
type Settler interface {
	Settle(ctx context.Context, t Transfer) (Transfer, error)
}

// Notifier is told about settled transfers so webhook subscribers can be
// informed. Implementations must not block the settlement loop for long.
type Notifier interface {
	TransferSettled(ctx context.Context, t Transfer)
}

// Queue defines how workers receive transfers.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Transfer
}

// Relayer processes pending transfers from the queue.
type Relayer struct {
	queue    Queue
	settler  Settler
	notifier Notifier
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRelayer creates a new relayer worker with configuration options.
func NewRelayer(q Queue, settler Settler, notifier Notifier, opts ...Option) *Relayer {
	w := &Relayer{
		queue:    q,
		settler:  settler,
		notifier: notifier,
		name:     "relayer",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("relayer"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the relayer loop until ctx is canceled or the queue closes.
func (w *Relayer) Run(ctx context.Context) {
	defer close(w.done)

	transfers := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-transfers:
			if !ok {
				return
			}
			if err := w.process(ctx, t); err != nil {
				w.logger.Error(ctx, "error processing transfer",
					logger.String("transferID", t.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the relayer.
func (w *Relayer) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process settles a single transfer and notifies on success.
func (w *Relayer) process(ctx context.Context, t Transfer) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	settleStart := time.Now()
	settled, err := w.settler.Settle(ctx, t)
	metrics.RecordSettlementLatency(float64(time.Since(settleStart).Milliseconds()))

	if err != nil {
		metrics.RecordTransferFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "settlement_error")
		w.logger.Error(ctx, "settlement failed",
			logger.String("transferID", t.ID),
			logger.String("walletID", t.WalletID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to settle transfer %s: %w", t.ID, err)
	}

	metrics.RecordTransferSettled()
	w.logger.Debug(ctx, "transfer settled",
		logger.String("transferID", settled.ID),
		logger.String("txHash", settled.TxHash),
	)

	if w.notifier != nil {
		w.notifier.TransferSettled(ctx, settled)
	}
	return nil
}

// Pool manages multiple relayers.
type Pool struct {
	workers  []*Relayer
	queue    Queue
	settler  Settler
	notifier Notifier

	closeOnce sync.Once

	logger logger.Logger
}

// NewPool creates a new relayer pool.
func NewPool(workerCount int, q Queue, settler Settler, notifier Notifier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*Relayer, workerCount),
		queue:    q,
		settler:  settler,
		notifier: notifier,
		logger:   logger.Get().Named("relayer-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewRelayer(
			q,
			settler,
			notifier,
			WithName("relayer-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all relayers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop closes the queue so relayers drain remaining transfers, then waits
// for each to exit, bounded by workerShutdownTimeout.
func (p *Pool) Stop() {
	p.closeOnce.Do(func() {
		p.closeQueue(context.Background())
	})

	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue, then stops all relayers, honoring ctx.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closeQueue(ctx)
	})

	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("pool shutdown timed out: %w", ctx.Err())
		}
	}
	return nil
}

func (p *Pool) closeQueue(ctx context.Context) {
	closer, ok := p.queue.(interface{ Close() error })
	if !ok {
		return
	}
	if err := closer.Close(); err != nil && !errors.Is(err, queue.ErrClosed) {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
}
