// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	transferqueue "github.com/mpcw/walletd/internal/adapters/mq/queue"
	workerpool "github.com/mpcw/walletd/internal/adapters/mq/worker"
	"github.com/mpcw/walletd/internal/adapters/repository"
	"github.com/mpcw/walletd/internal/adapters/webhook"
	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/internal/domain/replay"
	"github.com/mpcw/walletd/internal/domain/transfer"
	"github.com/mpcw/walletd/internal/domain/wallet"
	"github.com/mpcw/walletd/pkg/logger"
	"github.com/mpcw/walletd/pkg/metrics"
)

// Service implements the API dependencies for the wallet system.
type Service struct {
	mu sync.RWMutex

	// walletMu serializes load-derive-save sequences on the active wallet so
	// concurrent derivations cannot hand out the same address.
	walletMu sync.Mutex

	// Core components
	store      repository.Store
	ledger     *repository.Ledger
	guard      replay.Guard
	queue      transferqueue.Queue
	engine     *transfer.Engine
	registry   *webhook.Registry
	dispatcher *webhook.Dispatcher
	pool       *workerpool.Pool

	// addrIndex maps every derived address to its wallet so settlement and
	// webhook routing can tell local recipients from external ones.
	addrIndex map[common.Address]string

	// Configuration
	walletsHome      string
	passphrase       string
	webhookSecret    []byte
	defaultNetworkID string
	defaultAsset     string
	faucetAmount     string
	queueSize        int
	workerCount      int
	replayGuardSize  int
	webhookTimeout   time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWalletsHome sets the directory holding encrypted wallet files.
func WithWalletsHome(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.walletsHome = dir
		}
	}
}

// WithPassphrase sets the passphrase sealing wallet seed files. It doubles
// as the webhook signing secret unless WithWebhookSecret overrides it.
func WithPassphrase(passphrase string) Option {
	return func(s *Service) {
		s.passphrase = passphrase
	}
}

// WithWebhookSecret sets a dedicated HMAC key for webhook deliveries.
func WithWebhookSecret(secret []byte) Option {
	return func(s *Service) {
		s.webhookSecret = secret
	}
}

// WithDefaultNetworkID sets the network used when creation names none.
func WithDefaultNetworkID(networkID string) Option {
	return func(s *Service) {
		if networkID != "" {
			s.defaultNetworkID = networkID
		}
	}
}

// WithDefaultAsset sets the asset applied to transfers naming none.
func WithDefaultAsset(asset string) Option {
	return func(s *Service) {
		if asset != "" {
			s.defaultAsset = asset
		}
	}
}

// WithFaucetAmount seeds each new wallet's default-asset balance.
func WithFaucetAmount(amount string) Option {
	return func(s *Service) {
		s.faucetAmount = amount
	}
}

// WithQueueSize sets the maximum size of the settlement queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of settlement workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithReplayGuardSize sets the size of the idempotency cache.
func WithReplayGuardSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.replayGuardSize = size
		}
	}
}

// WithWebhookTimeout bounds each webhook delivery attempt.
func WithWebhookTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.webhookTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		addrIndex:        make(map[common.Address]string),
		walletsHome:      ".wallets",
		defaultNetworkID: "base-sepolia",
		defaultAsset:     "USDC",
		faucetAmount:     "1000000",
		queueSize:        10000,
		workerCount:      runtime.NumCPU() * 2,
		replayGuardSize:  50000,
		webhookTimeout:   5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting wallet service...")

	store, err := repository.NewFileStore(s.walletsHome)
	if err != nil {
		return fmt.Errorf("couldn't open wallet store: %w", err)
	}
	s.store = store
	s.ledger = repository.NewLedger(
		repository.WithFaucet(s.defaultAsset, s.faucetAmount),
	)
	s.guard = replay.NewInMemoryGuard(
		replay.WithMaxSize(s.replayGuardSize),
	)
	s.queue = transferqueue.NewInMemoryQueue(
		transferqueue.WithCapacity(s.queueSize),
		transferqueue.WithBufferSize(s.queueSize),
	)
	s.registry = webhook.NewRegistry()

	secret := s.webhookSecret
	if len(secret) == 0 && s.passphrase != "" {
		secret = []byte(s.passphrase)
	}
	s.dispatcher = webhook.NewDispatcher(s.registry, s,
		webhook.WithSecret(secret),
		webhook.WithTimeout(s.webhookTimeout),
	)
	s.engine = transfer.NewEngine(s.ledger, s)

	if err := s.rehydrate(ctx); err != nil {
		return err
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.dispatcher)
	s.pool.Start(ctx)

	s.started = true
	metrics.UpdateQueueCapacity(s.queueSize)
	metrics.UpdateWorkerCount(s.workerCount)
	s.logger.Info(ctx, "wallet service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("wallets", s.store.Count(ctx)),
	)
	return nil
}

// rehydrate reloads persisted wallets into the ledger and address index so
// a restarted service resolves the same recipients.
func (s *Service) rehydrate(ctx context.Context) error {
	ids, err := s.store.ListWallets(ctx)
	if err != nil {
		return fmt.Errorf("couldn't list wallets: %w", err)
	}
	for _, id := range ids {
		w, err := s.store.GetWallet(ctx, id, s.passphrase)
		if err != nil {
			return fmt.Errorf("couldn't rehydrate wallet %q: %w", id, err)
		}
		s.ledger.InitWallet(ctx, w.ID())
		s.indexAddressesLocked(w)
	}
	metrics.UpdateTotalWallets(len(ids))
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping wallet service...")

	// Stopping the pool closes the queue and drains in-flight transfers.
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "wallet service stopped")
}

// CreateWallet generates a wallet with one derived address on networkID and
// makes it the active wallet.
func (s *Service) CreateWallet(ctx context.Context, networkID string) (model.WalletDetails, error) {
	if strings.TrimSpace(networkID) == "" {
		networkID = s.defaultNetworkID
	}

	w, err := wallet.New(networkID)
	if err != nil {
		return model.WalletDetails{}, err
	}
	addr, err := w.DeriveNextAddress()
	if err != nil {
		return model.WalletDetails{}, err
	}
	if err := s.activate(ctx, w); err != nil {
		return model.WalletDetails{}, err
	}

	metrics.RecordWalletCreated()
	metrics.RecordAddressDerived()
	s.logger.Info(ctx, "wallet created",
		logger.String("walletID", w.ID()),
		logger.String("networkID", networkID),
	)
	return model.WalletDetails{
		WalletID:  w.ID(),
		NetworkID: w.NetworkID(),
		Address:   addr,
	}, nil
}

// ImportWallet rehydrates a wallet from an exported encrypted seed and
// makes it the active wallet.
func (s *Service) ImportWallet(ctx context.Context, encryptedSeed string) (model.ExportData, error) {
	buf, err := wallet.DecodeSeed(encryptedSeed)
	if err != nil {
		return model.ExportData{}, err
	}
	w, err := wallet.FromEncrypted(buf, s.passphrase)
	if err != nil {
		return model.ExportData{}, err
	}
	if err := s.activate(ctx, w); err != nil {
		return model.ExportData{}, err
	}

	metrics.RecordWalletImported()
	s.logger.Info(ctx, "wallet imported",
		logger.String("walletID", w.ID()),
		logger.Int("addresses", len(w.Addresses())),
	)
	return s.exportData(w)
}

// ExportWallet returns the active wallet's export data. The seed leaves the
// service only in its encrypted form.
func (s *Service) ExportWallet(ctx context.Context) (model.ExportData, error) {
	w, err := s.store.ActiveWallet(ctx, s.passphrase)
	if err != nil {
		return model.ExportData{}, err
	}
	metrics.RecordWalletExported()
	return s.exportData(w)
}

// exportData re-seals w for transport. Encryption salts are fresh each time,
// so the ciphertext differs between exports while decrypting to the same
// wallet.
func (s *Service) exportData(w *wallet.Wallet) (model.ExportData, error) {
	sealed, err := w.MarshalEncrypted(s.passphrase)
	if err != nil {
		return model.ExportData{}, err
	}
	return model.ExportData{
		WalletID:      w.ID(),
		NetworkID:     w.NetworkID(),
		EncryptedSeed: wallet.EncodeSeed(sealed),
		Addresses:     w.Addresses(),
	}, nil
}

// Balances returns the active wallet's asset balances.
func (s *Service) Balances(ctx context.Context) (map[string]string, error) {
	w, err := s.store.ActiveWallet(ctx, s.passphrase)
	if err != nil {
		return nil, err
	}
	return s.ledger.Balances(ctx, w.ID()), nil
}

// CreateAddress derives the active wallet's next address and persists the
// new derivation count.
func (s *Service) CreateAddress(ctx context.Context) (model.Address, error) {
	s.walletMu.Lock()
	defer s.walletMu.Unlock()

	w, err := s.store.ActiveWallet(ctx, s.passphrase)
	if err != nil {
		return model.Address{}, err
	}
	addr, err := w.DeriveNextAddress()
	if err != nil {
		return model.Address{}, err
	}
	if err := s.store.SaveWallet(ctx, w, s.passphrase); err != nil {
		return model.Address{}, err
	}
	s.indexAddresses(w)

	metrics.RecordAddressDerived()
	s.logger.Info(ctx, "address derived",
		logger.String("walletID", w.ID()),
		logger.String("addressID", addr.AddressID),
	)
	return addr, nil
}

// HasWallet reports whether a wallet id is known to the service.
func (s *Service) HasWallet(ctx context.Context, id string) (bool, error) {
	return s.store.WalletExists(ctx, id)
}

// RegisterWebhook subscribes a callback URL to the active wallet's events.
func (s *Service) RegisterWebhook(ctx context.Context, callbackURL string, eventTypes []string) (model.WebhookSubscription, error) {
	w, err := s.store.ActiveWallet(ctx, s.passphrase)
	if err != nil {
		return model.WebhookSubscription{}, err
	}
	sub, err := s.registry.Register(ctx, w.ID(), callbackURL, eventTypes)
	if err != nil {
		return model.WebhookSubscription{}, err
	}
	s.logger.Info(ctx, "webhook registered",
		logger.String("walletID", w.ID()),
		logger.String("webhookID", sub.ID),
	)
	return sub, nil
}

// ObserveAndRecord atomically checks whether a submission key was seen and
// records it if not. Returns true if it was already seen.
func (s *Service) ObserveAndRecord(ctx context.Context, key string) bool {
	return s.guard.ObserveAndRecord(ctx, key)
}

// Forget removes a submission key, allowing it to be retried.
func (s *Service) Forget(ctx context.Context, key string) {
	s.guard.Forget(ctx, key)
}

// Size returns the current number of entries in the replay guard.
func (s *Service) Size() int64 {
	if s.guard == nil {
		return 0
	}
	return s.guard.Size()
}

// Enqueue submits a transfer for asynchronous settlement.
func (s *Service) Enqueue(ctx context.Context, t model.Transfer) bool {
	ok := s.queue.Enqueue(ctx, t)
	if ok {
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return ok
}

// WalletForAddress resolves a receiving address to the local wallet owning
// it, when there is one.
func (s *Service) WalletForAddress(_ context.Context, address string) (string, bool) {
	if !common.IsHexAddress(address) {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.addrIndex[common.HexToAddress(address)]
	return id, ok
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		totalWallets := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalWallets"] = totalWallets
		stats["webhookSubscriptions"] = s.registry.Count()
		stats["replayGuardEntries"] = s.guard.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalWallets(totalWallets)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// activate persists w, points the active-wallet marker at it, opens its
// ledger account, and indexes its addresses.
func (s *Service) activate(ctx context.Context, w *wallet.Wallet) error {
	s.walletMu.Lock()
	defer s.walletMu.Unlock()

	if err := s.store.SaveWallet(ctx, w, s.passphrase); err != nil {
		return err
	}
	if err := s.store.SetActiveWallet(ctx, w.ID()); err != nil {
		return err
	}
	s.ledger.InitWallet(ctx, w.ID())
	s.indexAddresses(w)
	metrics.UpdateTotalWallets(s.store.Count(ctx))
	return nil
}

func (s *Service) indexAddresses(w *wallet.Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexAddressesLocked(w)
}

// indexAddressesLocked requires s.mu to be held.
func (s *Service) indexAddressesLocked(w *wallet.Wallet) {
	for _, a := range w.Addresses() {
		s.addrIndex[common.HexToAddress(a.AddressID)] = a.WalletID
	}
}
