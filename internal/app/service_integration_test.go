package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mpcw/walletd/internal/adapters/webhook"
	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/internal/domain/transfer"
	. "github.com/smartystreets/goconvey/convey"
)

func waitForBalance(ctx context.Context, s *Service, want string) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		balances, err := s.Balances(ctx)
		if err == nil && balances["USDC"] == want {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestSettlementBetweenLocalWallets(t *testing.T) {
	Convey("Given two local wallets", t, func() {
		ctx := context.Background()
		s := newTestService(t)

		sender, err := s.CreateWallet(ctx, "base-sepolia")
		So(err, ShouldBeNil)
		recipient, err := s.CreateWallet(ctx, "base-sepolia")
		So(err, ShouldBeNil)

		Convey("When the sender transfers to the recipient's address", func() {
			req := transfer.Request{
				WalletID:  sender.WalletID,
				ToAddress: recipient.Address.AddressID,
				Amount:    "400",
				Asset:     "USDC",
			}
			pending := transfer.New(req)
			So(s.Enqueue(ctx, pending), ShouldBeTrue)

			Convey("Then the recipient's balance grows by the amount", func() {
				// recipient is the active wallet; faucet seeded 1000
				So(waitForBalance(ctx, s, "1400"), ShouldBeTrue)
			})
		})

		Convey("When the transfer exceeds the sender's balance", func() {
			req := transfer.Request{
				WalletID:  sender.WalletID,
				ToAddress: recipient.Address.AddressID,
				Amount:    "999999",
				Asset:     "USDC",
			}
			So(s.Enqueue(ctx, transfer.New(req)), ShouldBeTrue)

			Convey("Then the recipient's balance never changes", func() {
				time.Sleep(100 * time.Millisecond)
				balances, err := s.Balances(ctx)
				So(err, ShouldBeNil)
				So(balances["USDC"], ShouldEqual, "1000")
			})
		})

		Convey("When the destination is an external address", func() {
			// recipient is the active wallet; spend from it
			req := transfer.Request{
				WalletID:  recipient.WalletID,
				ToAddress: "0x000000000000000000000000000000000000dEaD",
				Amount:    "100",
				Asset:     "USDC",
			}
			So(s.Enqueue(ctx, transfer.New(req)), ShouldBeTrue)

			Convey("Then the sender is debited and nobody credited", func() {
				So(waitForBalance(ctx, s, "900"), ShouldBeTrue)
			})
		})
	})
}

func TestSettlementTriggersWebhook(t *testing.T) {
	Convey("Given a recipient wallet with a webhook subscription", t, func() {
		ctx := context.Background()
		s := newTestService(t)

		sender, err := s.CreateWallet(ctx, "base-sepolia")
		So(err, ShouldBeNil)
		recipient, err := s.CreateWallet(ctx, "base-sepolia")
		So(err, ShouldBeNil)

		var (
			mu       sync.Mutex
			received []model.Event
			sigs     []string
			bodies   [][]byte
		)
		receiver := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var event model.Event
			_ = json.Unmarshal(body, &event)
			mu.Lock()
			received = append(received, event)
			sigs = append(sigs, r.Header.Get(webhook.SignatureHeader))
			bodies = append(bodies, body)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		}))
		defer receiver.Close()

		// recipient is active, so the subscription binds to it
		_, err = s.RegisterWebhook(ctx, receiver.URL, nil)
		So(err, ShouldBeNil)

		Convey("When a transfer settles into the recipient", func() {
			req := transfer.Request{
				WalletID:  sender.WalletID,
				ToAddress: recipient.Address.AddressID,
				Amount:    "250",
				Asset:     "USDC",
			}
			So(s.Enqueue(ctx, transfer.New(req)), ShouldBeTrue)

			Convey("Then the receiver gets a signed TRANSACTION_RECEIVED event", func() {
				deadline := time.Now().Add(3 * time.Second)
				for time.Now().Before(deadline) {
					mu.Lock()
					n := len(received)
					mu.Unlock()
					if n > 0 {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}

				mu.Lock()
				defer mu.Unlock()
				So(received, ShouldHaveLength, 1)
				event := received[0]
				So(event.Type, ShouldEqual, model.EventTransactionReceived)
				So(event.WalletID, ShouldEqual, recipient.WalletID)
				So(event.Amount, ShouldEqual, "250")
				So(sigs[0], ShouldEqual, webhook.Sign([]byte("test-passphrase"), bodies[0]))
			})
		})
	})
}
