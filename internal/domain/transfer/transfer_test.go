package transfer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mpcw/walletd/internal/domain/model"
	"github.com/mpcw/walletd/internal/domain/transfer"
	. "github.com/smartystreets/goconvey/convey"
)

const testAddress = "0x1111111111111111111111111111111111111111"

func TestRequestValidation(t *testing.T) {
	Convey("Given a transfer request", t, func() {
		req := transfer.Request{
			WalletID:  "w-1",
			ToAddress: testAddress,
			Amount:    "1000",
		}

		Convey("When normalized without an asset", func() {
			req.Normalize("usdc")

			Convey("Then the default asset is applied upper-cased", func() {
				So(req.Asset, ShouldEqual, "USDC")
				So(req.Validate(), ShouldBeNil)
			})
		})

		Convey("When fields are invalid", func() {
			cases := []struct {
				name string
				mut  func(*transfer.Request)
				want error
			}{
				{"blank wallet id", func(r *transfer.Request) { r.WalletID = "  " }, transfer.ErrMissingWalletID},
				{"bad address", func(r *transfer.Request) { r.ToAddress = "nope" }, transfer.ErrInvalidToAddress},
				{"zero amount", func(r *transfer.Request) { r.Amount = "0" }, transfer.ErrInvalidAmount},
				{"negative amount", func(r *transfer.Request) { r.Amount = "-5" }, transfer.ErrInvalidAmount},
				{"decimal amount", func(r *transfer.Request) { r.Amount = "1.5" }, transfer.ErrInvalidAmount},
			}
			for _, tc := range cases {
				Convey("Then "+tc.name+" is rejected", func() {
					r := req
					tc.mut(&r)
					r.Normalize("USDC")
					So(r.Validate(), ShouldEqual, tc.want)
				})
			}
		})
	})
}

func TestNewTransfer(t *testing.T) {
	Convey("Given a validated request", t, func() {
		req := transfer.Request{WalletID: "w-1", ToAddress: testAddress, Amount: "1000", Asset: "USDC"}

		Convey("When building the transfer", func() {
			tr := transfer.New(req)

			Convey("Then it is pending, gasless, and hashed", func() {
				So(tr.ID, ShouldNotBeEmpty)
				So(tr.Status, ShouldEqual, model.TransferStatusPending)
				So(tr.TransferType, ShouldEqual, model.TransferTypeGasless)
				So(tr.TxHash, ShouldStartWith, "0x")
				So(len(tr.TxHash), ShouldEqual, 66)
			})

			Convey("Then a second build gets a distinct id and hash", func() {
				other := transfer.New(req)
				So(other.ID, ShouldNotEqual, tr.ID)
				So(other.TxHash, ShouldNotEqual, tr.TxHash)
			})
		})
	})
}

func TestIdempotencyKey(t *testing.T) {
	Convey("Given identical requests", t, func() {
		a := transfer.Request{WalletID: "w-1", ToAddress: testAddress, Amount: "10", Asset: "USDC"}
		b := a

		Convey("Then the key is stable and checksum-insensitive", func() {
			So(transfer.IdempotencyKey(a), ShouldEqual, transfer.IdempotencyKey(b))
			b.ToAddress = "0X1111111111111111111111111111111111111111"
			So(transfer.IdempotencyKey(a), ShouldEqual, transfer.IdempotencyKey(b))
		})

		Convey("Then a different payload changes the key", func() {
			b.Amount = "11"
			So(transfer.IdempotencyKey(a), ShouldNotEqual, transfer.IdempotencyKey(b))
		})
	})
}

type fakeLedger struct {
	debitErr  error
	creditErr map[string]error
	debits    []string
	credits   []string
}

func (f *fakeLedger) Debit(_ context.Context, walletID, asset, amount string) error {
	if f.debitErr != nil {
		return f.debitErr
	}
	f.debits = append(f.debits, walletID+"/"+asset+"/"+amount)
	return nil
}

func (f *fakeLedger) Credit(_ context.Context, walletID, asset, amount string) error {
	if err := f.creditErr[walletID]; err != nil {
		return err
	}
	f.credits = append(f.credits, walletID+"/"+asset+"/"+amount)
	return nil
}

type fakeResolver struct {
	owners map[string]string
}

func (f *fakeResolver) WalletForAddress(_ context.Context, address string) (string, bool) {
	id, ok := f.owners[address]
	return id, ok
}

func TestEngineSettle(t *testing.T) {
	Convey("Given a settlement engine", t, func() {
		ledger := &fakeLedger{creditErr: map[string]error{}}
		resolver := &fakeResolver{owners: map[string]string{}}
		engine := transfer.NewEngine(ledger, resolver)
		pending := transfer.New(transfer.Request{
			WalletID: "w-1", ToAddress: testAddress, Amount: "100", Asset: "USDC",
		})

		Convey("When the destination is external", func() {
			settled, err := engine.Settle(context.Background(), pending)
			So(err, ShouldBeNil)
			So(settled.Status, ShouldEqual, model.TransferStatusComplete)
			So(ledger.debits, ShouldHaveLength, 1)
			So(ledger.credits, ShouldBeEmpty)
		})

		Convey("When the destination belongs to a local wallet", func() {
			resolver.owners[pending.ToAddress] = "w-2"
			settled, err := engine.Settle(context.Background(), pending)
			So(err, ShouldBeNil)
			So(settled.Status, ShouldEqual, model.TransferStatusComplete)
			So(ledger.credits, ShouldResemble, []string{"w-2/USDC/100"})
		})

		Convey("When the sender has insufficient funds", func() {
			ledger.debitErr = errors.New("insufficient funds")
			settled, err := engine.Settle(context.Background(), pending)
			So(err, ShouldNotBeNil)
			So(settled.Status, ShouldEqual, model.TransferStatusFailed)
		})

		Convey("When the credit fails the debit is rolled back", func() {
			resolver.owners[pending.ToAddress] = "w-2"
			ledger.creditErr["w-2"] = errors.New("boom")
			settled, err := engine.Settle(context.Background(), pending)
			So(err, ShouldNotBeNil)
			So(settled.Status, ShouldEqual, model.TransferStatusFailed)
			// rollback credit goes to the sender
			So(ledger.credits, ShouldResemble, []string{"w-1/USDC/100"})
		})
	})
}
