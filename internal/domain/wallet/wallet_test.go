package wallet_test

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mpcw/walletd/internal/domain/wallet"
	"github.com/mpcw/walletd/pkg/crypto"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWalletCreation(t *testing.T) {
	Convey("Given a new wallet", t, func() {
		w, err := wallet.New("base-sepolia")
		So(err, ShouldBeNil)
		So(w.ID(), ShouldNotBeEmpty)
		So(w.NetworkID(), ShouldEqual, "base-sepolia")
		So(w.Addresses(), ShouldBeEmpty)

		Convey("When deriving addresses", func() {
			first, err := w.DeriveNextAddress()
			So(err, ShouldBeNil)
			second, err := w.DeriveNextAddress()
			So(err, ShouldBeNil)

			Convey("Then they are valid distinct EVM addresses", func() {
				So(common.IsHexAddress(first.AddressID), ShouldBeTrue)
				So(common.IsHexAddress(second.AddressID), ShouldBeTrue)
				So(first.AddressID, ShouldNotEqual, second.AddressID)
				So(first.Index, ShouldEqual, 0)
				So(second.Index, ShouldEqual, 1)
			})

			Convey("Then the wallet owns them regardless of casing", func() {
				So(w.OwnsAddress(first.AddressID), ShouldBeTrue)
				So(w.OwnsAddress(strings.ToLower(first.AddressID)), ShouldBeTrue)
				So(w.OwnsAddress("not-an-address"), ShouldBeFalse)
				So(w.OwnsAddress("0x0000000000000000000000000000000000000001"), ShouldBeFalse)
			})
		})

		Convey("When the network id is blank", func() {
			_, err := wallet.New("  ")
			So(err, ShouldEqual, wallet.ErrMissingNetworkID)
		})
	})
}

func TestWalletDeterminism(t *testing.T) {
	Convey("Given a wallet with derived addresses", t, func() {
		w, err := wallet.New("base-sepolia")
		So(err, ShouldBeNil)
		for i := 0; i < 3; i++ {
			_, err := w.DeriveNextAddress()
			So(err, ShouldBeNil)
		}

		Convey("When sealed and rehydrated with the same passphrase", func() {
			buf, err := w.MarshalEncrypted("passphrase")
			So(err, ShouldBeNil)

			restored, err := wallet.FromEncrypted(buf, "passphrase")
			So(err, ShouldBeNil)

			Convey("Then identity and addresses match exactly", func() {
				So(restored.ID(), ShouldEqual, w.ID())
				So(restored.NetworkID(), ShouldEqual, w.NetworkID())
				So(restored.Addresses(), ShouldResemble, w.Addresses())
			})
		})

		Convey("When rehydrated with the wrong passphrase", func() {
			buf, err := w.MarshalEncrypted("passphrase")
			So(err, ShouldBeNil)

			_, err = wallet.FromEncrypted(buf, "other")
			So(err, ShouldEqual, crypto.ErrWrongPassphrase)
		})
	})
}

func TestSeedEncoding(t *testing.T) {
	Convey("Given an encrypted payload", t, func() {
		w, err := wallet.New("base-sepolia")
		So(err, ShouldBeNil)
		buf, err := w.MarshalEncrypted("passphrase")
		So(err, ShouldBeNil)

		Convey("Then encode/decode round-trips", func() {
			encoded := wallet.EncodeSeed(buf)
			decoded, err := wallet.DecodeSeed(encoded)
			So(err, ShouldBeNil)
			So(decoded, ShouldResemble, buf)
		})

		Convey("Then invalid base64 is rejected", func() {
			_, err := wallet.DecodeSeed("%%%not base64%%%")
			So(err, ShouldEqual, wallet.ErrMalformedEncodedSeed)
		})
	})
}
