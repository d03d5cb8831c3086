package app

import (
	"testing"

	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJarGuardCashController(t *testing.T) {
	Convey("Jar accounts only accept tips", t, func() {
		db := store.MemStore()
		migration.MustInitPkg(db, "cash", "tipjar")

		base := cash.NewController(cash.NewBucket())
		guard := JarGuardCashController(base)

		alice := weavetest.NewCondition().Address()
		bob := weavetest.NewCondition().Address()
		So(base.CoinMint(db, alice, coin.NewCoin(100, 0, "IOV")), ShouldBeNil)

		jarID, _, err := tipjar.NewController(nil, nil).CreateJar(db, bob, "IOV")
		So(err, ShouldBeNil)
		jarAccount := tipjar.Condition(jarID).Address()

		Convey("A transfer between wallets passes through", func() {
			So(guard.MoveCoins(db, alice, bob, coin.NewCoin(10, 0, "IOV")), ShouldBeNil)

			coins, err := guard.Balance(db, bob)
			So(err, ShouldBeNil)
			So(coins.Equals(coin.Coins{coin.NewCoinp(10, 0, "IOV")}), ShouldBeTrue)
		})

		Convey("A transfer into a jar account is refused", func() {
			err := guard.MoveCoins(db, alice, jarAccount, coin.NewCoin(10, 0, "IOV"))
			So(errors.ErrInput.Is(err), ShouldBeTrue)

			coins, err := guard.Balance(db, alice)
			So(err, ShouldBeNil)
			So(coins.Equals(coin.Coins{coin.NewCoinp(100, 0, "IOV")}), ShouldBeTrue)
		})

		Convey("The unguarded controller is still able to fund the jar", func() {
			So(base.MoveCoins(db, alice, jarAccount, coin.NewCoin(10, 0, "IOV")), ShouldBeNil)
		})

		Convey("Errors of the wrapped controller are returned", func() {
			err := guard.MoveCoins(db, bob, alice, coin.NewCoin(1, 0, "IOV"))
			So(err, ShouldNotBeNil)
		})
	})
}
