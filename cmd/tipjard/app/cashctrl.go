package app

import (
	"github.com/iov-one/tipjar/x/tipjar"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/x/cash"
)

// JarGuardCashController wraps provided cash controller implementation so
// that funds cannot be sent to a jar account other than by tipping.
func JarGuardCashController(c cash.Controller) cash.Controller {
	return &CashController{
		ctrl: c,
		jars: tipjar.NewController(nil, nil),
	}
}

// CashController is a cash.Controller implementation that refuses transfers
// into jar accounts. Every coin a jar account holds must be recorded against
// a depositor.
type CashController struct {
	ctrl cash.Controller
	jars tipjar.Controller
}

func (c *CashController) MoveCoins(db weave.KVStore, src weave.Address, dest weave.Address, amount coin.Coin) error {
	switch jarID, err := c.jars.JarByAccount(db, dest); {
	case err == nil:
		return errors.Wrapf(errors.ErrInput, "jar %x accepts tips only", jarID)
	case !errors.ErrNotFound.Is(err):
		return errors.Wrap(err, "jar account")
	}
	if err := c.ctrl.MoveCoins(db, src, dest, amount); err != nil {
		return errors.Wrap(err, "move coins")
	}
	return nil
}

func (c *CashController) Balance(db weave.KVStore, a weave.Address) (coin.Coins, error) {
	return c.ctrl.Balance(db, a)
}
