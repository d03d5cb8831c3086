package tipjar

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
)

// Controller is the tip jar ledger. All state changing operations are
// atomic: they either apply every change or none.
type Controller interface {
	// CreateJar creates an empty jar for given currency. The admin cannot be
	// changed later.
	CreateJar(db weave.KVStore, admin weave.Address, ticker string) ([]byte, *Jar, error)

	// Deposit moves amount from the depositor into the jar and records it
	// against the depositor. The depositor must already be authorized.
	Deposit(ctx weave.Context, db weave.KVStore, jarID []byte, depositor weave.Address, amount coin.Coin, memo string) (*Event, error)

	// ValidateDeposit returns the error Deposit would fail with before
	// moving any funds.
	ValidateDeposit(db weave.ReadOnlyKVStore, jarID []byte, depositor weave.Address, amount coin.Coin, memo string) error

	// Withdraw sweeps all funds of the jar to its admin. The admin must
	// have signed the transaction.
	Withdraw(ctx weave.Context, db weave.KVStore, jarID []byte) (*Event, error)

	// Jar returns the jar with given ID.
	Jar(db weave.ReadOnlyKVStore, jarID []byte) (*Jar, error)

	// BalanceOf returns how much the depositor tipped into the jar since the
	// last withdraw. Unknown depositors have a zero balance.
	BalanceOf(db weave.ReadOnlyKVStore, jarID []byte, depositor weave.Address) (coin.Coin, error)

	// TotalHeld returns the sum of all balances of the jar.
	TotalHeld(db weave.ReadOnlyKVStore, jarID []byte) (coin.Coin, error)

	// Administrator returns the address allowed to withdraw from the jar.
	Administrator(db weave.ReadOnlyKVStore, jarID []byte) (weave.Address, error)

	// Events returns the audit log of the jar, oldest first.
	Events(db weave.ReadOnlyKVStore, jarID []byte) ([]*Event, error)

	// JarByAccount returns the ID of the jar whose funds are held by given
	// account. ErrNotFound is returned for any other account.
	JarByAccount(db weave.ReadOnlyKVStore, account weave.Address) ([]byte, error)
}

// TipController is the Controller implementation that keeps the jar funds
// in accounts managed by a cash.CoinMover.
type TipController struct {
	auth     x.Authenticator
	mover    cash.CoinMover
	jars     orm.ModelBucket
	balances orm.ModelBucket
	events   orm.ModelBucket
}

var _ Controller = (*TipController)(nil)

// NewController returns a ledger that authenticates admins with auth and
// moves funds with mover.
func NewController(auth x.Authenticator, mover cash.CoinMover) *TipController {
	return &TipController{
		auth:     auth,
		mover:    mover,
		jars:     NewJarBucket(),
		balances: NewBalanceBucket(),
		events:   NewEventBucket(),
	}
}

func (c *TipController) CreateJar(db weave.KVStore, admin weave.Address, ticker string) ([]byte, *Jar, error) {
	jar := Jar{
		Metadata: &weave.Metadata{Schema: 1},
		Admin:    admin,
		Total:    coin.NewCoin(0, 0, ticker),
	}
	if err := jar.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "invalid jar")
	}
	key, err := c.jars.Put(db, nil, &jar)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot store jar")
	}
	return key, &jar, nil
}

func (c *TipController) ValidateDeposit(db weave.ReadOnlyKVStore, jarID []byte, depositor weave.Address, amount coin.Coin, memo string) error {
	_, _, err := c.prepareDeposit(db, jarID, depositor, amount, memo)
	return err
}

// prepareDeposit returns the jar and the depositor balance with the tip
// already added. Nothing is written.
func (c *TipController) prepareDeposit(
	db weave.ReadOnlyKVStore,
	jarID []byte,
	depositor weave.Address,
	amount coin.Coin,
	memo string,
) (*Jar, *Balance, error) {
	if amount.IsZero() {
		return nil, nil, errors.Wrap(ErrZeroAmount, "tip must carry value")
	}
	if !amount.IsPositive() {
		return nil, nil, errors.Wrap(errors.ErrAmount, "tip must be greater than zero")
	}
	if err := depositor.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "depositor")
	}
	jar, err := c.Jar(db, jarID)
	if err != nil {
		return nil, nil, err
	}
	if !amount.SameType(jar.Total) {
		return nil, nil, errors.Wrapf(errors.ErrCurrency, "jar accepts only %s", jar.Total.Ticker)
	}
	limit, err := maxMemoLength(db)
	if err != nil {
		return nil, nil, err
	}
	if utf8.RuneCountInString(memo) > limit {
		return nil, nil, errors.Wrapf(errors.ErrInput, "memo longer than %d characters", limit)
	}

	balance, err := c.loadBalance(db, jarID, depositor, jar.Total.Ticker)
	if err != nil {
		return nil, nil, err
	}
	if balance.Amount, err = balance.Amount.Add(amount); err != nil {
		return nil, nil, errors.Wrap(err, "balance")
	}
	if jar.Total, err = jar.Total.Add(amount); err != nil {
		return nil, nil, errors.Wrap(err, "total")
	}
	return jar, balance, nil
}

func (c *TipController) Deposit(
	ctx weave.Context,
	db weave.KVStore,
	jarID []byte,
	depositor weave.Address,
	amount coin.Coin,
	memo string,
) (*Event, error) {
	// All sums are computed before any value is moved so that an overflow
	// cannot leave the funds transferred but unrecorded.
	jar, balance, err := c.prepareDeposit(db, jarID, depositor, amount, memo)
	if err != nil {
		return nil, err
	}
	if err := c.mover.MoveCoins(db, depositor, Condition(jarID).Address(), amount); err != nil {
		return nil, errors.Wrap(err, "cannot move tip")
	}
	if _, err := c.balances.Put(db, BalanceKey(jarID, depositor), balance); err != nil {
		return nil, errors.Wrap(err, "cannot store balance")
	}
	if _, err := c.jars.Put(db, jarID, jar); err != nil {
		return nil, errors.Wrap(err, "cannot store jar")
	}
	return c.record(ctx, db, jarID, EventTipReceived, depositor, amount, memo)
}

func (c *TipController) Withdraw(ctx weave.Context, db weave.KVStore, jarID []byte) (*Event, error) {
	jar, err := c.Jar(db, jarID)
	if err != nil {
		return nil, err
	}
	if !c.auth.HasAddress(ctx, jar.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller is not the owner")
	}
	if jar.Total.IsZero() {
		return nil, errors.Wrap(ErrNothingToWithdraw, "jar is empty")
	}

	cstore, ok := db.(weave.CacheableKVStore)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "need cachable kvstore")
	}
	cache := cstore.CacheWrap()

	amount := jar.Total
	if err := c.clear(cache, jarID, jar); err != nil {
		cache.Discard()
		return nil, err
	}
	// The ledger is already empty when the funds move, so any withdraw
	// started by the receiver sees nothing to take.
	if err := c.mover.MoveCoins(cache, Condition(jarID).Address(), jar.Admin, amount); err != nil {
		cache.Discard()
		return nil, errors.Wrapf(ErrTransferFailed, "send %s to %s: %s", amount, jar.Admin, err)
	}
	event, err := c.record(ctx, cache, jarID, EventWithdraw, jar.Admin, amount, "")
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "cannot commit withdraw")
	}

	weave.GetLogger(ctx).Info("tip jar withdraw",
		"jar", hex.EncodeToString(jarID),
		"admin", jar.Admin.String(),
		"amount", amount.String())
	return event, nil
}

// clear zeroes the jar total and removes all depositor balances.
func (c *TipController) clear(db weave.KVStore, jarID []byte, jar *Jar) error {
	var balances []*Balance
	keys, err := c.balances.ByIndex(db, "jar", jarID, &balances)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "cannot list balances")
	}
	for _, key := range keys {
		if err := c.balances.Delete(db, key); err != nil {
			return errors.Wrap(err, "cannot delete balance")
		}
	}
	jar.Total = coin.NewCoin(0, 0, jar.Total.Ticker)
	if _, err := c.jars.Put(db, jarID, jar); err != nil {
		return errors.Wrap(err, "cannot store jar")
	}
	return nil
}

func (c *TipController) record(
	ctx weave.Context,
	db weave.KVStore,
	jarID []byte,
	kind EventKind,
	actor weave.Address,
	amount coin.Coin,
	memo string,
) (*Event, error) {
	height, _ := weave.GetHeight(ctx)
	event := Event{
		Metadata: &weave.Metadata{Schema: 1},
		JarID:    jarID,
		Kind:     kind,
		Actor:    actor,
		Amount:   amount,
		Memo:     memo,
		Height:   height,
	}
	if _, err := c.events.Put(db, nil, &event); err != nil {
		return nil, errors.Wrap(err, "cannot store event")
	}
	return &event, nil
}

func (c *TipController) loadBalance(db weave.ReadOnlyKVStore, jarID []byte, depositor weave.Address, ticker string) (*Balance, error) {
	var b Balance
	switch err := c.balances.One(db, BalanceKey(jarID, depositor), &b); {
	case err == nil:
		return &b, nil
	case errors.ErrNotFound.Is(err):
		return &Balance{
			Metadata:  &weave.Metadata{Schema: 1},
			JarID:     jarID,
			Depositor: depositor,
			Amount:    coin.NewCoin(0, 0, ticker),
		}, nil
	default:
		return nil, errors.Wrap(err, "cannot load balance")
	}
}

func (c *TipController) Jar(db weave.ReadOnlyKVStore, jarID []byte) (*Jar, error) {
	var jar Jar
	if err := c.jars.One(db, jarID, &jar); err != nil {
		return nil, errors.Wrap(err, "cannot load jar")
	}
	return &jar, nil
}

func (c *TipController) BalanceOf(db weave.ReadOnlyKVStore, jarID []byte, depositor weave.Address) (coin.Coin, error) {
	jar, err := c.Jar(db, jarID)
	if err != nil {
		return coin.Coin{}, err
	}
	b, err := c.loadBalance(db, jarID, depositor, jar.Total.Ticker)
	if err != nil {
		return coin.Coin{}, err
	}
	return b.Amount, nil
}

func (c *TipController) TotalHeld(db weave.ReadOnlyKVStore, jarID []byte) (coin.Coin, error) {
	jar, err := c.Jar(db, jarID)
	if err != nil {
		return coin.Coin{}, err
	}
	return jar.Total, nil
}

func (c *TipController) Administrator(db weave.ReadOnlyKVStore, jarID []byte) (weave.Address, error) {
	jar, err := c.Jar(db, jarID)
	if err != nil {
		return nil, err
	}
	return jar.Admin, nil
}

func (c *TipController) Events(db weave.ReadOnlyKVStore, jarID []byte) ([]*Event, error) {
	var events []*Event
	if _, err := c.events.ByIndex(db, "jar", jarID, &events); err != nil && !errors.ErrNotFound.Is(err) {
		return nil, errors.Wrap(err, "cannot list events")
	}
	return events, nil
}

func (c *TipController) JarByAccount(db weave.ReadOnlyKVStore, account weave.Address) ([]byte, error) {
	var jars []*Jar
	keys, err := c.jars.ByIndex(db, "account", account, &jars)
	if err != nil {
		return nil, errors.Wrap(err, "cannot lookup account")
	}
	if len(keys) == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "not a jar account")
	}
	return keys[0], nil
}
