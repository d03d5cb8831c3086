package tipjar

import (
	"context"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
)

func TestUseCases(t *testing.T) {
	type Request struct {
		Conditions  []weave.Condition
		Tx          weave.Tx
		BlockHeight int64
		WantErr     *errors.Error
	}

	type AccountBalance struct {
		Wallet weave.Address
		Amount coin.Coin
	}

	var (
		adminCond = weavetest.NewCondition()
		aliceCond = weavetest.NewCondition()
		bobCond   = weavetest.NewCondition()
		confCond  = weavetest.NewCondition()

		jarID = weavetest.SequenceID(1)
	)

	createJar := Request{
		Conditions: []weave.Condition{adminCond},
		Tx: &weavetest.Tx{
			Msg: &CreateJarMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Ticker:   "IOV",
			},
		},
		BlockHeight: 100,
	}
	tip := func(who weave.Condition, amount coin.Coin, memo string, height int64, wantErr *errors.Error) Request {
		return Request{
			Conditions: []weave.Condition{who},
			Tx: &weavetest.Tx{
				Msg: &TipMsg{
					Metadata: &weave.Metadata{Schema: 1},
					JarID:    jarID,
					Amount:   amount,
					Memo:     memo,
				},
			},
			BlockHeight: height,
			WantErr:     wantErr,
		}
	}
	withdraw := func(who weave.Condition, height int64, wantErr *errors.Error) Request {
		return Request{
			Conditions: []weave.Condition{who},
			Tx: &weavetest.Tx{
				Msg: &WithdrawMsg{
					Metadata: &weave.Metadata{Schema: 1},
					JarID:    jarID,
				},
			},
			BlockHeight: height,
			WantErr:     wantErr,
		}
	}

	funds := []AccountBalance{
		{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1000, 0, "IOV")},
		{Wallet: bobCond.Address(), Amount: coin.NewCoin(1000, 0, "IOV")},
	}

	cases := map[string]struct {
		Requests  []Request
		AfterTest func(t *testing.T, db weave.KVStore)
	}{
		"deployer becomes the jar admin": {
			Requests: []Request{createJar},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertAdmin(t, db, jarID, adminCond.Address())
				assertTotal(t, db, jarID, coin.NewCoin(0, 0, "IOV"))
				assertLedger(t, db, jarID)
			},
		},
		"a jar cannot be created without a signature": {
			Requests: []Request{
				{
					Tx: &weavetest.Tx{
						Msg: &CreateJarMsg{
							Metadata: &weave.Metadata{Schema: 1},
							Ticker:   "IOV",
						},
					},
					BlockHeight: 100,
					WantErr:     errors.ErrUnauthorized,
				},
			},
		},
		"a tip is recorded against the depositor": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(100, 0, "IOV"), "thanks!", 101, nil),
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertBalance(t, db, jarID, aliceCond.Address(), coin.NewCoin(100, 0, "IOV"))
				assertBalance(t, db, jarID, bobCond.Address(), coin.NewCoin(0, 0, "IOV"))
				assertTotal(t, db, jarID, coin.NewCoin(100, 0, "IOV"))
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(900, 0, "IOV"))
				assertFunds(t, db, Condition(jarID).Address(), coin.NewCoin(100, 0, "IOV"))
				assertEvents(t, db, jarID, []Event{
					{Kind: EventTipReceived, Actor: aliceCond.Address(), Amount: coin.NewCoin(100, 0, "IOV"), Memo: "thanks!", Height: 101},
				})
				assertLedger(t, db, jarID)
			},
		},
		"tips of the same depositor accumulate": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(3, 0, "IOV"), "", 101, nil),
				tip(aliceCond, coin.NewCoin(4, 500000000, "IOV"), "", 102, nil),
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertBalance(t, db, jarID, aliceCond.Address(), coin.NewCoin(7, 500000000, "IOV"))
				assertTotal(t, db, jarID, coin.NewCoin(7, 500000000, "IOV"))
				assertLedger(t, db, jarID)
			},
		},
		"admin withdraws everything": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(100, 0, "IOV"), "", 101, nil),
				tip(bobCond, coin.NewCoin(50, 0, "IOV"), "", 102, nil),
				withdraw(adminCond, 103, nil),
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertTotal(t, db, jarID, coin.NewCoin(0, 0, "IOV"))
				assertBalance(t, db, jarID, aliceCond.Address(), coin.NewCoin(0, 0, "IOV"))
				assertBalance(t, db, jarID, bobCond.Address(), coin.NewCoin(0, 0, "IOV"))
				assertFunds(t, db, adminCond.Address(), coin.NewCoin(150, 0, "IOV"))
				assertEvents(t, db, jarID, []Event{
					{Kind: EventTipReceived, Actor: aliceCond.Address(), Amount: coin.NewCoin(100, 0, "IOV"), Height: 101},
					{Kind: EventTipReceived, Actor: bobCond.Address(), Amount: coin.NewCoin(50, 0, "IOV"), Height: 102},
					{Kind: EventWithdraw, Actor: adminCond.Address(), Amount: coin.NewCoin(150, 0, "IOV"), Height: 103},
				})
				assertLedger(t, db, jarID)
			},
		},
		"only the admin can withdraw": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(100, 0, "IOV"), "", 101, nil),
				withdraw(aliceCond, 102, errors.ErrUnauthorized),
				withdraw(bobCond, 103, errors.ErrUnauthorized),
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertTotal(t, db, jarID, coin.NewCoin(100, 0, "IOV"))
				assertBalance(t, db, jarID, aliceCond.Address(), coin.NewCoin(100, 0, "IOV"))
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(900, 0, "IOV"))
				assertAdmin(t, db, jarID, adminCond.Address())
				assertLedger(t, db, jarID)
			},
		},
		"a tip without value is rejected": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(0, 0, "IOV"), "", 101, ErrZeroAmount),
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertTotal(t, db, jarID, coin.NewCoin(0, 0, "IOV"))
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(1000, 0, "IOV"))
				assertEvents(t, db, jarID, nil)
			},
		},
		"a tip without an amount is rejected": {
			Requests: []Request{
				createJar,
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{
						Msg: &TipMsg{
							Metadata: &weave.Metadata{Schema: 1},
							JarID:    jarID,
						},
					},
					BlockHeight: 101,
					WantErr:     ErrZeroAmount,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertTotal(t, db, jarID, coin.NewCoin(0, 0, "IOV"))
				assertEvents(t, db, jarID, nil)
			},
		},
		"an empty jar cannot be withdrawn": {
			Requests: []Request{
				createJar,
				withdraw(adminCond, 101, ErrNothingToWithdraw),
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertEvents(t, db, jarID, nil)
			},
		},
		"a drained jar accepts tips again": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(10, 0, "IOV"), "", 101, nil),
				withdraw(adminCond, 102, nil),
				withdraw(adminCond, 103, ErrNothingToWithdraw),
				tip(bobCond, coin.NewCoin(5, 0, "IOV"), "", 104, nil),
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertTotal(t, db, jarID, coin.NewCoin(5, 0, "IOV"))
				assertBalance(t, db, jarID, aliceCond.Address(), coin.NewCoin(0, 0, "IOV"))
				assertBalance(t, db, jarID, bobCond.Address(), coin.NewCoin(5, 0, "IOV"))
				assertFunds(t, db, adminCond.Address(), coin.NewCoin(10, 0, "IOV"))
				assertLedger(t, db, jarID)
			},
		},
		"a tip in a different currency is rejected": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(1, 0, "ETH"), "", 101, errors.ErrCurrency),
			},
		},
		"a tip into an unknown jar is rejected": {
			Requests: []Request{
				tip(aliceCond, coin.NewCoin(1, 0, "IOV"), "", 101, errors.ErrNotFound),
			},
		},
		"a memo longer than configured is rejected": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(1, 0, "IOV"), "0123456789a", 101, errors.ErrInput),
				tip(aliceCond, coin.NewCoin(1, 0, "IOV"), "0123456789", 102, nil),
			},
		},
		"a memo limit counts characters": {
			Requests: []Request{
				createJar,
				tip(aliceCond, coin.NewCoin(1, 0, "IOV"), "żółwżółwżó", 101, nil),
				tip(aliceCond, coin.NewCoin(1, 0, "IOV"), "żółwżółwżół", 102, errors.ErrInput),
			},
		},
		"a jar deployed by many signers has no admin": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{adminCond, aliceCond},
					Tx:          createJar.Tx,
					BlockHeight: 100,
					WantErr:     errors.ErrUnauthorized,
				},
			},
		},
		"a tip signed by many must name the depositor": {
			Requests: []Request{
				createJar,
				{
					Conditions: []weave.Condition{aliceCond, bobCond},
					Tx: &weavetest.Tx{
						Msg: &TipMsg{
							Metadata: &weave.Metadata{Schema: 1},
							JarID:    jarID,
							Amount:   coin.NewCoin(1, 0, "IOV"),
						},
					},
					BlockHeight: 101,
					WantErr:     errors.ErrUnauthorized,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertTotal(t, db, jarID, coin.NewCoin(0, 0, "IOV"))
			},
		},
		"a depositor other than the signer must sign": {
			Requests: []Request{
				createJar,
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{
						Msg: &TipMsg{
							Metadata:  &weave.Metadata{Schema: 1},
							JarID:     jarID,
							Depositor: bobCond.Address(),
							Amount:    coin.NewCoin(1, 0, "IOV"),
						},
					},
					BlockHeight: 101,
					WantErr:     errors.ErrUnauthorized,
				},
				{
					Conditions: []weave.Condition{aliceCond, bobCond},
					Tx: &weavetest.Tx{
						Msg: &TipMsg{
							Metadata:  &weave.Metadata{Schema: 1},
							JarID:     jarID,
							Depositor: bobCond.Address(),
							Amount:    coin.NewCoin(1, 0, "IOV"),
						},
					},
					BlockHeight: 102,
					WantErr:     nil,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertBalance(t, db, jarID, bobCond.Address(), coin.NewCoin(1, 0, "IOV"))
				assertBalance(t, db, jarID, aliceCond.Address(), coin.NewCoin(0, 0, "IOV"))
				assertFunds(t, db, bobCond.Address(), coin.NewCoin(999, 0, "IOV"))
			},
		},
		"configuration owner can update the configuration": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{confCond},
					Tx: &weavetest.Tx{
						Msg: &UpdateConfigurationMsg{
							Metadata: &weave.Metadata{Schema: 1},
							Patch: &Configuration{
								Metadata:      &weave.Metadata{Schema: 1},
								MaxMemoLength: 20,
							},
						},
					},
					BlockHeight: 100,
				},
				createJar,
				tip(aliceCond, coin.NewCoin(1, 0, "IOV"), "0123456789a", 101, nil),
			},
		},
		"configuration ownership can be handed over with an owner only patch": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{confCond},
					Tx: &weavetest.Tx{
						Msg: &UpdateConfigurationMsg{
							Metadata: &weave.Metadata{Schema: 1},
							Patch: &Configuration{
								Owner: bobCond.Address(),
							},
						},
					},
					BlockHeight: 100,
				},
				{
					Conditions: []weave.Condition{confCond},
					Tx: &weavetest.Tx{
						Msg: &UpdateConfigurationMsg{
							Metadata: &weave.Metadata{Schema: 1},
							Patch: &Configuration{
								MaxMemoLength: 20,
							},
						},
					},
					BlockHeight: 101,
					WantErr:     errors.ErrUnauthorized,
				},
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{
						Msg: &UpdateConfigurationMsg{
							Metadata: &weave.Metadata{Schema: 1},
							Patch: &Configuration{
								MaxMemoLength: 20,
							},
						},
					},
					BlockHeight: 102,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				conf, err := loadConf(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				if !conf.Owner.Equals(bobCond.Address()) {
					t.Fatalf("unexpected owner: %s", conf.Owner)
				}
				if conf.MaxMemoLength != 20 {
					t.Fatalf("unexpected memo limit: %d", conf.MaxMemoLength)
				}
			},
		},
		"only configuration owner can update the configuration": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{adminCond},
					Tx: &weavetest.Tx{
						Msg: &UpdateConfigurationMsg{
							Metadata: &weave.Metadata{Schema: 1},
							Patch: &Configuration{
								Metadata:      &weave.Metadata{Schema: 1},
								MaxMemoLength: 20,
							},
						},
					},
					BlockHeight: 100,
					WantErr:     errors.ErrUnauthorized,
				},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "tipjar", "cash")

			rt := app.NewRouter()
			auth := &weavetest.CtxAuth{Key: "auth"}
			ctrl := cash.NewController(cash.NewBucket())
			RegisterRoutes(rt, auth, ctrl)

			for _, b := range funds {
				if err := ctrl.CoinMint(db, b.Wallet, b.Amount); err != nil {
					t.Fatalf("cannot mint coins for %q: %s", b.Wallet, err)
				}
			}

			config := Configuration{
				Metadata:      &weave.Metadata{Schema: 1},
				Owner:         confCond.Address(),
				MaxMemoLength: 10,
			}
			if err := gconf.Save(db, "tipjar", &config); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			for i, req := range tc.Requests {
				ctx := weave.WithHeight(context.Background(), req.BlockHeight)
				ctx = weave.WithChainID(ctx, "testchain-123")
				ctx = auth.SetConditions(ctx, req.Conditions...)

				cache := db.CacheWrap()
				if _, err := rt.Check(ctx, cache, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d check error: want %q, got %+v", i, req.WantErr, err)
				}
				cache.Discard()

				cache = db.CacheWrap()
				if _, err := rt.Deliver(ctx, cache, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d deliver error: want %q, got %+v", i, req.WantErr, err)
				} else if err == nil {
					if err := cache.Write(); err != nil {
						t.Fatalf("cannot write cache: %s", err)
					}
				} else {
					cache.Discard()
				}
			}

			if tc.AfterTest != nil {
				tc.AfterTest(t, db)
			}
		})
	}
}

func TestDeliverResultTags(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, "tipjar", "cash")

	admin := weavetest.NewCondition()
	alice := weavetest.NewCondition()

	rt := app.NewRouter()
	auth := &weavetest.CtxAuth{Key: "auth"}
	ctrl := cash.NewController(cash.NewBucket())
	RegisterRoutes(rt, auth, ctrl)
	if err := ctrl.CoinMint(db, alice.Address(), coin.NewCoin(10, 0, "IOV")); err != nil {
		t.Fatalf("cannot mint: %s", err)
	}

	ctx := weave.WithHeight(context.Background(), 5)
	jarCtx := auth.SetConditions(ctx, admin)
	res, err := rt.Deliver(jarCtx, db, &weavetest.Tx{Msg: &CreateJarMsg{Metadata: &weave.Metadata{Schema: 1}, Ticker: "IOV"}})
	if err != nil {
		t.Fatalf("cannot create jar: %s", err)
	}
	jarID := res.Data

	tipCtx := auth.SetConditions(ctx, alice)
	res, err = rt.Deliver(tipCtx, db, &weavetest.Tx{Msg: &TipMsg{
		Metadata: &weave.Metadata{Schema: 1},
		JarID:    jarID,
		Amount:   coin.NewCoin(3, 0, "IOV"),
	}})
	if err != nil {
		t.Fatalf("cannot tip: %s", err)
	}
	tags := make(map[string]string)
	for _, kv := range res.Tags {
		tags[string(kv.Key)] = string(kv.Value)
	}
	if got := tags["tipjar"]; got != "TIP_RECEIVED" {
		t.Fatalf("unexpected tipjar tag: %q", got)
	}
	if got := tags["tipjar.actor"]; got != alice.Address().String() {
		t.Fatalf("unexpected actor tag: %q", got)
	}
	if got := tags["tipjar.amount"]; got != "3 IOV" {
		t.Fatalf("unexpected amount tag: %q", got)
	}

	res, err = rt.Deliver(jarCtx, db, &weavetest.Tx{Msg: &WithdrawMsg{
		Metadata: &weave.Metadata{Schema: 1},
		JarID:    jarID,
	}})
	if err != nil {
		t.Fatalf("cannot withdraw: %s", err)
	}
	tags = make(map[string]string)
	for _, kv := range res.Tags {
		tags[string(kv.Key)] = string(kv.Value)
	}
	if got := tags["tipjar"]; got != "WITHDRAW" {
		t.Fatalf("unexpected tipjar tag: %q", got)
	}
	if got := tags["tipjar.amount"]; got != "3 IOV" {
		t.Fatalf("unexpected amount tag: %q", got)
	}
}

func assertFunds(t testing.TB, db weave.KVStore, wallet weave.Address, funds coin.Coin) {
	t.Helper()

	if got := walletAmount(t, db, wallet, funds.Ticker); !got.Equals(funds) {
		t.Fatalf("want %q funds in %s, got %q", funds, wallet, got)
	}
}

// walletAmount returns the amount of given currency held by the wallet. A
// missing wallet holds nothing.
func walletAmount(t testing.TB, db weave.KVStore, wallet weave.Address, ticker string) coin.Coin {
	t.Helper()

	total := coin.NewCoin(0, 0, ticker)
	coins, err := cash.NewController(cash.NewBucket()).Balance(db, wallet)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return total
		}
		t.Fatalf("balance: %s", err)
	}
	for _, c := range coins {
		if c.Ticker == ticker {
			total = *c
		}
	}
	return total
}

func assertTotal(t testing.TB, db weave.KVStore, jarID []byte, want coin.Coin) {
	t.Helper()

	got, err := NewController(nil, nil).TotalHeld(db, jarID)
	if err != nil {
		t.Fatalf("total: %s", err)
	}
	if !got.Equals(want) {
		t.Fatalf("want %q total, got %q", want, got)
	}
}

func assertBalance(t testing.TB, db weave.KVStore, jarID []byte, depositor weave.Address, want coin.Coin) {
	t.Helper()

	got, err := NewController(nil, nil).BalanceOf(db, jarID, depositor)
	if err != nil {
		t.Fatalf("balance of %s: %s", depositor, err)
	}
	if !got.Equals(want) {
		t.Fatalf("want %q balance of %s, got %q", want, depositor, got)
	}
}

func assertAdmin(t testing.TB, db weave.KVStore, jarID []byte, want weave.Address) {
	t.Helper()

	got, err := NewController(nil, nil).Administrator(db, jarID)
	if err != nil {
		t.Fatalf("administrator: %s", err)
	}
	if !got.Equals(want) {
		t.Fatalf("want %s admin, got %s", want, got)
	}
}

// assertEvents compares the audit log with the expected entries. Metadata and
// jar ID are not compared.
func assertEvents(t testing.TB, db weave.KVStore, jarID []byte, want []Event) {
	t.Helper()

	got, err := NewController(nil, nil).Events(db, jarID)
	if err != nil {
		t.Fatalf("events: %s", err)
	}
	if len(got) != len(want) {
		t.Fatalf("want %d events, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Kind != w.Kind || !g.Actor.Equals(w.Actor) || !g.Amount.Equals(w.Amount) || g.Memo != w.Memo || g.Height != w.Height {
			t.Errorf("event %d: want %v, got %v", i, w.String(), g.String())
		}
	}
}

// assertLedger checks that the jar total equals the sum of all balances and
// the funds held by the jar account.
func assertLedger(t testing.TB, db weave.KVStore, jarID []byte) {
	t.Helper()

	ctrl := NewController(nil, nil)
	jar, err := ctrl.Jar(db, jarID)
	if err != nil {
		t.Fatalf("jar: %s", err)
	}

	var balances []*Balance
	if _, err := NewBalanceBucket().ByIndex(db, "jar", jarID, &balances); err != nil && !errors.ErrNotFound.Is(err) {
		t.Fatalf("balances: %s", err)
	}
	sum := coin.NewCoin(0, 0, jar.Total.Ticker)
	for _, b := range balances {
		if sum, err = sum.Add(b.Amount); err != nil {
			t.Fatalf("sum: %s", err)
		}
	}
	if !sum.Equals(jar.Total) {
		t.Fatalf("total %q is not the sum of balances %q", jar.Total, sum)
	}
	if held := walletAmount(t, db, Condition(jarID).Address(), jar.Total.Ticker); !held.Equals(jar.Total) {
		t.Fatalf("total %q is not the held amount %q", jar.Total, held)
	}
}
