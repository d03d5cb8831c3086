package tipjar

import (
	"encoding/hex"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createJarCost int64 = 100
	tipCost       int64 = 0
	withdrawCost  int64 = 0
)

// RegisterQuery registers jars, balances and the audit log under
// "/tipjars", "/tipbalances" and "/tipevents".
func RegisterQuery(qr weave.QueryRouter) {
	NewJarBucket().Register("tipjars", qr)
	NewBalanceBucket().Register("tipbalances", qr)
	NewEventBucket().Register("tipevents", qr)
}

// RegisterRoutes registers handlers for all tip jar messages. Funds are
// moved with given mover.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, mover cash.CoinMover) {
	r = migration.SchemaMigratingRegistry("tipjar", r)
	ctrl := NewController(auth, mover)

	r.Handle(&CreateJarMsg{}, &createJarHandler{auth: auth, ctrl: ctrl})
	r.Handle(&TipMsg{}, &tipHandler{auth: auth, ctrl: ctrl})
	r.Handle(&WithdrawMsg{}, &withdrawHandler{auth: auth, ctrl: ctrl})
	r.Handle(&UpdateConfigurationMsg{},
		gconf.NewUpdateConfigurationHandler("tipjar", &Configuration{}, auth, migration.CurrentAdmin))
}

type createJarHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ weave.Handler = (*createJarHandler)(nil)

func (h *createJarHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: createJarCost}, nil
}

func (h *createJarHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, admin, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	key, _, err := h.ctrl.CreateJar(db, admin, msg.Ticker)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{Data: key}, nil
}

// validate returns the message and the address of the deployer who becomes
// the jar admin.
func (h *createJarHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*CreateJarMsg, weave.Address, error) {
	var msg CreateJarMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	admin, err := soleSigner(ctx, h.auth)
	if err != nil {
		return nil, nil, errors.Wrap(err, "deployer")
	}
	return &msg, admin, nil
}

type tipHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ weave.Handler = (*tipHandler)(nil)

func (h *tipHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: tipCost}, nil
}

func (h *tipHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, depositor, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	event, err := h.ctrl.Deposit(ctx, db, msg.JarID, depositor, msg.Amount, msg.Memo)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{
		Data: msg.JarID,
		Tags: eventTags(event),
	}, nil
}

// validate returns the message and the depositor. The depositor defaults to
// the only signer of the transaction.
func (h *tipHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*TipMsg, weave.Address, error) {
	var msg TipMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	depositor := msg.Depositor
	if depositor == nil {
		signer, err := soleSigner(ctx, h.auth)
		if err != nil {
			return nil, nil, errors.Wrap(err, "depositor")
		}
		depositor = signer
	} else if !h.auth.HasAddress(ctx, depositor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "depositor signature missing")
	}

	if err := h.ctrl.ValidateDeposit(db, msg.JarID, depositor, msg.Amount, msg.Memo); err != nil {
		return nil, nil, err
	}
	return &msg, depositor, nil
}

type withdrawHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ weave.Handler = (*withdrawHandler)(nil)

func (h *withdrawHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h *withdrawHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	event, err := h.ctrl.Withdraw(ctx, db, msg.JarID)
	if err != nil {
		return nil, err
	}
	return &weave.DeliverResult{
		Data: msg.JarID,
		Tags: eventTags(event),
	}, nil
}

// validate rejects the message early when the signer is not the admin or
// there is nothing to take. Withdraw does the same checks again when
// delivering.
func (h *withdrawHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*WithdrawMsg, error) {
	var msg WithdrawMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	jar, err := h.ctrl.Jar(db, msg.JarID)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, jar.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "caller is not the owner")
	}
	if jar.Total.IsZero() {
		return nil, errors.Wrap(ErrNothingToWithdraw, "jar is empty")
	}
	return &msg, nil
}

// soleSigner returns the address of the only authenticated condition. The
// order of signatures is not signed, so when more than one address is
// authenticated none of them can be picked.
func soleSigner(ctx weave.Context, auth x.Authenticator) (weave.Address, error) {
	var signer weave.Address
	for _, addr := range x.GetAddresses(ctx, auth) {
		switch {
		case signer == nil:
			signer = addr
		case !signer.Equals(addr):
			return nil, errors.Wrap(errors.ErrUnauthorized, "more than one signer, address must be explicit")
		}
	}
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "signature missing")
	}
	return signer, nil
}

// eventTags exposes an audit log entry to transaction indexers.
func eventTags(e *Event) []common.KVPair {
	return []common.KVPair{
		{Key: []byte("tipjar"), Value: []byte(e.Kind.String())},
		{Key: []byte("tipjar.jar"), Value: []byte(hex.EncodeToString(e.JarID))},
		{Key: []byte("tipjar.actor"), Value: []byte(e.Actor.String())},
		{Key: []byte("tipjar.amount"), Value: []byte(e.Amount.String())},
	}
}
