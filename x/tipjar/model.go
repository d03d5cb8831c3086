package tipjar

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Jar{}, migration.NoModification)
	migration.MustRegister(1, &Balance{}, migration.NoModification)
	migration.MustRegister(1, &Event{}, migration.NoModification)
}

var _ orm.Model = (*Jar)(nil)

func (m *Jar) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	if err := m.Total.Validate(); err != nil {
		errs = errors.AppendField(errs, "Total", err)
	} else if !m.Total.IsNonNegative() {
		errs = errors.AppendField(errs, "Total", errors.Wrap(errors.ErrAmount, "must not be negative"))
	}
	return errs
}

// Condition returns the condition of the account that holds the funds of
// the jar with given ID.
func Condition(jarID []byte) weave.Condition {
	return weave.NewCondition("tipjar", "seq", jarID)
}

// NewJarBucket returns a bucket for storing jars. Jar IDs are generated from
// a sequence.
func NewJarBucket() orm.ModelBucket {
	b := orm.NewModelBucket("tipjar", &Jar{},
		orm.WithIDSequence(jarSeq),
		orm.WithIndex("admin", idxJarAdmin, false),
		orm.WithIndex("account", idxJarAccount, true),
	)
	return migration.NewModelBucket("tipjar", b)
}

var jarSeq = orm.NewSequence("tipjar", "id")

func idxJarAdmin(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	j, ok := obj.Value().(*Jar)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "not a Jar")
	}
	return j.Admin, nil
}

// idxJarAccount indexes a jar by the address of the account that holds its
// funds.
func idxJarAccount(obj orm.Object) ([]byte, error) {
	if obj == nil || len(obj.Key()) == 0 {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	return Condition(obj.Key()).Address(), nil
}

var _ orm.Model = (*Balance)(nil)

func (m *Balance) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.JarID) == 0 {
		errs = errors.AppendField(errs, "JarID", errors.ErrEmpty)
	}
	errs = errors.AppendField(errs, "Depositor", m.Depositor.Validate())
	if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must be greater than zero"))
	}
	return errs
}

// BalanceKey returns the key under which the balance of the depositor in
// given jar is stored. Query "/tipbalances" with it to read a single balance.
func BalanceKey(jarID []byte, depositor weave.Address) []byte {
	key := make([]byte, 0, len(jarID)+len(depositor))
	key = append(key, jarID...)
	return append(key, depositor...)
}

// NewBalanceBucket returns a bucket for storing depositor balances. Only
// non zero balances are stored. A missing balance reads as zero.
func NewBalanceBucket() orm.ModelBucket {
	b := orm.NewModelBucket("tipbal", &Balance{},
		orm.WithIndex("jar", idxBalanceJar, false),
		orm.WithIndex("depositor", idxBalanceDepositor, false),
	)
	return migration.NewModelBucket("tipjar", b)
}

func toBalance(obj orm.Object) (*Balance, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	b, ok := obj.Value().(*Balance)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "not a Balance")
	}
	return b, nil
}

func idxBalanceJar(obj orm.Object) ([]byte, error) {
	b, err := toBalance(obj)
	if err != nil {
		return nil, err
	}
	return b.JarID, nil
}

func idxBalanceDepositor(obj orm.Object) ([]byte, error) {
	b, err := toBalance(obj)
	if err != nil {
		return nil, err
	}
	return b.Depositor, nil
}

var _ orm.Model = (*Event)(nil)

func (m *Event) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.JarID) == 0 {
		errs = errors.AppendField(errs, "JarID", errors.ErrEmpty)
	}
	if _, ok := EventKind_name[int32(m.Kind)]; !ok || m.Kind == EventKindInvalid {
		errs = errors.AppendField(errs, "Kind", errors.Wrapf(errors.ErrInput, "unknown kind %d", m.Kind))
	}
	errs = errors.AppendField(errs, "Actor", m.Actor.Validate())
	if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must be greater than zero"))
	}
	if m.Height < 0 {
		errs = errors.AppendField(errs, "Height", errors.Wrap(errors.ErrInput, "must not be negative"))
	}
	return errs
}

// NewEventBucket returns a bucket for the audit log. Events are never
// updated or deleted.
func NewEventBucket() orm.ModelBucket {
	b := orm.NewModelBucket("tipevent", &Event{},
		orm.WithIDSequence(eventSeq),
		orm.WithIndex("jar", idxEventJar, false),
	)
	return migration.NewModelBucket("tipjar", b)
}

var eventSeq = orm.NewSequence("tipevent", "id")

func idxEventJar(obj orm.Object) ([]byte, error) {
	if obj == nil || obj.Value() == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	e, ok := obj.Value().(*Event)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "not an Event")
	}
	return e.JarID, nil
}
