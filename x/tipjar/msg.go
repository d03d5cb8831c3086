package tipjar

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &CreateJarMsg{}, migration.NoModification)
	migration.MustRegister(1, &TipMsg{}, migration.NoModification)
	migration.MustRegister(1, &WithdrawMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*CreateJarMsg)(nil)

func (CreateJarMsg) Path() string {
	return "tipjar/create_jar"
}

func (m *CreateJarMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", m.Ticker))
	}
	return errs
}

var _ weave.Msg = (*TipMsg)(nil)

func (TipMsg) Path() string {
	return "tipjar/tip"
}

// Validate checks the message format. A tip without value is rejected with
// ErrZeroAmount, whether the amount is omitted or explicitly zero.
func (m *TipMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.JarID) == 0 {
		errs = errors.AppendField(errs, "JarID", errors.ErrEmpty)
	}
	if m.Depositor != nil {
		errs = errors.AppendField(errs, "Depositor", m.Depositor.Validate())
	}
	if m.Amount.IsZero() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(ErrZeroAmount, "tip must carry value"))
	} else if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsNonNegative() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must not be negative"))
	}
	return errs
}

var _ weave.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return "tipjar/withdraw"
}

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.JarID) == 0 {
		errs = errors.AppendField(errs, "JarID", errors.ErrEmpty)
	}
	return errs
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "tipjar/update_configuration"
}

// Validate checks only the fields set in the patch. Zero fields leave the
// stored configuration unchanged.
func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	c := m.Patch
	if c == nil {
		return errors.AppendField(errs, "Patch", errors.ErrEmpty)
	}
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if c.MaxMemoLength < 0 {
		errs = errors.Append(errs, errors.Field("MaxMemoLength", errors.ErrInput, "must not be negative"))
	}
	return errs
}
