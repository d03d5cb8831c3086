package tipjar

import (
	"github.com/iov-one/weave/errors"
)

var (
	// ErrZeroAmount is returned when a tip carries no value.
	ErrZeroAmount = errors.Register(1300, "zero amount")

	// ErrNothingToWithdraw is returned when the admin withdraws from an
	// empty jar.
	ErrNothingToWithdraw = errors.Register(1301, "nothing to withdraw")

	// ErrTransferFailed is returned when the jar funds could not be moved
	// to the admin. No state is changed in that case.
	ErrTransferFailed = errors.Register(1302, "transfer failed")
)
