package app

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (weave.Tx, error) {
	tx := new(Tx)
	err := tx.Unmarshal(bz)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// make sure tx fulfills all interfaces
var _ weave.Tx = (*Tx)(nil)
var _ cash.FeeTx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// GetMsg switches over all types defined in the protobuf file
func (tx *Tx) GetMsg() (weave.Msg, error) {
	switch t := tx.Sum.(type) {
	case *Tx_CashSendMsg:
		return t.CashSendMsg, nil
	case *Tx_CashUpdateConfigurationMsg:
		return t.CashUpdateConfigurationMsg, nil
	case *Tx_MigrationUpgradeSchemaMsg:
		return t.MigrationUpgradeSchemaMsg, nil
	case *Tx_TipjarCreateJarMsg:
		return t.TipjarCreateJarMsg, nil
	case *Tx_TipjarTipMsg:
		return t.TipjarTipMsg, nil
	case *Tx_TipjarWithdrawMsg:
		return t.TipjarWithdrawMsg, nil
	case *Tx_TipjarUpdateConfigurationMsg:
		return t.TipjarUpdateConfigurationMsg, nil
	case nil:
		return nil, errors.Wrap(errors.ErrState, "no message")
	}
	return nil, errors.Wrapf(errors.ErrType, "unknown message %T", tx.Sum)
}

// GetSignBytes returns the bytes to sign...
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset the signatures, as the sign bytes
	// should only come from the data itself, not previous signatures
	sigs := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	// reset the signatures after calculating the bytes
	tx.Signatures = sigs
	return bz, err
}
